// Package filesystem provides filesystem implementations for dotmod.
//
// All implementations satisfy types.FS and are built on afero. NewOS
// wraps afero's OS filesystem and supports every operation, including
// symlinks, hard links and lchown. Other afero filesystems work for the
// operations they support.
//
// Copy materializes a file, symlink or directory tree at a new location,
// either by copying content or by hard-linking regular files, and reports
// each created entry in creation order.
package filesystem

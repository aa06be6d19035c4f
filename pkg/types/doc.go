// Package types defines the core data types shared across dotmod.
//
// Modules declare links; each link names a destination path, a link kind
// and a source. Sources are a closed set of variants (inline text, local
// path, symlink target, URL) selected by SourceSpec.Kind, and are either
// named (stable identity, shared cache slot) or anonymous (cached by a
// digest of the declaring module and destination path).
//
// The FS interface abstracts the filesystem operations the engine needs
// so the same code runs against the OS or an afero-backed filesystem.
package types

// Package fingerprint computes content digests for files, symlinks and
// directory trees, and the per-path fingerprints dotmod records for the
// entries it creates.
//
// Digests are BLAKE3-256. A symlink is digested by its literal target and
// never followed. A directory tree produces a single digest over every
// entry's relative path, type and content, visited in lexical order, so
// the same on-disk structure always yields the same digest.
//
// Check re-derives a fingerprint from the live filesystem and classifies
// the path as Owned, Changed or Missing.
package fingerprint

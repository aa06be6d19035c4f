// Package sources makes the content behind a link available in a cache
// slot.
//
// Named sources live in a slot keyed by their name under the config
// directory; anonymous sources live in a slot keyed by the declaring
// module and the destination path under the cache directory. Either way
// the slot is reused as long as it was realized from the same definition
// (recorded in a CBOR success marker) and, when a digest is declared,
// still matches it. A digest mismatch leaves the fetched content in
// place for inspection but writes no marker, so the next run fetches
// again.
package sources

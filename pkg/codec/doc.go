// Package codec is dotmod's binary record encoding. It wraps
// fxamacker/cbor with deterministic encoding so identical records are
// byte-identical on disk. Source cache markers are stored with it.
package codec

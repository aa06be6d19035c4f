// Package engine enables, disables and updates modules.
//
// An Engine is built from an explicit Context and owns the in-memory
// ownership state for the duration of one command. Enable is all or
// nothing: the closure is planned and checked against the state and the
// filesystem before anything is created, and a failure while creating
// rolls back exactly what this call created. Disable removes only what
// still matches its recorded fingerprint and reports everything else as
// residue. Commit persists the state; callers invoke it once at the end
// of every mutating command.
package engine

// Package registry holds module and named source definitions in memory.
//
// Catalog implements types.Registry on top of the generic Table. It is
// populated by pkg/config and read by the engine.
package registry

// Package output renders engine results for the terminal.
//
// Text output is produced by the templates in templates/, which call
// style "Name" value to apply one of the semantic styles of styles.yaml.
// YAML output encodes the same view structs directly.
package output

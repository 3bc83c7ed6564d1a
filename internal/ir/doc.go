// Package ir provides the schema description telegen generates code from.
//
// A RecordDefinition is built once by a loader (Go source, CUE or YAML) or by the
// Builder, handed to the generator and discarded. Nothing in this package knows
// about a particular input format; analysis and codegen import ir, ir imports
// nothing internal.
//
// Key constraints:
//   - Field order is declaration order and is never re-sorted
//   - An empty FieldDefinition.Name marks an unnamed (embedded) field
//   - Hashes use RFC 8785 canonical JSON with domain separation
package ir

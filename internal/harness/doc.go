// Package harness runs generation scenarios: small Go or YAML inputs paired
// with assertions about what telegen decides for each record.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cpu_roles
//	description: "Tag wins over timestamp on the same field"
//	source: |
//	  package metrics
//
//	  //telegraf:metric
//	  type CPU struct { ... }
//	assertions:
//	  - type: measurement
//	    record: CPU
//	    value: CPU
//	  - type: roles
//	    record: CPU
//	    roles: {Host: tag, Usage: field}
//
// A scenario has either source (one Go file) or schema (one YAML schema
// document). Schema scenarios also emit the struct declarations.
//
// # Assertion Types
//
//   - measurement: the resolved measurement name of a record
//   - roles: the role of each listed field
//   - field_order: the declaration order of all fields
//   - optional: exactly these fields are optional
//   - bounds: the propagated constraint of each type parameter
//   - diagnostic: the record is rejected with this code
//   - output_contains: the rendered file contains value
//
// Each scenario runs in isolation with the default analysis policy, so
// results are deterministic and rendered output can be compared against
// golden files with RunWithGolden.
package harness

// Package store provides the SQLite-backed generation ledger.
//
// Every telegen run that writes a file appends:
//   - Runs: one row per run, identified by a UUIDv7 and ordered by seq
//   - Generations: one row per record generated in the run, with its schema
//     hash and the canonical JSON of its definition
//
// # Ordering
//
// Runs are ordered by seq, a logical counter assigned at insert time, never
// by wall time. All queries end in ORDER BY seq, so output is identical
// across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema hashes are computed by ir.SchemaHash using RFC 8785 canonical JSON
// and SHA-256 with domain separation.
package store

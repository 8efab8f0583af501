// Package store provides SQLite-backed durable storage for conformance runs.
//
// The store is an append-only journal with:
//   - Runs: one record per scenario run, with its schema hash and salt
//   - Verdicts: one record per check of a run
//
// # Critical Patterns
//
// Logical Identity and Time
//   - Runs are ordered by seq INTEGER (logical clock), NEVER timestamps
//   - Run IDs are random UUIDs; seq is assigned on write
//
// Deterministic Query Results
//   - All queries MUST include an ORDER BY on seq or idx
//
// Salts Are Recorded
//   - Hash values in verdicts only reproduce under the run's salt, so the
//     salt is stored with every run
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

// Package store provides SQLite-backed storage for the content records that
// compiled filters run against.
//
// # Determinism
//
// Every read orders by a stable key (ORDER BY id ASC) so repeated queries
// return rows in the same order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The schema lives in schema.sql and is versioned with PRAGMA user_version.
package store

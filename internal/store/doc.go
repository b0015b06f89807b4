// Package store provides the SQLite-backed journal of actor events.
//
// Every event the slot-machine actor accepts is appended as one row keyed by
// (session, seq). Rows are never updated.
//
// # Ordering
//
// All ordering uses the logical seq column, never wall time. Queries always
// end in ORDER BY seq ASC so a trace reads back identically every time.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads (tetra trace) during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: entries reference their session row
package store

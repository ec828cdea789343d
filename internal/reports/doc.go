// Package reports keeps a history of quality reports in SQLite so runs can be
// compared after the fact.
//
// The store uses WAL mode with a busy timeout and retries writes that still
// hit SQLITE_BUSY, which lets a watcher and an interactive CLI share one
// database file. The schema version lives in PRAGMA user_version; a
// mismatch is reported with ErrSchemaMismatch rather than migrated.
//
// Primary entry points:
//   - Open: opens or creates the database
//   - Store.Insert, Store.Get, Store.List
package reports

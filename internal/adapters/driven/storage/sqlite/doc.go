// Package sqlite persists credential records in a local SQLite database,
// one row per account key with the record stored as JSON. The database is
// opened in WAL mode so concurrent CLI invocations do not trip over each
// other.
package sqlite

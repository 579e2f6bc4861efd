// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:heart.db?_pragma=busy_timeout(5000)"
	//   "heart.db"
	//   ":memory:"
	DSN string

	// Table is the target table name, e.g. "heart_disease".
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}

package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// NewDB opens (or creates) the run journal database at path. Use
// ":memory:" for an ephemeral journal.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every connection to :memory: opens its own database, so keep a
		// single connection for the journal to stay one database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

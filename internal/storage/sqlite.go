package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(collection, updated_at)`,
	},
	upsert: `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	get:         `SELECT data FROM documents WHERE collection = ? AND id = ?`,
	del:         `DELETE FROM documents WHERE collection = ? AND id = ?`,
	list:        `SELECT id, data, updated_at FROM documents WHERE collection = ? ORDER BY id`,
	fingerprint: `SELECT COUNT(*), MAX(updated_at) FROM documents WHERE collection = ?`,
}

// NewSQLite opens (or creates) the SQLite file at dbPath.
func NewSQLite(dbPath string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer, limit to single connection to prevent SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return newSQLStore(context.Background(), conn, sqliteDialect)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name: "postgres",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(collection, updated_at)`,
	},
	upsert: `INSERT INTO documents (collection, id, data, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
	get:         `SELECT data FROM documents WHERE collection = $1 AND id = $2`,
	del:         `DELETE FROM documents WHERE collection = $1 AND id = $2`,
	list:        `SELECT id, data, updated_at FROM documents WHERE collection = $1 ORDER BY id`,
	fingerprint: `SELECT COUNT(*), MAX(updated_at) FROM documents WHERE collection = $1`,
}

// buildPostgresDSN constructs a Postgres connection string from Params.
func buildPostgresDSN(p Params) string {
	port := p.Port
	if port == 0 {
		port = 5432
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, port, p.User, p.Password, p.Database, sslMode,
	)
}

// NewPostgres opens a Postgres document store and runs migrations.
func NewPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, conn, postgresDialect)
}

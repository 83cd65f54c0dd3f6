package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name: "mysql",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection VARCHAR(64) NOT NULL,
			id VARCHAR(64) NOT NULL,
			data LONGTEXT NOT NULL,
			updated_at BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (collection, id),
			INDEX idx_documents_updated (collection, updated_at)
		) CHARACTER SET utf8mb4`,
	},
	upsert: `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`,
	get:         `SELECT data FROM documents WHERE collection = ? AND id = ?`,
	del:         `DELETE FROM documents WHERE collection = ? AND id = ?`,
	list:        `SELECT id, data, updated_at FROM documents WHERE collection = ? ORDER BY id`,
	fingerprint: `SELECT COUNT(*), MAX(updated_at) FROM documents WHERE collection = ?`,
}

// buildMySQLDSN constructs a MySQL DSN from Params.
func buildMySQLDSN(p Params) string {
	port := p.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		p.User, p.Password, p.Host, port, p.Database,
	)
	if p.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// NewMySQL opens a MySQL document store and runs migrations.
func NewMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return newSQLStore(ctx, conn, mysqlDialect)
}

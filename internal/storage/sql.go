package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// dialect holds the statements one SQL backend needs.
type dialect struct {
	name        string
	migrations  []string
	upsert      string
	get         string
	del         string
	list        string
	fingerprint string
}

// SQLStore implements DocumentStore on a database/sql connection.
type SQLStore struct {
	conn *sql.DB
	d    dialect
}

func newSQLStore(ctx context.Context, conn *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{conn: conn, d: d}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, m := range s.d.migrations {
		if _, err := s.conn.ExecContext(ctx, m); err != nil {
			// ALTER TABLE fails if column already exists, safe to ignore
			if strings.Contains(m, "ALTER TABLE") && strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", firstLine(m), err)
		}
	}
	return nil
}

// Conn returns the underlying database connection.
func (s *SQLStore) Conn() *sql.DB { return s.conn }

// Backend names the SQL dialect in use.
func (s *SQLStore) Backend() string { return s.d.name }

func (s *SQLStore) Close() error { return s.conn.Close() }

func (s *SQLStore) Put(ctx context.Context, collection, id string, data []byte) error {
	_, err := s.conn.ExecContext(ctx, s.d.upsert, collection, id, string(data), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data string
	err := s.conn.QueryRowContext(ctx, s.d.get, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return []byte(data), nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.conn.ExecContext(ctx, s.d.del, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.conn.QueryContext(ctx, s.d.list, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data string
		if err := rows.Scan(&d.ID, &data, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		d.Data = []byte(data)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLStore) Fingerprint(ctx context.Context, collection string) (Fingerprint, error) {
	var fp Fingerprint
	var max sql.NullInt64
	if err := s.conn.QueryRowContext(ctx, s.d.fingerprint, collection).Scan(&fp.Count, &max); err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint %s: %w", collection, err)
	}
	fp.UpdatedAt = max.Int64
	return fp, nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i > 0 {
		return stmt[:i]
	}
	return stmt
}

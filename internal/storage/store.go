package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Collection names.
const (
	CollBoards      = "boards"
	CollSiteMaps    = "sitemaps"
	CollImpactMaps  = "impactmaps"
	CollPersonas    = "personas"
	CollJourneyMaps = "journeymaps"
	CollSettings    = "settings"
	CollApprovals   = "approvals"
)

// Document is one stored JSON document.
type Document struct {
	ID        string
	Data      []byte
	UpdatedAt int64 // unix nanoseconds
}

// Fingerprint summarises a collection cheaply enough to poll. Two equal
// fingerprints mean nothing was written in between.
type Fingerprint struct {
	Count     int64
	UpdatedAt int64
}

// DocumentStore is a key-value store of JSON documents grouped into
// collections. Every backend implements it.
type DocumentStore interface {
	Put(ctx context.Context, collection, id string, data []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
	Fingerprint(ctx context.Context, collection string) (Fingerprint, error)
	Close() error
}

// Params selects and configures a backend.
type Params struct {
	Backend  string // sqlite, postgres, mysql, mongo
	DSN      string
	DataDir  string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Open connects to the backend named in p. An empty backend means SQLite
// in p.DataDir.
func Open(ctx context.Context, p Params) (DocumentStore, error) {
	switch p.Backend {
	case "", "sqlite":
		path := p.DSN
		if path == "" {
			path = filepath.Join(p.DataDir, "boards.db")
		}
		return NewSQLite(path)
	case "postgres":
		dsn := p.DSN
		if dsn == "" {
			dsn = buildPostgresDSN(p)
		}
		return NewPostgres(ctx, dsn)
	case "mysql":
		dsn := p.DSN
		if dsn == "" {
			dsn = buildMySQLDSN(p)
		}
		return NewMySQL(ctx, dsn)
	case "mongo", "mongodb":
		uri := p.DSN
		if uri == "" {
			uri = buildMongoURI(p)
		}
		return NewMongo(ctx, uri, p.Database)
	}
	return nil, fmt.Errorf("open store: unknown backend %q", p.Backend)
}

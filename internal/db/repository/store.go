package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

// Store implements domain.Store on a connection pool. Stores handed to InTx
// callbacks are bound to the transaction; every repository they return
// shares it, so DDL and metadata writes commit or roll back together.
type Store struct {
	pool   *sql.DB
	q      db.DBTX
	schema string
	logger *slog.Logger
}

// NewStore creates a pool-backed Store. schema is the PostgreSQL schema that
// holds physical tables.
func NewStore(pool *sql.DB, schema string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, q: pool, schema: schema, logger: logger}
}

var _ domain.Store = (*Store)(nil)

// Databases returns the database repository.
func (s *Store) Databases() domain.DatabaseRepository { return NewDatabaseRepo(s.q) }

// Tables returns the table association repository.
func (s *Store) Tables() domain.TableRepository { return NewTableRepo(s.q) }

// Introspector returns the live schema reader.
func (s *Store) Introspector() domain.SchemaIntrospector {
	return NewIntrospectionRepo(s.q, s.schema)
}

// Engine returns the statement executor.
func (s *Store) Engine() domain.PhysicalEngine { return NewEngineRepo(s.q, s.logger) }

// InTx runs fn in a transaction. Nested calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	return db.WithTx(ctx, s.pool, func(tx *sql.Tx) error {
		return fn(&Store{pool: s.pool, q: tx, schema: s.schema, logger: s.logger})
	})
}

package repository

import (
	"context"
	"log/slog"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

// EngineRepo executes generated statements against physical tables.
type EngineRepo struct {
	q      db.DBTX
	logger *slog.Logger
}

// NewEngineRepo creates an EngineRepo.
func NewEngineRepo(q db.DBTX, logger *slog.Logger) *EngineRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngineRepo{q: q, logger: logger.With("component", "engine")}
}

var _ domain.PhysicalEngine = (*EngineRepo)(nil)

// ExecDDL runs a single DDL statement.
func (r *EngineRepo) ExecDDL(ctx context.Context, stmt string) error {
	r.logger.DebugContext(ctx, "executing ddl", "sql", stmt)
	if _, err := r.q.ExecContext(ctx, stmt); err != nil {
		return mapDBError("ddl", "physical table", err)
	}
	return nil
}

// Exec runs a data statement and returns the number of affected rows.
func (r *EngineRepo) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	r.logger.DebugContext(ctx, "executing statement", "sql", query, "args", len(args))
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapDBError("exec", "row", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapDBError("exec", "row", err)
	}
	return n, nil
}

// QueryCount runs a single-value COUNT query.
func (r *EngineRepo) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapDBError("count", "row", err)
	}
	return n, nil
}

// QueryRecords runs a query and converts every row to a Record.
func (r *EngineRepo) QueryRecords(ctx context.Context, schema domain.TableSchema, query string, args ...any) ([]domain.Record, error) {
	r.logger.DebugContext(ctx, "executing query", "sql", query, "args", len(args))
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError("query", "row", err)
	}
	defer rows.Close() //nolint:errcheck

	records, err := scanRecords(rows, schema)
	if err != nil {
		return nil, mapDBError("query", "row", err)
	}
	return records, nil
}

// QueryRecord runs a query expected to produce at most one row. No row is
// reported as a nil Record without error.
func (r *EngineRepo) QueryRecord(ctx context.Context, schema domain.TableSchema, query string, args ...any) (domain.Record, error) {
	records, err := r.QueryRecords(ctx, schema, query, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Package data serves row reads and writes against the physical table of a
// logical table. The live schema is introspected on every call.
package data

import (
	"context"
	"errors"
	"log/slog"

	"tablehub/internal/dml"
	"tablehub/internal/domain"
	"tablehub/internal/service/catalog"
)

// Service reads and writes rows of logical tables.
type Service struct {
	store    domain.Store
	pgSchema string
	logger   *slog.Logger
}

// NewService creates a data Service.
func NewService(store domain.Store, pgSchema string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, pgSchema: pgSchema, logger: logger.With("component", "data-service")}
}

// target resolves the physical table and reads its live schema.
func (s *Service) target(ctx context.Context, userID, dbID int64, table string) (string, domain.TableSchema, error) {
	_, physical, err := catalog.ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return "", nil, err
	}
	schema, err := s.store.Introspector().Columns(ctx, physical)
	if err != nil {
		if catalog.IsNotFound(err) {
			return "", nil, domain.ErrNotFound("physical table for %q does not exist", table)
		}
		return "", nil, err
	}
	return physical, schema, nil
}

// primaryKey returns the single key column used by row addressing.
func primaryKey(table string, schema domain.TableSchema) (domain.ColumnSchema, error) {
	pk := schema.PrimaryKey()
	switch len(pk) {
	case 0:
		return domain.ColumnSchema{}, domain.ErrInvalid(domain.ReasonNoStableOrder,
			"table %q has no primary key; rows cannot be addressed", table)
	case 1:
		return pk[0], nil
	}
	return domain.ColumnSchema{}, domain.ErrValidation(
		"table %q has a composite primary key; rows cannot be addressed by a single value", table)
}

// Query returns one page of rows, or of groups when q.GroupBy names valid
// columns. Unusable filters and group-by columns are dropped and logged.
func (s *Service) Query(ctx context.Context, userID, dbID int64, table string, q domain.RowQuery) (*domain.RowPage, error) {
	physical, schema, err := s.target(ctx, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	plan, err := dml.BuildSelect(s.pgSchema, physical, schema, q)
	if err != nil {
		return nil, err
	}
	for _, d := range plan.Dropped {
		s.logger.WarnContext(ctx, "ignoring filter", "table", table, "column", d.Column, "reason", d.Reason)
	}

	eng := s.store.Engine()
	total, err := eng.QueryCount(ctx, plan.Count.SQL, plan.Count.Args...)
	if err != nil {
		return nil, err
	}
	rows, err := eng.QueryRecords(ctx, schema, plan.Data.SQL, plan.Data.Args...)
	if err != nil {
		return nil, err
	}
	return &domain.RowPage{
		Data:    rows,
		Total:   total,
		Page:    q.Page.Number(),
		Limit:   q.Page.Limit(),
		Pages:   q.Page.TotalPages(total),
		Grouped: plan.Grouped,
		GroupBy: plan.GroupBy,
	}, nil
}

// Insert inserts one row and returns it as stored, generated values included.
func (s *Service) Insert(ctx context.Context, userID, dbID int64, table string, input map[string]any) (domain.Record, error) {
	physical, schema, err := s.target(ctx, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	rec, unknown, err := domain.RecordFromInput(schema, withoutFields(input, autoKeys(schema)...))
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		s.logger.DebugContext(ctx, "ignoring unknown fields", "table", table, "fields", unknown)
	}
	stmt, err := dml.BuildInsert(s.pgSchema, physical, schema, rec)
	if err != nil {
		return nil, err
	}
	row, err := s.store.Engine().QueryRecord(ctx, schema, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, rowError(err, table)
	}
	return row, nil
}

// Update updates the row whose key equals pkValue and returns it. An update
// with nothing to set returns the current row.
func (s *Service) Update(ctx context.Context, userID, dbID int64, table, pkValue string, input map[string]any) (domain.Record, error) {
	physical, schema, err := s.target(ctx, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	pk, err := primaryKey(table, schema)
	if err != nil {
		return nil, err
	}
	key, err := dml.CoerceKey(pk, pkValue)
	if err != nil {
		return nil, err
	}
	rec, _, err := domain.RecordFromInput(schema, withoutFields(input, pk.Name))
	if err != nil {
		return nil, err
	}
	stmt, _, err := dml.BuildUpdate(s.pgSchema, physical, schema, pk, key, rec)
	if err != nil {
		return nil, err
	}
	row, err := s.store.Engine().QueryRecord(ctx, schema, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, rowError(err, table)
	}
	if row == nil {
		return nil, domain.ErrNotFound("row %s not found in table %q", pkValue, table)
	}
	return row, nil
}

// Delete deletes the row whose key equals pkValue and reports whether a row
// was removed.
func (s *Service) Delete(ctx context.Context, userID, dbID int64, table, pkValue string) (bool, error) {
	physical, schema, err := s.target(ctx, userID, dbID, table)
	if err != nil {
		return false, err
	}
	pk, err := primaryKey(table, schema)
	if err != nil {
		return false, err
	}
	key, err := dml.CoerceKey(pk, pkValue)
	if err != nil {
		return false, err
	}
	stmt := dml.BuildDelete(s.pgSchema, physical, pk, key)
	n, err := s.store.Engine().Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return false, rowError(err, table)
	}
	return n > 0, nil
}

// rowError names the table in errors the engine reports for a row statement.
func rowError(err error, table string) error {
	var cf *domain.ConflictError
	switch {
	case catalog.IsNotFound(err):
		return domain.ErrNotFound("table %q or one of its columns no longer exists", table)
	case errors.As(err, &cf):
		return domain.ErrConflict("a row with the same unique value already exists in table %q", table)
	}
	return err
}

// autoKeys names the primary-key columns the engine fills itself.
func autoKeys(schema domain.TableSchema) []string {
	var names []string
	for _, c := range schema {
		if c.IsPrimaryKey && c.IsAutoGenerated {
			names = append(names, c.Name)
		}
	}
	return names
}

// withoutFields returns input minus names, leaving input untouched. Values
// of removed fields are never type-checked.
func withoutFields(input map[string]any, names ...string) map[string]any {
	if len(names) == 0 {
		return input
	}
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}

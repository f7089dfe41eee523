// Package repository implements domain repository interfaces using PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

func mapDBError(op, subject string, err error) error {
	return db.Classify(op, subject, err)
}

// inTx runs fn on q when q already is a transaction, otherwise inside a new
// transaction on q.
func inTx(ctx context.Context, q db.DBTX, fn func(q db.DBTX) error) error {
	sqlDB, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}
	return db.WithTx(ctx, sqlDB, func(tx *sql.Tx) error { return fn(tx) })
}

// scanRecords reads all rows, resolving each cell against the declared type
// of the schema column it came from. Columns the schema does not know (such
// as aggregate results) are converted by their driver type alone.
func scanRecords(rows *sql.Rows, schema domain.TableSchema) ([]domain.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	kinds := make([]domain.Kind, len(cols))
	for i, name := range cols {
		if c, ok := schema.Column(name); ok {
			kinds[i] = c.Kind()
		}
	}

	records := []domain.Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(domain.Record, len(cols))
		for i, name := range cols {
			rec[i] = domain.Field{Name: name, Value: domain.FromDriver(kinds[i], vals[i])}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

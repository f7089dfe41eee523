package repository

import (
	"context"
	"fmt"
	"strings"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

// IntrospectionRepo reads column metadata of physical tables from
// information_schema. Every call goes to the engine; nothing is cached.
type IntrospectionRepo struct {
	q      db.DBTX
	schema string
}

// NewIntrospectionRepo creates an introspector for the given PostgreSQL schema.
func NewIntrospectionRepo(q db.DBTX, schema string) *IntrospectionRepo {
	return &IntrospectionRepo{q: q, schema: schema}
}

var _ domain.SchemaIntrospector = (*IntrospectionRepo)(nil)

const columnsQuery = `SELECT c.column_name, c.data_type, c.is_nullable, c.column_default, c.is_identity,
  EXISTS (
    SELECT 1 FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
    WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
      AND kcu.column_name = c.column_name AND tc.constraint_type = 'PRIMARY KEY'
  ) AS is_pk,
  EXISTS (
    SELECT 1 FROM information_schema.table_constraints tc
    JOIN information_schema.key_column_usage kcu
      ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
    WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
      AND kcu.column_name = c.column_name AND tc.constraint_type = 'FOREIGN KEY'
  ) AS is_fk
FROM information_schema.columns c
WHERE c.table_schema = $1 AND c.table_name = $2
ORDER BY c.ordinal_position`

// Columns returns the live column list of a physical table in ordinal order.
// A table without columns is reported as not found.
func (r *IntrospectionRepo) Columns(ctx context.Context, table string) (domain.TableSchema, error) {
	rows, err := r.q.QueryContext(ctx, columnsQuery, r.schema, table)
	if err != nil {
		return nil, mapDBError("introspect table", table, err)
	}
	defer rows.Close() //nolint:errcheck

	var schema domain.TableSchema
	for rows.Next() {
		var (
			col        domain.ColumnSchema
			nullable   string
			identity   string
			defaultVal *string
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &identity,
			&col.IsPrimaryKey, &col.IsForeignKey); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		col.Default = defaultVal
		col.IsAutoGenerated = isAutoGenerated(col, identity == "YES")
		schema = append(schema, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError("introspect table", table, err)
	}
	if len(schema) == 0 {
		return nil, domain.ErrNotFound("table %s does not exist", table)
	}
	return schema, nil
}

// isAutoGenerated reports whether the engine fills a primary-key column.
// Sequence-backed columns outside the key are ordinary columns.
func isAutoGenerated(col domain.ColumnSchema, identity bool) bool {
	if !col.IsPrimaryKey {
		return false
	}
	if identity || strings.Contains(strings.ToLower(col.Type), "serial") {
		return true
	}
	return col.Default != nil && strings.Contains(strings.ToLower(*col.Default), "nextval(")
}

// TableExists reports whether a base table with the given name exists.
func (r *IntrospectionRepo) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		r.schema, table).Scan(&exists)
	if err != nil {
		return false, mapDBError("check table", table, err)
	}
	return exists, nil
}

// ListPhysicalTables returns all base tables of the schema.
func (r *IntrospectionRepo) ListPhysicalTables(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`,
		r.schema)
	if err != nil {
		return nil, mapDBError("list physical tables", r.schema, err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

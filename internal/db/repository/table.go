package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

const tableColumns = `user_id, db_id, table_id, table_name, created_at, updated_at`

// TableRepo implements domain.TableRepository over the association table.
type TableRepo struct {
	q db.DBTX
}

// NewTableRepo creates a new TableRepo on a pool or a transaction.
func NewTableRepo(q db.DBTX) *TableRepo {
	return &TableRepo{q: q}
}

var _ domain.TableRepository = (*TableRepo)(nil)

func scanTable(row interface{ Scan(...any) error }) (*domain.LogicalTable, error) {
	var t domain.LogicalTable
	if err := row.Scan(&t.UserID, &t.DatabaseID, &t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TableRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.LogicalTable, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(op, "tables", err)
	}
	defer rows.Close() //nolint:errcheck

	tables := []domain.LogicalTable{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// Create assigns the next table id of the database and inserts the
// association. The database row is locked by the counter update, which also
// reports a missing database.
func (r *TableRepo) Create(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	var out *domain.LogicalTable
	err := inTx(ctx, r.q, func(q db.DBTX) error {
		var id int64
		err := q.QueryRowContext(ctx,
			`UPDATE meta_databases SET last_table_id = last_table_id + 1 WHERE user_id = $1 AND db_id = $2 RETURNING last_table_id`,
			userID, dbID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound("database %d not found", dbID)
		}
		if err != nil {
			return err
		}
		t, err := scanTable(q.QueryRowContext(ctx,
			`INSERT INTO meta_tables (user_id, db_id, table_id, table_name) VALUES ($1, $2, $3, $4) RETURNING `+tableColumns,
			userID, dbID, id, name))
		if err != nil {
			if db.PgCode(err) == db.CodeForeignKeyViolation {
				return domain.ErrNotFound("database %d not found", dbID)
			}
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, mapDBError("create table association", fmt.Sprintf("table %q", name), err)
	}
	return out, nil
}

// List returns the associations of a database ordered by table id.
func (r *TableRepo) List(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error) {
	return r.list(ctx, "list tables",
		`SELECT `+tableColumns+` FROM meta_tables WHERE user_id = $1 AND db_id = $2 ORDER BY table_id ASC`,
		userID, dbID)
}

// ListAll returns every association of every tenant.
func (r *TableRepo) ListAll(ctx context.Context) ([]domain.LogicalTable, error) {
	return r.list(ctx, "list all tables",
		`SELECT `+tableColumns+` FROM meta_tables ORDER BY user_id, db_id, table_id`)
}

// GetByName returns the association for a logical table name.
func (r *TableRepo) GetByName(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	t, err := scanTable(r.q.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM meta_tables WHERE user_id = $1 AND db_id = $2 AND table_name = $3`,
		userID, dbID, name))
	if err != nil {
		return nil, mapDBError("get table", fmt.Sprintf("table %q in database %d", name, dbID), err)
	}
	return t, nil
}

// Rename changes the logical name of an association.
func (r *TableRepo) Rename(ctx context.Context, userID, dbID, tableID int64, name string) (*domain.LogicalTable, error) {
	t, err := scanTable(r.q.QueryRowContext(ctx,
		`UPDATE meta_tables SET table_name = $4, updated_at = now() WHERE user_id = $1 AND db_id = $2 AND table_id = $3 RETURNING `+tableColumns,
		userID, dbID, tableID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("table %d not found in database %d", tableID, dbID)
	}
	if err != nil {
		return nil, mapDBError("rename table association", fmt.Sprintf("table %q", name), err)
	}
	return t, nil
}

// Delete removes one association.
func (r *TableRepo) Delete(ctx context.Context, userID, dbID, tableID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM meta_tables WHERE user_id = $1 AND db_id = $2 AND table_id = $3`,
		userID, dbID, tableID)
	if err != nil {
		return mapDBError("delete table association", fmt.Sprintf("table %d", tableID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapDBError("delete table association", fmt.Sprintf("table %d", tableID), err)
	}
	if n == 0 {
		return domain.ErrNotFound("table %d not found in database %d", tableID, dbID)
	}
	return nil
}

// DeleteAll removes every association of a database and reports how many.
func (r *TableRepo) DeleteAll(ctx context.Context, userID, dbID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM meta_tables WHERE user_id = $1 AND db_id = $2`, userID, dbID)
	if err != nil {
		return 0, mapDBError("delete table associations", fmt.Sprintf("database %d", dbID), err)
	}
	return res.RowsAffected()
}

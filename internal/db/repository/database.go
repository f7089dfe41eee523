package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

const databaseColumns = `user_id, db_id, db_name, created_at, updated_at`

// DatabaseRepo implements domain.DatabaseRepository.
type DatabaseRepo struct {
	q db.DBTX
}

// NewDatabaseRepo creates a new DatabaseRepo on a pool or a transaction.
func NewDatabaseRepo(q db.DBTX) *DatabaseRepo {
	return &DatabaseRepo{q: q}
}

var _ domain.DatabaseRepository = (*DatabaseRepo)(nil)

func scanDatabase(row interface{ Scan(...any) error }) (*domain.LogicalDatabase, error) {
	var d domain.LogicalDatabase
	if err := row.Scan(&d.UserID, &d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Get returns the database dbID owned by userID.
func (r *DatabaseRepo) Get(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error) {
	d, err := scanDatabase(r.q.QueryRowContext(ctx,
		`SELECT `+databaseColumns+` FROM meta_databases WHERE user_id = $1 AND db_id = $2`,
		userID, dbID))
	if err != nil {
		return nil, mapDBError("get database", fmt.Sprintf("database %d", dbID), err)
	}
	return d, nil
}

// GetByName returns the database of userID named name.
func (r *DatabaseRepo) GetByName(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	d, err := scanDatabase(r.q.QueryRowContext(ctx,
		`SELECT `+databaseColumns+` FROM meta_databases WHERE user_id = $1 AND db_name = $2`,
		userID, name))
	if err != nil {
		return nil, mapDBError("get database", fmt.Sprintf("database %q", name), err)
	}
	return d, nil
}

// List returns the databases of userID ordered by id.
func (r *DatabaseRepo) List(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+databaseColumns+` FROM meta_databases WHERE user_id = $1 ORDER BY db_id ASC`,
		userID)
	if err != nil {
		return nil, mapDBError("list databases", "databases", err)
	}
	defer rows.Close() //nolint:errcheck

	dbs := []domain.LogicalDatabase{}
	for rows.Next() {
		d, err := scanDatabase(rows)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, *d)
	}
	return dbs, rows.Err()
}

// Create assigns the next database id of userID and inserts the database.
// The per-user counter row is locked by the upsert until the transaction
// ends, so concurrent creates for one user serialize and ids are never reused.
func (r *DatabaseRepo) Create(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	var out *domain.LogicalDatabase
	err := inTx(ctx, r.q, func(q db.DBTX) error {
		var id int64
		if err := q.QueryRowContext(ctx,
			`INSERT INTO meta_user_counters (user_id, last_db_id) VALUES ($1, 1)
ON CONFLICT (user_id) DO UPDATE SET last_db_id = meta_user_counters.last_db_id + 1
RETURNING last_db_id`, userID).Scan(&id); err != nil {
			return err
		}
		d, err := scanDatabase(q.QueryRowContext(ctx,
			`INSERT INTO meta_databases (user_id, db_id, db_name) VALUES ($1, $2, $3) RETURNING `+databaseColumns,
			userID, id, name))
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, mapDBError("create database", fmt.Sprintf("database %q", name), err)
	}
	return out, nil
}

// Rename changes the display name of a database.
func (r *DatabaseRepo) Rename(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error) {
	d, err := scanDatabase(r.q.QueryRowContext(ctx,
		`UPDATE meta_databases SET db_name = $3, updated_at = now() WHERE user_id = $1 AND db_id = $2 RETURNING `+databaseColumns,
		userID, dbID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("database %d not found", dbID)
	}
	if err != nil {
		return nil, mapDBError("rename database", fmt.Sprintf("database %q", name), err)
	}
	return d, nil
}

// Delete removes the database row. Table associations must be removed first.
func (r *DatabaseRepo) Delete(ctx context.Context, userID, dbID int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM meta_databases WHERE user_id = $1 AND db_id = $2`, userID, dbID)
	if err != nil {
		return mapDBError("delete database", fmt.Sprintf("database %d", dbID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapDBError("delete database", fmt.Sprintf("database %d", dbID), err)
	}
	if n == 0 {
		return domain.ErrNotFound("database %d not found", dbID)
	}
	return nil
}

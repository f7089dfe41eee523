// Package catalog implements the logical database and table services: every
// schema mutation pairs physical DDL with the association metadata inside one
// engine transaction, with compensating actions for what the transaction
// cannot undo.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
)

// DatabaseService manages the logical databases of a user.
type DatabaseService struct {
	store    domain.Store
	pgSchema string
	logger   *slog.Logger
}

// NewDatabaseService creates a new DatabaseService. pgSchema is the engine
// schema holding physical tables.
func NewDatabaseService(store domain.Store, pgSchema string, logger *slog.Logger) *DatabaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatabaseService{store: store, pgSchema: pgSchema, logger: logger.With("component", "database-service")}
}

// List returns the databases of userID ordered by id.
func (s *DatabaseService) List(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Databases().List(ctx, userID)
}

// Get returns one database.
func (s *DatabaseService) Get(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Databases().Get(ctx, userID, dbID)
}

// Create validates the display name and creates a database with the next id.
func (s *DatabaseService) Create(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	name, err := ddl.ValidateDisplayName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.store.Databases().Create(ctx, userID, name)
	if err != nil {
		return nil, asConflict(err, "database %q already exists", name)
	}
	s.logger.InfoContext(ctx, "database created", "user_id", userID, "db_id", d.ID, "name", name)
	return d, nil
}

// Rename changes the display name of a database. Physical names do not
// depend on it, so no DDL runs.
func (s *DatabaseService) Rename(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	name, err := ddl.ValidateDisplayName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.store.Databases().Rename(ctx, userID, dbID, name)
	if err != nil {
		return nil, asConflict(err, "database %q already exists", name)
	}
	return d, nil
}

// Delete drops every physical table of the database, then removes the
// associations and the database row. All of it commits or none of it does.
func (s *DatabaseService) Delete(ctx context.Context, userID, dbID int64) error {
	if err := domain.RequireUser(userID); err != nil {
		return err
	}
	var dropped int
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := tx.Databases().Get(ctx, userID, dbID); err != nil {
			return err
		}
		tables, err := tx.Tables().List(ctx, userID, dbID)
		if err != nil {
			return err
		}
		for _, t := range tables {
			physical, err := ddl.ResolvePhysicalName(t.Name, userID, dbID)
			if err != nil {
				return fmt.Errorf("resolve table %q: %w", t.Name, err)
			}
			stmt, err := ddl.DropTable(s.pgSchema, physical)
			if err != nil {
				return err
			}
			if err := tx.Engine().ExecDDL(ctx, stmt); err != nil {
				return err
			}
			dropped++
		}
		if _, err := tx.Tables().DeleteAll(ctx, userID, dbID); err != nil {
			return err
		}
		return tx.Databases().Delete(ctx, userID, dbID)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "database deleted", "user_id", userID, "db_id", dbID, "tables_dropped", dropped)
	return nil
}

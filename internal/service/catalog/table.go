package catalog

import (
	"context"
	"log/slog"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
	"tablehub/internal/saga"
)

// TableService manages logical tables and their physical counterparts.
type TableService struct {
	store    domain.Store
	pgSchema string
	logger   *slog.Logger
}

// NewTableService creates a new TableService.
func NewTableService(store domain.Store, pgSchema string, logger *slog.Logger) *TableService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableService{store: store, pgSchema: pgSchema, logger: logger.With("component", "table-service")}
}

// List returns the tables of a database ordered by table id.
func (s *TableService) List(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.store.Databases().Get(ctx, userID, dbID); err != nil {
		return nil, err
	}
	return s.store.Tables().List(ctx, userID, dbID)
}

// Create creates the physical table, holding only the surrogate key, and its
// association.
func (s *TableService) Create(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	name, err := ddl.ValidateIdentifier(name)
	if err != nil {
		return nil, err
	}
	physical, err := ddl.ResolvePhysicalName(name, userID, dbID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Databases().Get(ctx, userID, dbID); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, userID, dbID, name); err != nil {
		return nil, err
	}
	stmt, err := ddl.CreateTable(s.pgSchema, physical, nil)
	if err != nil {
		return nil, err
	}

	sg := saga.New("create table", s.logger)
	var created *domain.LogicalTable
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Engine().ExecDDL(ctx, stmt); err != nil {
			return asConflict(err, "physical table %s already exists", physical)
		}
		// Registered only once CREATE succeeded: a table that existed
		// before this call is never dropped.
		sg.OnFailure("drop "+physical, s.dropIfPresent(physical))
		t, err := tx.Tables().Create(ctx, userID, dbID, name)
		if err != nil {
			return asConflict(err, "table %q already exists in database %d", name, dbID)
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	s.logger.InfoContext(ctx, "table created",
		"user_id", userID, "db_id", dbID, "table", name, "physical", physical)
	return created, nil
}

// AddColumn adds a column to the physical table and returns its live schema.
func (s *TableService) AddColumn(ctx context.Context, userID, dbID int64, table string, req domain.AddColumnRequest) (*domain.ColumnSchema, error) {
	_, physical, err := ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	name, err := ddl.ValidateIdentifier(req.Name)
	if err != nil {
		return nil, err
	}
	stmt, err := ddl.AddColumn(s.pgSchema, physical, ddl.ColumnSpec{
		Name:     name,
		Type:     req.Type,
		Nullable: req.Nullable(),
		Default:  req.DefaultValue,
		Unique:   req.IsUnique,
	})
	if err != nil {
		return nil, err
	}
	if !req.Nullable() && req.DefaultValue == nil {
		s.logger.WarnContext(ctx, "adding NOT NULL column without default",
			"table", table, "column", name)
	}
	if err := s.store.Engine().ExecDDL(ctx, stmt); err != nil {
		err = asConflict(err, "column %q already exists in table %q", name, table)
		return nil, asNotFound(err, "physical table for %q does not exist", table)
	}

	schema, err := s.store.Introspector().Columns(ctx, physical)
	if err != nil {
		return nil, err
	}
	col, ok := schema.Column(name)
	if !ok {
		return nil, domain.ErrNotFound("column %q not found in table %q", name, table)
	}
	return &col, nil
}

// DropColumn drops a column after checking it exists. Dropping a primary-key
// column is allowed; it is reported in the returned warnings because the
// table can no longer be paginated.
func (s *TableService) DropColumn(ctx context.Context, userID, dbID int64, table, column string) ([]string, error) {
	_, physical, err := ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	schema, err := s.store.Introspector().Columns(ctx, physical)
	if err != nil {
		return nil, asNotFound(err, "physical table for %q does not exist", table)
	}
	col, ok := schema.Column(column)
	if !ok {
		return nil, domain.ErrNotFound("column %q not found in table %q", column, table)
	}

	warnings := []string{}
	if col.IsPrimaryKey {
		msg := "column " + column + " is part of the primary key; rows of " + table + " can no longer be listed page by page"
		warnings = append(warnings, msg)
		s.logger.WarnContext(ctx, "dropping primary key column", "table", table, "column", column)
	}

	stmt, err := ddl.DropColumn(s.pgSchema, physical, column)
	if err != nil {
		return nil, err
	}
	if err := s.store.Engine().ExecDDL(ctx, stmt); err != nil {
		return nil, asNotFound(err, "column %q not found in table %q", column, table)
	}
	return warnings, nil
}

// Rename renames the physical table and the association together. When the
// physical table of the association has disappeared, the orphaned
// association is removed and NotFound is returned.
func (s *TableService) Rename(ctx context.Context, userID, dbID int64, table, newName string) (*domain.LogicalTable, error) {
	newName, err := ddl.ValidateIdentifier(newName)
	if err != nil {
		return nil, err
	}
	current, oldPhysical, err := ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	if newName == current.Name {
		return current, nil
	}
	newPhysical, err := ddl.ResolvePhysicalName(newName, userID, dbID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, userID, dbID, newName); err != nil {
		return nil, err
	}
	// The existence check and the rename are separate statements; a
	// concurrent create of newPhysical in between surfaces as a Conflict
	// from ALTER TABLE.
	exists, err := s.store.Introspector().TableExists(ctx, newPhysical)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict("physical table %s already exists", newPhysical)
	}
	stmt, err := ddl.RenameTable(s.pgSchema, oldPhysical, newPhysical)
	if err != nil {
		return nil, err
	}

	sg := saga.New("rename table", s.logger)
	var sourceMissing bool
	var renamed *domain.LogicalTable
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Engine().ExecDDL(ctx, stmt); err != nil {
			if IsNotFound(err) {
				sourceMissing = true
			}
			return asConflict(err, "physical table %s already exists", newPhysical)
		}
		sg.OnFailure("rename "+newPhysical+" back", s.renameBack(newPhysical, oldPhysical))
		t, err := tx.Tables().Rename(ctx, userID, dbID, current.ID, newName)
		if err != nil {
			return asConflict(err, "table %q already exists in database %d", newName, dbID)
		}
		renamed = t
		return nil
	})
	if sourceMissing {
		if derr := s.store.Tables().Delete(ctx, userID, dbID, current.ID); derr != nil && !IsNotFound(derr) {
			s.logger.ErrorContext(ctx, "remove orphaned association", "table", table, "error", derr)
		} else {
			s.logger.WarnContext(ctx, "removed association without physical table",
				"user_id", userID, "db_id", dbID, "table", table, "physical", oldPhysical)
		}
		return nil, domain.ErrNotFound("physical table for %q does not exist", table)
	}
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	s.logger.InfoContext(ctx, "table renamed", "table", table, "new_name", newName, "physical", newPhysical)
	return renamed, nil
}

// Delete drops the physical table and removes the association.
func (s *TableService) Delete(ctx context.Context, userID, dbID int64, table string) error {
	current, physical, err := ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return err
	}
	stmt, err := ddl.DropTable(s.pgSchema, physical)
	if err != nil {
		return err
	}
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Engine().ExecDDL(ctx, stmt); err != nil {
			return err
		}
		return tx.Tables().Delete(ctx, userID, dbID, current.ID)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "table deleted", "table", table, "physical", physical)
	return nil
}

// Schema returns the live column list of a table.
func (s *TableService) Schema(ctx context.Context, userID, dbID int64, table string) (domain.TableSchema, error) {
	_, physical, err := ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	schema, err := s.store.Introspector().Columns(ctx, physical)
	if err != nil {
		return nil, asNotFound(err, "physical table for %q does not exist", table)
	}
	return schema, nil
}

// ensureFree fails with Conflict when the logical name is taken.
func (s *TableService) ensureFree(ctx context.Context, userID, dbID int64, name string) error {
	_, err := s.store.Tables().GetByName(ctx, userID, dbID, name)
	switch {
	case err == nil:
		return domain.ErrConflict("table %q already exists in database %d", name, dbID)
	case IsNotFound(err):
		return nil
	default:
		return err
	}
}

// dropIfPresent drops a physical table left behind by a failed create. It
// runs outside the failed transaction.
func (s *TableService) dropIfPresent(physical string) saga.UndoFunc {
	return func(ctx context.Context) error {
		exists, err := s.store.Introspector().TableExists(ctx, physical)
		if err != nil || !exists {
			return err
		}
		stmt, err := ddl.DropTable(s.pgSchema, physical)
		if err != nil {
			return err
		}
		return s.store.Engine().ExecDDL(ctx, stmt)
	}
}

// renameBack restores the old physical name when the failed transaction left
// the table under the new one.
func (s *TableService) renameBack(newPhysical, oldPhysical string) saga.UndoFunc {
	return func(ctx context.Context) error {
		intro := s.store.Introspector()
		newExists, err := intro.TableExists(ctx, newPhysical)
		if err != nil || !newExists {
			return err
		}
		oldExists, err := intro.TableExists(ctx, oldPhysical)
		if err != nil || oldExists {
			return err
		}
		stmt, err := ddl.RenameTable(s.pgSchema, newPhysical, oldPhysical)
		if err != nil {
			return err
		}
		return s.store.Engine().ExecDDL(ctx, stmt)
	}
}

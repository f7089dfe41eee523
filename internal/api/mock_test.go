package api

import (
	"context"

	"tablehub/internal/domain"
)

// === Mocks ===

type mockDatabaseService struct {
	listFn   func(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error)
	getFn    func(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error)
	createFn func(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error)
	renameFn func(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error)
	deleteFn func(ctx context.Context, userID, dbID int64) error
}

func (m *mockDatabaseService) List(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error) {
	if m.listFn == nil {
		panic("mockDatabaseService.List called but not configured")
	}
	return m.listFn(ctx, userID)
}

func (m *mockDatabaseService) Get(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error) {
	if m.getFn == nil {
		panic("mockDatabaseService.Get called but not configured")
	}
	return m.getFn(ctx, userID, dbID)
}

func (m *mockDatabaseService) Create(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	if m.createFn == nil {
		panic("mockDatabaseService.Create called but not configured")
	}
	return m.createFn(ctx, userID, name)
}

func (m *mockDatabaseService) Rename(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error) {
	if m.renameFn == nil {
		panic("mockDatabaseService.Rename called but not configured")
	}
	return m.renameFn(ctx, userID, dbID, name)
}

func (m *mockDatabaseService) Delete(ctx context.Context, userID, dbID int64) error {
	if m.deleteFn == nil {
		panic("mockDatabaseService.Delete called but not configured")
	}
	return m.deleteFn(ctx, userID, dbID)
}

type mockTableService struct {
	listFn       func(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error)
	createFn     func(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error)
	renameFn     func(ctx context.Context, userID, dbID int64, table, newName string) (*domain.LogicalTable, error)
	deleteFn     func(ctx context.Context, userID, dbID int64, table string) error
	schemaFn     func(ctx context.Context, userID, dbID int64, table string) (domain.TableSchema, error)
	addColumnFn  func(ctx context.Context, userID, dbID int64, table string, req domain.AddColumnRequest) (*domain.ColumnSchema, error)
	dropColumnFn func(ctx context.Context, userID, dbID int64, table, column string) ([]string, error)
}

func (m *mockTableService) List(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error) {
	if m.listFn == nil {
		panic("mockTableService.List called but not configured")
	}
	return m.listFn(ctx, userID, dbID)
}

func (m *mockTableService) Create(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	if m.createFn == nil {
		panic("mockTableService.Create called but not configured")
	}
	return m.createFn(ctx, userID, dbID, name)
}

func (m *mockTableService) Rename(ctx context.Context, userID, dbID int64, table, newName string) (*domain.LogicalTable, error) {
	if m.renameFn == nil {
		panic("mockTableService.Rename called but not configured")
	}
	return m.renameFn(ctx, userID, dbID, table, newName)
}

func (m *mockTableService) Delete(ctx context.Context, userID, dbID int64, table string) error {
	if m.deleteFn == nil {
		panic("mockTableService.Delete called but not configured")
	}
	return m.deleteFn(ctx, userID, dbID, table)
}

func (m *mockTableService) Schema(ctx context.Context, userID, dbID int64, table string) (domain.TableSchema, error) {
	if m.schemaFn == nil {
		panic("mockTableService.Schema called but not configured")
	}
	return m.schemaFn(ctx, userID, dbID, table)
}

func (m *mockTableService) AddColumn(ctx context.Context, userID, dbID int64, table string, req domain.AddColumnRequest) (*domain.ColumnSchema, error) {
	if m.addColumnFn == nil {
		panic("mockTableService.AddColumn called but not configured")
	}
	return m.addColumnFn(ctx, userID, dbID, table, req)
}

func (m *mockTableService) DropColumn(ctx context.Context, userID, dbID int64, table, column string) ([]string, error) {
	if m.dropColumnFn == nil {
		panic("mockTableService.DropColumn called but not configured")
	}
	return m.dropColumnFn(ctx, userID, dbID, table, column)
}

type mockRowService struct {
	queryFn  func(ctx context.Context, userID, dbID int64, table string, q domain.RowQuery) (*domain.RowPage, error)
	insertFn func(ctx context.Context, userID, dbID int64, table string, input map[string]any) (domain.Record, error)
	updateFn func(ctx context.Context, userID, dbID int64, table, pkValue string, input map[string]any) (domain.Record, error)
	deleteFn func(ctx context.Context, userID, dbID int64, table, pkValue string) (bool, error)
}

func (m *mockRowService) Query(ctx context.Context, userID, dbID int64, table string, q domain.RowQuery) (*domain.RowPage, error) {
	if m.queryFn == nil {
		panic("mockRowService.Query called but not configured")
	}
	return m.queryFn(ctx, userID, dbID, table, q)
}

func (m *mockRowService) Insert(ctx context.Context, userID, dbID int64, table string, input map[string]any) (domain.Record, error) {
	if m.insertFn == nil {
		panic("mockRowService.Insert called but not configured")
	}
	return m.insertFn(ctx, userID, dbID, table, input)
}

func (m *mockRowService) Update(ctx context.Context, userID, dbID int64, table, pkValue string, input map[string]any) (domain.Record, error) {
	if m.updateFn == nil {
		panic("mockRowService.Update called but not configured")
	}
	return m.updateFn(ctx, userID, dbID, table, pkValue, input)
}

func (m *mockRowService) Delete(ctx context.Context, userID, dbID int64, table, pkValue string) (bool, error) {
	if m.deleteFn == nil {
		panic("mockRowService.Delete called but not configured")
	}
	return m.deleteFn(ctx, userID, dbID, table, pkValue)
}

type mockRebuilder struct {
	rebuildFn func(ctx context.Context, userID, dbID int64, table string, headers []string, records []map[string]string) (*domain.ImportResult, error)
}

func (m *mockRebuilder) Rebuild(ctx context.Context, userID, dbID int64, table string, headers []string, records []map[string]string) (*domain.ImportResult, error) {
	if m.rebuildFn == nil {
		panic("mockRebuilder.Rebuild called but not configured")
	}
	return m.rebuildFn(ctx, userID, dbID, table, headers, records)
}

// Package testutil holds function-field mocks of the domain store
// interfaces. Calling a method whose Fn is unset panics.
package testutil

import (
	"context"

	"tablehub/internal/domain"
)

// === Database Repository Mock ===

// MockDatabaseRepo implements domain.DatabaseRepository for testing.
type MockDatabaseRepo struct {
	GetFn       func(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error)
	GetByNameFn func(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error)
	ListFn      func(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error)
	CreateFn    func(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error)
	RenameFn    func(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error)
	DeleteFn    func(ctx context.Context, userID, dbID int64) error
}

// Get implements the interface method for testing.
func (m *MockDatabaseRepo) Get(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, dbID)
	}
	panic("unexpected call to MockDatabaseRepo.Get")
}

// GetByName implements the interface method for testing.
func (m *MockDatabaseRepo) GetByName(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, userID, name)
	}
	panic("unexpected call to MockDatabaseRepo.GetByName")
}

// List implements the interface method for testing.
func (m *MockDatabaseRepo) List(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	panic("unexpected call to MockDatabaseRepo.List")
}

// Create implements the interface method for testing.
func (m *MockDatabaseRepo) Create(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, name)
	}
	panic("unexpected call to MockDatabaseRepo.Create")
}

// Rename implements the interface method for testing.
func (m *MockDatabaseRepo) Rename(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error) {
	if m.RenameFn != nil {
		return m.RenameFn(ctx, userID, dbID, name)
	}
	panic("unexpected call to MockDatabaseRepo.Rename")
}

// Delete implements the interface method for testing.
func (m *MockDatabaseRepo) Delete(ctx context.Context, userID, dbID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, dbID)
	}
	panic("unexpected call to MockDatabaseRepo.Delete")
}

var _ domain.DatabaseRepository = (*MockDatabaseRepo)(nil)

// === Table Repository Mock ===

// MockTableRepo implements domain.TableRepository for testing.
type MockTableRepo struct {
	CreateFn    func(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error)
	ListFn      func(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error)
	ListAllFn   func(ctx context.Context) ([]domain.LogicalTable, error)
	GetByNameFn func(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error)
	RenameFn    func(ctx context.Context, userID, dbID, tableID int64, name string) (*domain.LogicalTable, error)
	DeleteFn    func(ctx context.Context, userID, dbID, tableID int64) error
	DeleteAllFn func(ctx context.Context, userID, dbID int64) (int64, error)
}

// Create implements the interface method for testing.
func (m *MockTableRepo) Create(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, userID, dbID, name)
	}
	panic("unexpected call to MockTableRepo.Create")
}

// List implements the interface method for testing.
func (m *MockTableRepo) List(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, dbID)
	}
	panic("unexpected call to MockTableRepo.List")
}

// ListAll implements the interface method for testing.
func (m *MockTableRepo) ListAll(ctx context.Context) ([]domain.LogicalTable, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	panic("unexpected call to MockTableRepo.ListAll")
}

// GetByName implements the interface method for testing.
func (m *MockTableRepo) GetByName(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, userID, dbID, name)
	}
	panic("unexpected call to MockTableRepo.GetByName")
}

// Rename implements the interface method for testing.
func (m *MockTableRepo) Rename(ctx context.Context, userID, dbID, tableID int64, name string) (*domain.LogicalTable, error) {
	if m.RenameFn != nil {
		return m.RenameFn(ctx, userID, dbID, tableID, name)
	}
	panic("unexpected call to MockTableRepo.Rename")
}

// Delete implements the interface method for testing.
func (m *MockTableRepo) Delete(ctx context.Context, userID, dbID, tableID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, userID, dbID, tableID)
	}
	panic("unexpected call to MockTableRepo.Delete")
}

// DeleteAll implements the interface method for testing.
func (m *MockTableRepo) DeleteAll(ctx context.Context, userID, dbID int64) (int64, error) {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx, userID, dbID)
	}
	panic("unexpected call to MockTableRepo.DeleteAll")
}

var _ domain.TableRepository = (*MockTableRepo)(nil)

// === Schema Introspector Mock ===

// MockIntrospector implements domain.SchemaIntrospector for testing.
type MockIntrospector struct {
	ColumnsFn            func(ctx context.Context, table string) (domain.TableSchema, error)
	TableExistsFn        func(ctx context.Context, table string) (bool, error)
	ListPhysicalTablesFn func(ctx context.Context) ([]string, error)
}

// Columns implements the interface method for testing.
func (m *MockIntrospector) Columns(ctx context.Context, table string) (domain.TableSchema, error) {
	if m.ColumnsFn != nil {
		return m.ColumnsFn(ctx, table)
	}
	panic("unexpected call to MockIntrospector.Columns")
}

// TableExists implements the interface method for testing.
func (m *MockIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	if m.TableExistsFn != nil {
		return m.TableExistsFn(ctx, table)
	}
	panic("unexpected call to MockIntrospector.TableExists")
}

// ListPhysicalTables implements the interface method for testing.
func (m *MockIntrospector) ListPhysicalTables(ctx context.Context) ([]string, error) {
	if m.ListPhysicalTablesFn != nil {
		return m.ListPhysicalTablesFn(ctx)
	}
	panic("unexpected call to MockIntrospector.ListPhysicalTables")
}

var _ domain.SchemaIntrospector = (*MockIntrospector)(nil)

// === Physical Engine Mock ===

// MockEngine implements domain.PhysicalEngine for testing.
type MockEngine struct {
	ExecDDLFn      func(ctx context.Context, stmt string) error
	ExecFn         func(ctx context.Context, query string, args ...any) (int64, error)
	QueryCountFn   func(ctx context.Context, query string, args ...any) (int64, error)
	QueryRecordsFn func(ctx context.Context, schema domain.TableSchema, query string, args ...any) ([]domain.Record, error)
	QueryRecordFn  func(ctx context.Context, schema domain.TableSchema, query string, args ...any) (domain.Record, error)
	DDL            []string // successfully executed DDL, for assertions
}

// ExecDDL implements the interface method for testing. Statements are
// collected in DDL when ExecDDLFn is unset or succeeds.
func (m *MockEngine) ExecDDL(ctx context.Context, stmt string) error {
	if m.ExecDDLFn != nil {
		if err := m.ExecDDLFn(ctx, stmt); err != nil {
			return err
		}
	}
	m.DDL = append(m.DDL, stmt)
	return nil
}

// Exec implements the interface method for testing.
func (m *MockEngine) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if m.ExecFn != nil {
		return m.ExecFn(ctx, query, args...)
	}
	panic("unexpected call to MockEngine.Exec")
}

// QueryCount implements the interface method for testing.
func (m *MockEngine) QueryCount(ctx context.Context, query string, args ...any) (int64, error) {
	if m.QueryCountFn != nil {
		return m.QueryCountFn(ctx, query, args...)
	}
	panic("unexpected call to MockEngine.QueryCount")
}

// QueryRecords implements the interface method for testing.
func (m *MockEngine) QueryRecords(ctx context.Context, schema domain.TableSchema, query string, args ...any) ([]domain.Record, error) {
	if m.QueryRecordsFn != nil {
		return m.QueryRecordsFn(ctx, schema, query, args...)
	}
	panic("unexpected call to MockEngine.QueryRecords")
}

// QueryRecord implements the interface method for testing.
func (m *MockEngine) QueryRecord(ctx context.Context, schema domain.TableSchema, query string, args ...any) (domain.Record, error) {
	if m.QueryRecordFn != nil {
		return m.QueryRecordFn(ctx, schema, query, args...)
	}
	panic("unexpected call to MockEngine.QueryRecord")
}

var _ domain.PhysicalEngine = (*MockEngine)(nil)

// === Store Mock ===

// MockStore implements domain.Store for testing. Unset repositories are
// replaced by empty mocks that panic on use. InTx runs fn against the same
// store and counts transactions; set InTxFn to inject failures.
type MockStore struct {
	DatabasesRepo *MockDatabaseRepo
	TablesRepo    *MockTableRepo
	Introspect    *MockIntrospector
	Eng           *MockEngine
	InTxFn        func(ctx context.Context, fn func(tx domain.Store) error) error
	Transactions  int
}

// Databases implements the interface method for testing.
func (m *MockStore) Databases() domain.DatabaseRepository {
	if m.DatabasesRepo == nil {
		return &MockDatabaseRepo{}
	}
	return m.DatabasesRepo
}

// Tables implements the interface method for testing.
func (m *MockStore) Tables() domain.TableRepository {
	if m.TablesRepo == nil {
		return &MockTableRepo{}
	}
	return m.TablesRepo
}

// Introspector implements the interface method for testing.
func (m *MockStore) Introspector() domain.SchemaIntrospector {
	if m.Introspect == nil {
		return &MockIntrospector{}
	}
	return m.Introspect
}

// Engine implements the interface method for testing.
func (m *MockStore) Engine() domain.PhysicalEngine {
	if m.Eng == nil {
		m.Eng = &MockEngine{}
	}
	return m.Eng
}

// InTx implements the interface method for testing.
func (m *MockStore) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	m.Transactions++
	if m.InTxFn != nil {
		return m.InTxFn(ctx, fn)
	}
	return fn(m)
}

var _ domain.Store = (*MockStore)(nil)

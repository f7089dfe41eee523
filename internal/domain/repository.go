package domain

import "context"

// DatabaseRepository persists logical databases, scoped by user.
type DatabaseRepository interface {
	Get(ctx context.Context, userID, dbID int64) (*LogicalDatabase, error)
	GetByName(ctx context.Context, userID int64, name string) (*LogicalDatabase, error)
	List(ctx context.Context, userID int64) ([]LogicalDatabase, error)
	Create(ctx context.Context, userID int64, name string) (*LogicalDatabase, error)
	Rename(ctx context.Context, userID, dbID int64, name string) (*LogicalDatabase, error)
	Delete(ctx context.Context, userID, dbID int64) error
}

// TableRepository persists logical-to-physical table associations.
type TableRepository interface {
	Create(ctx context.Context, userID, dbID int64, name string) (*LogicalTable, error)
	List(ctx context.Context, userID, dbID int64) ([]LogicalTable, error)
	ListAll(ctx context.Context) ([]LogicalTable, error)
	GetByName(ctx context.Context, userID, dbID int64, name string) (*LogicalTable, error)
	Rename(ctx context.Context, userID, dbID, tableID int64, name string) (*LogicalTable, error)
	Delete(ctx context.Context, userID, dbID, tableID int64) error
	DeleteAll(ctx context.Context, userID, dbID int64) (int64, error)
}

// SchemaIntrospector reads the engine's live catalog. Results are never cached.
type SchemaIntrospector interface {
	Columns(ctx context.Context, table string) (TableSchema, error)
	TableExists(ctx context.Context, table string) (bool, error)
	ListPhysicalTables(ctx context.Context) ([]string, error)
}

// PhysicalEngine executes generated statements against physical tables.
// QueryRecords and QueryRecord resolve scanned cells against schema.
type PhysicalEngine interface {
	ExecDDL(ctx context.Context, stmt string) error
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryCount(ctx context.Context, query string, args ...any) (int64, error)
	QueryRecords(ctx context.Context, schema TableSchema, query string, args ...any) ([]Record, error)
	QueryRecord(ctx context.Context, schema TableSchema, query string, args ...any) (Record, error)
}

// Store groups the repositories that must be able to share one transaction.
type Store interface {
	Databases() DatabaseRepository
	Tables() TableRepository
	Introspector() SchemaIntrospector
	Engine() PhysicalEngine
	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

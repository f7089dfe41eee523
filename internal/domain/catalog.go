package domain

import "time"

// SurrogateKeyColumn is the auto-incrementing primary key every table created
// or rebuilt by the hub carries.
const SurrogateKeyColumn = "serial_num"

// LogicalDatabase is a user-owned namespace of logical tables.
type LogicalDatabase struct {
	UserID    int64     `json:"userId"`
	ID        int64     `json:"dbId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LogicalTable associates a user-chosen table name with a physical table.
type LogicalTable struct {
	UserID     int64     `json:"userId"`
	DatabaseID int64     `json:"dbId"`
	ID         int64     `json:"tableId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ColumnSchema describes one live column of a physical table.
type ColumnSchema struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	IsNullable      bool    `json:"isNullable"`
	Default         *string `json:"defaultValue"`
	IsPrimaryKey    bool    `json:"isPrimaryKey"`
	IsForeignKey    bool    `json:"isForeignKey"`
	IsAutoGenerated bool    `json:"isAutoGenerated"`
}

// Kind classifies the declared type into a value kind.
func (c ColumnSchema) Kind() Kind { return KindOfType(c.Type) }

// Required reports whether an insert must supply the column.
func (c ColumnSchema) Required() bool {
	return !c.IsNullable && c.Default == nil && !c.IsAutoGenerated
}

// TableSchema is the ordered column list of a physical table.
type TableSchema []ColumnSchema

// Column returns the named column.
func (s TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// PrimaryKey returns the primary-key columns in ordinal order.
func (s TableSchema) PrimaryKey() []ColumnSchema {
	var pk []ColumnSchema
	for _, c := range s {
		if c.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// Names returns the column names in ordinal order.
func (s TableSchema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// AddColumnRequest is the payload of a column addition.
type AddColumnRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsNullable   *bool  `json:"isNullable,omitempty"`
	DefaultValue any    `json:"defaultValue,omitempty"`
	IsUnique     bool   `json:"isUnique,omitempty"`
}

// Nullable reports whether the column should accept NULL. Defaults to true.
func (r AddColumnRequest) Nullable() bool {
	return r.IsNullable == nil || *r.IsNullable
}

// ImportResult reports the outcome of a bulk rebuild.
type ImportResult struct {
	Message       string `json:"message"`
	RowsProcessed int64  `json:"rowsProcessed"`
	TableRebuilt  bool   `json:"tableRebuilt"`
}

// ReapResult lists orphaned physical tables found (and dropped unless dry-run).
type ReapResult struct {
	Orphans []string `json:"orphans"`
	Dropped []string `json:"dropped"`
	DryRun  bool     `json:"dryRun"`
}

// Package ddl validates names and builds PostgreSQL DDL statements for
// tenant-scoped physical tables.
package ddl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tablehub/internal/domain"
)

// ColumnDef describes a column for CREATE TABLE.
type ColumnDef struct {
	Name string
	Type string
}

// ColumnSpec describes a column for ALTER TABLE ... ADD COLUMN.
type ColumnSpec struct {
	Name     string
	Type     string
	Nullable bool
	Default  any
	Unique   bool
}

// builtinDefaults are default expressions passed through unquoted.
var builtinDefaults = map[string]struct{}{
	"CURRENT_TIMESTAMP":  {},
	"CURRENT_DATE":       {},
	"CURRENT_TIME":       {},
	"NOW()":              {},
	"GEN_RANDOM_UUID()":  {},
	"UUID_GENERATE_V4()": {},
}

// checkName validates an already-derived name that is always quoted, so
// reserved words are acceptable.
func checkName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if len(name) > MaxIdentifierLen {
		return fmt.Errorf("%s name must be at most %d characters", kind, MaxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// CreateTable returns:
// CREATE TABLE "<schema>"."<table>" ("serial_num" BIGSERIAL PRIMARY KEY, "<col>" TYPE, ...).
// The surrogate key is always the first column.
func CreateTable(schema, table string, columns []ColumnDef) (string, error) {
	if err := checkName("schema", schema); err != nil {
		return "", err
	}
	if err := checkName("table", table); err != nil {
		return "", err
	}

	colDefs := []string{QuoteIdentifier(domain.SurrogateKeyColumn) + " BIGSERIAL PRIMARY KEY"}
	for _, c := range columns {
		if c.Name == domain.SurrogateKeyColumn {
			return "", domain.ErrInvalid(domain.ReasonReservedName,
				"column name %q is reserved", c.Name)
		}
		if err := checkName("column", c.Name); err != nil {
			return "", err
		}
		typ, err := ValidateColumnType(c.Type)
		if err != nil {
			return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s %s", QuoteIdentifier(c.Name), typ))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)",
		QuoteQualified(schema, table),
		strings.Join(colDefs, ", "),
	), nil
}

// DropTable returns: DROP TABLE IF EXISTS "<schema>"."<table>".
func DropTable(schema, table string) (string, error) {
	if err := checkName("schema", schema); err != nil {
		return "", err
	}
	if err := checkName("table", table); err != nil {
		return "", err
	}
	return "DROP TABLE IF EXISTS " + QuoteQualified(schema, table), nil
}

// RenameTable returns: ALTER TABLE "<schema>"."<from>" RENAME TO "<to>".
func RenameTable(schema, from, to string) (string, error) {
	if err := checkName("schema", schema); err != nil {
		return "", err
	}
	if err := checkName("table", from); err != nil {
		return "", err
	}
	if err := checkName("table", to); err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", QuoteQualified(schema, from), QuoteIdentifier(to)), nil
}

// AddColumn returns an ALTER TABLE ... ADD COLUMN statement. The column name
// is validated as a user identifier and the type against the allow-list.
func AddColumn(schema, table string, spec ColumnSpec) (string, error) {
	if err := checkName("schema", schema); err != nil {
		return "", err
	}
	if err := checkName("table", table); err != nil {
		return "", err
	}
	name, err := ValidateIdentifier(spec.Name)
	if err != nil {
		return "", err
	}
	typ, err := ValidateColumnType(spec.Type)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD COLUMN %s %s", QuoteQualified(schema, table), QuoteIdentifier(name), typ)
	if spec.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if spec.Default != nil {
		lit, err := DefaultLiteral(spec.Default)
		if err != nil {
			return "", err
		}
		b.WriteString(" DEFAULT ")
		b.WriteString(lit)
	}
	if spec.Unique {
		b.WriteString(" UNIQUE")
	}
	return b.String(), nil
}

// DropColumn returns: ALTER TABLE "<schema>"."<table>" DROP COLUMN "<column>".
func DropColumn(schema, table, column string) (string, error) {
	if err := checkName("schema", schema); err != nil {
		return "", err
	}
	if err := checkName("table", table); err != nil {
		return "", err
	}
	if err := checkName("column", column); err != nil {
		return "", domain.ErrInvalid(domain.ReasonInvalidName, "%v", err)
	}
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", QuoteQualified(schema, table), QuoteIdentifier(column)), nil
}

// DefaultLiteral renders a decoded JSON default value as a SQL literal.
// Numbers and booleans are emitted bare, recognized built-in expressions are
// emitted as is, every other string is quoted.
func DefaultLiteral(v any) (string, error) {
	switch d := v.(type) {
	case string:
		if _, ok := builtinDefaults[strings.ToUpper(strings.TrimSpace(d))]; ok {
			return strings.ToUpper(strings.TrimSpace(d)), nil
		}
		return QuoteLiteral(d), nil
	case bool:
		if d {
			return "TRUE", nil
		}
		return "FALSE", nil
	case json.Number:
		if _, err := strconv.ParseFloat(d.String(), 64); err != nil {
			return "", domain.ErrValidation("invalid numeric default %q", d.String())
		}
		return d.String(), nil
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(d), nil
	case int64:
		return strconv.FormatInt(d, 10), nil
	}
	return "", domain.ErrValidation("unsupported default value of type %T", v)
}

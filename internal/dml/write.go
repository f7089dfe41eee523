package dml

import (
	"fmt"
	"strings"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
)

// maxBindParams is the PostgreSQL limit on bind parameters per statement.
const maxBindParams = 65535

// maxRowsPerInsert caps a single multi-row INSERT.
const maxRowsPerInsert = 1000

// BuildInsert builds a single-row INSERT ... RETURNING *. Fields that are not
// columns, and a caller-supplied auto-generated key, are dropped. Omitting a
// NOT NULL column without a default is a validation error.
func BuildInsert(pgSchema, table string, schema domain.TableSchema, rec domain.Record) (Statement, error) {
	var cols []string
	var a args
	var placeholders []string
	for _, f := range rec {
		col, ok := schema.Column(f.Name)
		if !ok || (col.IsPrimaryKey && col.IsAutoGenerated) {
			continue
		}
		cols = append(cols, ddl.QuoteIdentifier(col.Name))
		placeholders = append(placeholders, a.bind(f.Value.Arg()))
	}

	if len(cols) == 0 && !hasAutoKey(schema) {
		return Statement{}, domain.ErrInvalid(domain.ReasonNoData, "no valid column data supplied for table %q", table)
	}
	var missing []string
	for _, col := range schema {
		if !col.Required() {
			continue
		}
		if v, ok := rec.Get(col.Name); !ok || v.IsNull() {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return Statement{}, domain.ErrValidation("missing value for required column(s): %s", strings.Join(missing, ", "))
	}

	target := ddl.QuoteQualified(pgSchema, table)
	if len(cols) == 0 {
		return Statement{SQL: fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", target)}, nil
	}
	return Statement{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			target, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		Args: a.values,
	}, nil
}

// BuildUpdate builds UPDATE ... WHERE pk = $n RETURNING *. The key column and
// unknown fields are never updated. When nothing is left to set, the returned
// statement selects the current row and noop is true.
func BuildUpdate(pgSchema, table string, schema domain.TableSchema, pk domain.ColumnSchema, key domain.Value, rec domain.Record) (stmt Statement, noop bool, err error) {
	target := ddl.QuoteQualified(pgSchema, table)
	var sets []string
	var a args
	for _, f := range rec {
		col, ok := schema.Column(f.Name)
		if !ok || col.Name == pk.Name {
			continue
		}
		sets = append(sets, ddl.QuoteIdentifier(col.Name)+" = "+a.bind(f.Value.Arg()))
	}
	if len(sets) == 0 {
		return BuildSelectByKey(pgSchema, table, schema, pk, key), true, nil
	}
	return Statement{
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING *",
			target, strings.Join(sets, ", "), ddl.QuoteIdentifier(pk.Name), a.bind(key.Arg())),
		Args: a.values,
	}, false, nil
}

// BuildSelectByKey selects one row by primary key, columns in schema order.
func BuildSelectByKey(pgSchema, table string, schema domain.TableSchema, pk domain.ColumnSchema, key domain.Value) Statement {
	return Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
			quoteAll(schema.Names()), ddl.QuoteQualified(pgSchema, table), ddl.QuoteIdentifier(pk.Name)),
		Args: []any{key.Arg()},
	}
}

// BuildDelete builds DELETE ... WHERE pk = $1.
func BuildDelete(pgSchema, table string, pk domain.ColumnSchema, key domain.Value) Statement {
	return Statement{
		SQL: fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
			ddl.QuoteQualified(pgSchema, table), ddl.QuoteIdentifier(pk.Name)),
		Args: []any{key.Arg()},
	}
}

// BuildBulkInsert splits rows into multi-row INSERT statements that stay
// under the bind parameter limit. Each row must have len(columns) values;
// nil binds NULL.
func BuildBulkInsert(pgSchema, table string, columns []string, rows [][]any) []Statement {
	if len(columns) == 0 || len(rows) == 0 {
		return nil
	}
	perStmt := maxBindParams / len(columns)
	if perStmt > maxRowsPerInsert {
		perStmt = maxRowsPerInsert
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", ddl.QuoteQualified(pgSchema, table), quoteAll(columns))

	var stmts []Statement
	for start := 0; start < len(rows); start += perStmt {
		end := start + perStmt
		if end > len(rows) {
			end = len(rows)
		}
		var a args
		tuples := make([]string, 0, end-start)
		for _, row := range rows[start:end] {
			ph := make([]string, len(columns))
			for i := range columns {
				var v any
				if i < len(row) {
					v = row[i]
				}
				ph[i] = a.bind(v)
			}
			tuples = append(tuples, "("+strings.Join(ph, ", ")+")")
		}
		stmts = append(stmts, Statement{SQL: prefix + strings.Join(tuples, ", "), Args: a.values})
	}
	return stmts
}

// CoerceKey converts a primary-key value taken from a URL to the key
// column's declared kind.
func CoerceKey(pk domain.ColumnSchema, raw string) (domain.Value, error) {
	v, err := domain.CoerceValue(pk, raw)
	if err != nil || v.IsNull() {
		return domain.Value{}, domain.ErrValidation("invalid primary key value %q for column %q", raw, pk.Name)
	}
	return v, nil
}

func hasAutoKey(schema domain.TableSchema) bool {
	for _, c := range schema {
		if c.IsPrimaryKey && c.IsAutoGenerated {
			return true
		}
	}
	return false
}

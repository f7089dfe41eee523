// Package dml builds parameterized PostgreSQL statements for reading and
// writing rows of physical tables. Values are always bound, never
// interpolated; identifiers are always quoted.
package dml

import (
	"fmt"
	"strconv"
	"strings"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
)

// GroupCountColumn is the name of the occurrence count in grouped reads.
const GroupCountColumn = "group_count"

// Statement is a SQL text with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Dropped records a filter or group-by column that was ignored.
type Dropped struct {
	Column string
	Reason string
}

// SelectPlan holds the data and count statements of one read.
type SelectPlan struct {
	Data    Statement
	Count   Statement
	Grouped bool
	GroupBy []string
	Dropped []Dropped
}

// args accumulates bind arguments and hands out $n placeholders.
type args struct {
	values []any
}

func (a *args) bind(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// BuildSelect builds the data and count statements for q against the
// physical table described by schema. Unknown columns, unsupported operators
// and values that do not fit their column are dropped and reported.
func BuildSelect(pgSchema, table string, schema domain.TableSchema, q domain.RowQuery) (*SelectPlan, error) {
	plan := &SelectPlan{}
	from := ddl.QuoteQualified(pgSchema, table)

	var a args
	where := buildWhere(schema, q.Filters, &a, &plan.Dropped)

	seen := map[string]bool{}
	for _, g := range q.GroupBy {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		if _, ok := schema.Column(g); !ok {
			plan.Dropped = append(plan.Dropped, Dropped{Column: g, Reason: "unknown group-by column"})
			continue
		}
		seen[g] = true
		plan.GroupBy = append(plan.GroupBy, g)
	}

	limit, offset := q.Page.Limit(), q.Page.Offset()

	if len(plan.GroupBy) > 0 {
		plan.Grouped = true
		cols := quoteAll(plan.GroupBy)
		plan.Count = Statement{
			SQL: fmt.Sprintf("SELECT COUNT(*) FROM (SELECT DISTINCT %s FROM %s%s) AS distinct_groups",
				cols, from, where),
			Args: append([]any(nil), a.values...),
		}
		order := make([]string, len(plan.GroupBy))
		for i, g := range plan.GroupBy {
			order[i] = ddl.QuoteIdentifier(g) + " ASC"
		}
		sql := fmt.Sprintf("SELECT %s, COUNT(*) AS %s FROM %s%s GROUP BY %s ORDER BY %s",
			cols, ddl.QuoteIdentifier(GroupCountColumn), from, where, cols, strings.Join(order, ", "))
		sql += " LIMIT " + a.bind(limit) + " OFFSET " + a.bind(offset)
		plan.Data = Statement{SQL: sql, Args: a.values}
		return plan, nil
	}

	pk := schema.PrimaryKey()
	if len(pk) == 0 {
		return nil, domain.ErrInvalid(domain.ReasonNoStableOrder,
			"table %q has no primary key; rows cannot be paginated in a stable order", table)
	}
	order := make([]string, len(pk))
	for i, c := range pk {
		order[i] = ddl.QuoteIdentifier(c.Name) + " ASC"
	}

	plan.Count = Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where),
		Args: append([]any(nil), a.values...),
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		quoteAll(schema.Names()), from, where, strings.Join(order, ", "))
	sql += " LIMIT " + a.bind(limit) + " OFFSET " + a.bind(offset)
	plan.Data = Statement{SQL: sql, Args: a.values}
	return plan, nil
}

// buildWhere renders the flat filter chain. The connector of a condition is
// only emitted when an earlier condition was emitted.
func buildWhere(schema domain.TableSchema, filters []domain.FilterCondition, a *args, dropped *[]Dropped) string {
	var b strings.Builder
	emitted := 0
	for _, f := range filters {
		cond, ok, reason := buildCondition(schema, f, a)
		if !ok {
			*dropped = append(*dropped, Dropped{Column: f.Column, Reason: reason})
			continue
		}
		if emitted > 0 {
			b.WriteString(" " + connector(f.Connector) + " ")
		}
		b.WriteString(cond)
		emitted++
	}
	if emitted == 0 {
		return ""
	}
	return " WHERE " + b.String()
}

func connector(c string) string {
	if strings.EqualFold(strings.TrimSpace(c), "OR") {
		return "OR"
	}
	return "AND"
}

func buildCondition(schema domain.TableSchema, f domain.FilterCondition, a *args) (string, bool, string) {
	col, ok := schema.Column(f.Column)
	if !ok {
		return "", false, "unknown column"
	}
	ident := ddl.QuoteIdentifier(col.Name)
	op := strings.ToUpper(strings.Join(strings.Fields(f.Operator), " "))

	switch op {
	case "IS NULL", "IS NOT NULL":
		return ident + " " + op, true, ""
	case "LIKE", "NOT LIKE":
		if f.Value == nil {
			return "", false, "missing value for " + op
		}
		v, err := domain.CoerceValue(domain.ColumnSchema{Name: col.Name, Type: "text"}, f.Value)
		if err != nil {
			return "", false, err.Error()
		}
		return fmt.Sprintf("CAST(%s AS TEXT) %s %s", ident, op, a.bind("%"+v.String()+"%")), true, ""
	case "=", "!=", ">", ">=", "<", "<=":
		if f.Value == nil {
			return "", false, "null value for " + op + "; use IS NULL"
		}
		v, err := domain.CoerceValue(col, f.Value)
		if err != nil {
			return "", false, err.Error()
		}
		return fmt.Sprintf("%s %s %s", ident, op, a.bind(v.Arg())), true, ""
	}
	return "", false, fmt.Sprintf("unsupported operator %q", f.Operator)
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ddl.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

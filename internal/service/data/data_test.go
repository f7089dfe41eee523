package data

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablehub/internal/domain"
	"tablehub/internal/testutil"
)

func peopleSchema() domain.TableSchema {
	seq := "nextval('people_u1_db2_serial_num_seq'::regclass)"
	return domain.TableSchema{
		{Name: "serial_num", Type: "bigint", Default: &seq, IsPrimaryKey: true, IsAutoGenerated: true},
		{Name: "name", Type: "text", IsNullable: true},
		{Name: "age", Type: "integer", IsNullable: true},
	}
}

func newStore(schema domain.TableSchema, eng *testutil.MockEngine) *testutil.MockStore {
	return &testutil.MockStore{
		TablesRepo: &testutil.MockTableRepo{
			GetByNameFn: func(_ context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
				if name != "people" {
					return nil, domain.ErrNotFound("table %q not found", name)
				}
				return &domain.LogicalTable{UserID: userID, DatabaseID: dbID, ID: 1, Name: name}, nil
			},
		},
		Introspect: &testutil.MockIntrospector{
			ColumnsFn: func(_ context.Context, table string) (domain.TableSchema, error) {
				if table != "people_u1_db2" {
					return nil, domain.ErrNotFound("%s does not exist", table)
				}
				return schema, nil
			},
		},
		Eng: eng,
	}
}

func TestService_Query(t *testing.T) {
	var countSQL, dataSQL string
	var dataArgs []any
	eng := &testutil.MockEngine{
		QueryCountFn: func(_ context.Context, q string, _ ...any) (int64, error) {
			countSQL = q
			return 45, nil
		},
		QueryRecordsFn: func(_ context.Context, _ domain.TableSchema, q string, args ...any) ([]domain.Record, error) {
			dataSQL, dataArgs = q, args
			return []domain.Record{{{Name: "serial_num", Value: domain.Integer(21)}}}, nil
		},
	}
	svc := NewService(newStore(peopleSchema(), eng), "public", nil)

	page, err := svc.Query(context.Background(), 1, 2, "people", domain.RowQuery{
		Filters: []domain.FilterCondition{
			{Column: "age", Operator: ">", Value: json.Number("30")},
			{Column: "nope", Operator: "=", Value: "x", Connector: "OR"},
		},
		Page: domain.PageRequest{Page: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, `SELECT COUNT(*) FROM "public"."people_u1_db2" WHERE "age" > $1`, countSQL)
	assert.Equal(t, `SELECT "serial_num", "name", "age" FROM "public"."people_u1_db2" WHERE "age" > $1 ORDER BY "serial_num" ASC LIMIT $2 OFFSET $3`, dataSQL)
	assert.Equal(t, []any{int64(30), 20, 20}, dataArgs)
	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, int64(3), page.Pages)
	assert.False(t, page.Grouped)
	assert.Len(t, page.Data, 1)
}

func TestService_QueryErrors(t *testing.T) {
	t.Run("unknown table", func(t *testing.T) {
		svc := NewService(newStore(peopleSchema(), &testutil.MockEngine{}), "public", nil)
		_, err := svc.Query(context.Background(), 1, 2, "ghosts", domain.RowQuery{})
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := NewService(newStore(peopleSchema(), &testutil.MockEngine{}), "public", nil)
		_, err := svc.Query(context.Background(), 0, 2, "people", domain.RowQuery{})
		var unauth *domain.UnauthenticatedError
		assert.ErrorAs(t, err, &unauth)
	})

	t.Run("keyless table", func(t *testing.T) {
		schema := domain.TableSchema{{Name: "name", Type: "text", IsNullable: true}}
		svc := NewService(newStore(schema, &testutil.MockEngine{}), "public", nil)
		_, err := svc.Query(context.Background(), 1, 2, "people", domain.RowQuery{})
		assert.Equal(t, domain.ReasonNoStableOrder, domain.ReasonOf(err))
	})
}

func TestService_Insert(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	eng := &testutil.MockEngine{
		QueryRecordFn: func(_ context.Context, _ domain.TableSchema, q string, args ...any) (domain.Record, error) {
			gotSQL, gotArgs = q, args
			return domain.Record{
				{Name: "serial_num", Value: domain.Integer(1)},
				{Name: "name", Value: domain.Text("Ann")},
				{Name: "age", Value: domain.Null()},
			}, nil
		},
	}
	svc := NewService(newStore(peopleSchema(), eng), "public", nil)

	row, err := svc.Insert(context.Background(), 1, 2, "people", map[string]any{
		"serial_num": json.Number("99"),
		"name":       "Ann",
		"extra":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."people_u1_db2" ("name") VALUES ($1) RETURNING *`, gotSQL)
	assert.Equal(t, []any{"Ann"}, gotArgs)

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"serial_num":1,"name":"Ann","age":null}`, string(out))
}

func TestService_InsertIgnoresGeneratedKeyValue(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	eng := &testutil.MockEngine{
		QueryRecordFn: func(_ context.Context, _ domain.TableSchema, q string, args ...any) (domain.Record, error) {
			gotSQL, gotArgs = q, args
			return domain.Record{{Name: "serial_num", Value: domain.Integer(1)}}, nil
		},
	}
	svc := NewService(newStore(peopleSchema(), eng), "public", nil)

	input := map[string]any{"serial_num": "", "name": "Ann"}
	_, err := svc.Insert(context.Background(), 1, 2, "people", input)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."people_u1_db2" ("name") VALUES ($1) RETURNING *`, gotSQL)
	assert.Equal(t, []any{"Ann"}, gotArgs)
	assert.Contains(t, input, "serial_num")
}

func TestService_InsertRejectsBadValue(t *testing.T) {
	svc := NewService(newStore(peopleSchema(), &testutil.MockEngine{}), "public", nil)
	_, err := svc.Insert(context.Background(), 1, 2, "people", map[string]any{"age": "old"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_Update(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		eng := &testutil.MockEngine{
			QueryRecordFn: func(context.Context, domain.TableSchema, string, ...any) (domain.Record, error) {
				return nil, nil
			},
		}
		svc := NewService(newStore(peopleSchema(), eng), "public", nil)
		_, err := svc.Update(context.Background(), 1, 2, "people", "7", map[string]any{"name": "Bo"})
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Contains(t, nf.Message, "7")
	})

	t.Run("key is coerced", func(t *testing.T) {
		var gotArgs []any
		eng := &testutil.MockEngine{
			QueryRecordFn: func(_ context.Context, _ domain.TableSchema, _ string, args ...any) (domain.Record, error) {
				gotArgs = args
				return domain.Record{{Name: "serial_num", Value: domain.Integer(7)}}, nil
			},
		}
		svc := NewService(newStore(peopleSchema(), eng), "public", nil)
		_, err := svc.Update(context.Background(), 1, 2, "people", "7", map[string]any{"name": "Bo"})
		require.NoError(t, err)
		assert.Equal(t, []any{"Bo", int64(7)}, gotArgs)
	})

	t.Run("key field in body is ignored", func(t *testing.T) {
		var gotSQL string
		var gotArgs []any
		eng := &testutil.MockEngine{
			QueryRecordFn: func(_ context.Context, _ domain.TableSchema, q string, args ...any) (domain.Record, error) {
				gotSQL, gotArgs = q, args
				return domain.Record{{Name: "serial_num", Value: domain.Integer(1)}}, nil
			},
		}
		svc := NewService(newStore(peopleSchema(), eng), "public", nil)
		_, err := svc.Update(context.Background(), 1, 2, "people", "1", map[string]any{"serial_num": "new", "name": "Bob"})
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "public"."people_u1_db2" SET "name" = $1 WHERE "serial_num" = $2 RETURNING *`, gotSQL)
		assert.Equal(t, []any{"Bob", int64(1)}, gotArgs)
	})

	t.Run("invalid key", func(t *testing.T) {
		svc := NewService(newStore(peopleSchema(), &testutil.MockEngine{}), "public", nil)
		_, err := svc.Update(context.Background(), 1, 2, "people", "seven", map[string]any{})
		assert.Equal(t, domain.ReasonInvalidArgument, domain.ReasonOf(err))
	})
}

func TestService_Delete(t *testing.T) {
	affected := int64(1)
	eng := &testutil.MockEngine{
		ExecFn: func(_ context.Context, q string, args ...any) (int64, error) {
			assert.Equal(t, `DELETE FROM "public"."people_u1_db2" WHERE "serial_num" = $1`, q)
			return affected, nil
		},
	}
	svc := NewService(newStore(peopleSchema(), eng), "public", nil)

	ok, err := svc.Delete(context.Background(), 1, 2, "people", "3")
	require.NoError(t, err)
	assert.True(t, ok)

	affected = 0
	ok, err = svc.Delete(context.Background(), 1, 2, "people", "3")
	require.NoError(t, err)
	assert.False(t, ok)
}

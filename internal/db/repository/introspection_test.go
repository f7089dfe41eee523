package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablehub/internal/db"
	"tablehub/internal/domain"
)

func TestIntrospectionRepo_Columns(t *testing.T) {
	t.Run("flags keys and generated columns", func(t *testing.T) {
		sqlDB, mock := db.NewMockDB(t)
		seq := "nextval('orders_u1_db2_serial_num_seq'::regclass)"
		mock.ExpectQuery(columnsQuery).WithArgs("public", "orders_u1_db2").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default", "is_identity", "is_pk", "is_fk"}).
				AddRow("serial_num", "bigint", "NO", seq, "NO", true, false).
				AddRow("customer", "integer", "YES", nil, "NO", false, true).
				AddRow("total", "numeric", "NO", nil, "NO", false, false))

		schema, err := NewIntrospectionRepo(sqlDB, "public").Columns(context.Background(), "orders_u1_db2")
		require.NoError(t, err)
		require.Len(t, schema, 3)

		assert.True(t, schema[0].IsPrimaryKey)
		assert.True(t, schema[0].IsAutoGenerated)
		assert.Equal(t, seq, *schema[0].Default)
		assert.True(t, schema[1].IsForeignKey)
		assert.True(t, schema[1].IsNullable)
		assert.Nil(t, schema[1].Default)
		assert.True(t, schema[2].Required())
	})

	t.Run("no columns means missing table", func(t *testing.T) {
		sqlDB, mock := db.NewMockDB(t)
		mock.ExpectQuery(columnsQuery).WithArgs("public", "gone_u1_db1").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default", "is_identity", "is_pk", "is_fk"}))

		_, err := NewIntrospectionRepo(sqlDB, "public").Columns(context.Background(), "gone_u1_db1")
		var nf *domain.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestIsAutoGenerated(t *testing.T) {
	seq := "nextval('tickets_seq'::regclass)"
	tests := []struct {
		name     string
		col      domain.ColumnSchema
		identity bool
		want     bool
	}{
		{name: "identity_key", col: domain.ColumnSchema{Type: "bigint", IsPrimaryKey: true}, identity: true, want: true},
		{name: "serial_key", col: domain.ColumnSchema{Type: "serial", IsPrimaryKey: true}, want: true},
		{name: "nextval_key", col: domain.ColumnSchema{Type: "bigint", Default: &seq, IsPrimaryKey: true}, want: true},
		{name: "plain_key", col: domain.ColumnSchema{Type: "integer", IsPrimaryKey: true}},
		{name: "identity_non_key", col: domain.ColumnSchema{Type: "bigint"}, identity: true},
		{name: "serial_non_key", col: domain.ColumnSchema{Type: "serial"}},
		{name: "nextval_non_key", col: domain.ColumnSchema{Type: "integer", Default: &seq}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAutoGenerated(tt.col, tt.identity))
		})
	}
}

func TestIntrospectionRepo_ColumnsSequenceOutsideKey(t *testing.T) {
	sqlDB, mock := db.NewMockDB(t)
	seq := "nextval('tickets_u1_db2_ticket_seq'::regclass)"
	mock.ExpectQuery(columnsQuery).WithArgs("public", "tickets_u1_db2").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default", "is_identity", "is_pk", "is_fk"}).
			AddRow("code", "text", "NO", nil, "NO", true, false).
			AddRow("ticket", "integer", "NO", seq, "NO", false, false).
			AddRow("ext", "bigint", "NO", nil, "YES", false, false))

	schema, err := NewIntrospectionRepo(sqlDB, "public").Columns(context.Background(), "tickets_u1_db2")
	require.NoError(t, err)
	require.Len(t, schema, 3)
	for _, col := range schema {
		assert.False(t, col.IsAutoGenerated, col.Name)
	}
}

func TestIntrospectionRepo_ListPhysicalTables(t *testing.T) {
	sqlDB, mock := db.NewMockDB(t)
	mock.ExpectQuery(`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("a_u1_db1").AddRow("meta_tables"))
	mock.ExpectQuery(`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`).
		WithArgs("public", "a_u1_db1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewIntrospectionRepo(sqlDB, "public")
	names, err := repo.ListPhysicalTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a_u1_db1", "meta_tables"}, names)

	ok, err := repo.TableExists(context.Background(), "a_u1_db1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIntrospectionRepo_TableExists(t *testing.T) {
	const q = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`

	sqlDB, mock := db.NewMockDB(t)
	mock.ExpectQuery(q).WithArgs("tenant", "orders_u1_db2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).WithArgs("tenant", "gone_u1_db2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewIntrospectionRepo(sqlDB, "tenant")
	ok, err := repo.TableExists(context.Background(), "orders_u1_db2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TableExists(context.Background(), "gone_u1_db2")
	require.NoError(t, err)
	assert.False(t, ok)
}

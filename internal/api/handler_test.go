package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablehub/internal/domain"
	"tablehub/internal/middleware"
)

const testUser int64 = 7

type deps struct {
	databases *mockDatabaseService
	tables    *mockTableService
	rows      *mockRowService
	rebuilder *mockRebuilder
	maxUpload int64
}

// fakeAuth stands in for token validation and authenticates every request
// as testUser.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(domain.WithUserID(r.Context(), testUser)))
	})
}

func newTestRouter(d deps) http.Handler {
	if d.databases == nil {
		d.databases = &mockDatabaseService{}
	}
	if d.tables == nil {
		d.tables = &mockTableService{}
	}
	if d.rows == nil {
		d.rows = &mockRowService{}
	}
	if d.rebuilder == nil {
		d.rebuilder = &mockRebuilder{}
	}
	logger := slog.New(slog.DiscardHandler)
	h := NewHandler(d.databases, d.tables, d.rows, d.rebuilder, d.maxUpload, logger)
	return NewRouter(RouterConfig{Auth: fakeAuth, Logger: logger}, h)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

var fixedTime = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

// === Public routes ===

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(deps{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOpenAPI(t *testing.T) {
	rec := do(t, newTestRouter(deps{}), http.MethodGet, "/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/databases/{dbID}/tables/{table}/rows")
	assert.Contains(t, paths, "/databases/{dbID}/tables/{table}/upload")
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := NewHandler(&mockDatabaseService{}, &mockTableService{}, &mockRowService{}, &mockRebuilder{}, 0, logger)
	router := NewRouter(RouterConfig{
		Auth:   middleware.Auth(middleware.NewHS256Validator("secret"), "sub", logger),
		Logger: logger,
	}, h)

	rec := do(t, router, http.MethodGet, "/api/v1/databases", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingUserInContext(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := NewHandler(&mockDatabaseService{}, &mockTableService{}, &mockRowService{}, &mockRebuilder{}, 0, logger)
	router := NewRouter(RouterConfig{Logger: logger}, h)

	rec := do(t, router, http.MethodGet, "/api/v1/databases", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, rec).Reason)
}

// === Databases ===

func TestCreateDatabase(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantReason string
	}{
		{name: "created", body: `{"name":"Sales"}`, wantStatus: http.StatusCreated},
		{name: "malformed_body", body: `{"name":`, wantStatus: http.StatusBadRequest, wantReason: domain.ReasonInvalidArgument},
		{name: "empty_body", body: ``, wantStatus: http.StatusBadRequest, wantReason: domain.ReasonInvalidArgument},
		{
			name:       "invalid_name",
			body:       `{"name":"drop table"}`,
			svcErr:     domain.ErrInvalid(domain.ReasonInvalidName, "invalid database name"),
			wantStatus: http.StatusBadRequest,
			wantReason: domain.ReasonInvalidName,
		},
		{
			name:       "duplicate",
			body:       `{"name":"Sales"}`,
			svcErr:     domain.ErrConflict("database %q already exists", "Sales"),
			wantStatus: http.StatusConflict,
			wantReason: "CONFLICT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockDatabaseService{
				createFn: func(_ context.Context, userID int64, name string) (*domain.LogicalDatabase, error) {
					assert.Equal(t, testUser, userID)
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					return &domain.LogicalDatabase{UserID: userID, ID: 1, Name: name, CreatedAt: fixedTime, UpdatedAt: fixedTime}, nil
				},
			}
			rec := do(t, newTestRouter(deps{databases: svc}), http.MethodPost, "/api/v1/databases", strings.NewReader(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, decodeError(t, rec).Reason)
				return
			}
			var db domain.LogicalDatabase
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&db))
			assert.Equal(t, int64(1), db.ID)
			assert.Equal(t, "Sales", db.Name)
		})
	}
}

func TestListDatabases(t *testing.T) {
	svc := &mockDatabaseService{
		listFn: func(_ context.Context, _ int64) ([]domain.LogicalDatabase, error) {
			return []domain.LogicalDatabase{{UserID: testUser, ID: 1, Name: "a"}, {UserID: testUser, ID: 2, Name: "b"}}, nil
		},
	}
	rec := do(t, newTestRouter(deps{databases: svc}), http.MethodGet, "/api/v1/databases", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.LogicalDatabase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Name)
}

func TestGetDatabase(t *testing.T) {
	svc := &mockDatabaseService{
		getFn: func(_ context.Context, _ int64, dbID int64) (*domain.LogicalDatabase, error) {
			return nil, domain.ErrNotFound("database %d not found", dbID)
		},
	}
	router := newTestRouter(deps{databases: svc})

	rec := do(t, router, http.MethodGet, "/api/v1/databases/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "database 42 not found", decodeError(t, rec).Message)

	rec = do(t, router, http.MethodGet, "/api/v1/databases/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameAndDeleteDatabase(t *testing.T) {
	var deleted int64
	svc := &mockDatabaseService{
		renameFn: func(_ context.Context, _ int64, dbID int64, name string) (*domain.LogicalDatabase, error) {
			return &domain.LogicalDatabase{ID: dbID, Name: name}, nil
		},
		deleteFn: func(_ context.Context, _ int64, dbID int64) error {
			deleted = dbID
			return nil
		},
	}
	router := newTestRouter(deps{databases: svc})

	rec := do(t, router, http.MethodPatch, "/api/v1/databases/3", strings.NewReader(`{"name":"Renamed"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Renamed"`)

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(3), deleted)
}

func TestEngineErrorHidesCause(t *testing.T) {
	svc := &mockDatabaseService{
		deleteFn: func(_ context.Context, _, _ int64) error {
			return domain.ErrEngine("delete database", errors.New("pq: connection reset by peer at 10.0.0.5"))
		},
	}
	rec := do(t, newTestRouter(deps{databases: svc}), http.MethodDelete, "/api/v1/databases/3", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "ENGINE_ERROR", body.Reason)
	assert.NotContains(t, body.Message, "10.0.0.5")
}

func TestCompensationErrorMapsPrimaryCause(t *testing.T) {
	svc := &mockTableService{
		createFn: func(_ context.Context, _, _ int64, _ string) (*domain.LogicalTable, error) {
			return nil, &domain.CompensationError{
				Cause:    domain.ErrConflict("table %q already exists in database %d", "orders", 1),
				Failures: []error{errors.New("drop failed")},
			}
		},
	}
	rec := do(t, newTestRouter(deps{tables: svc}), http.MethodPost, "/api/v1/databases/1/tables", strings.NewReader(`{"name":"orders"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// === Tables ===

func TestTableRoutes(t *testing.T) {
	var renamedFrom, renamedTo, deletedTable string
	svc := &mockTableService{
		listFn: func(_ context.Context, _, dbID int64) ([]domain.LogicalTable, error) {
			return []domain.LogicalTable{{DatabaseID: dbID, ID: 1, Name: "orders"}}, nil
		},
		createFn: func(_ context.Context, _, dbID int64, name string) (*domain.LogicalTable, error) {
			return &domain.LogicalTable{DatabaseID: dbID, ID: 2, Name: name}, nil
		},
		renameFn: func(_ context.Context, _, dbID int64, table, newName string) (*domain.LogicalTable, error) {
			renamedFrom, renamedTo = table, newName
			return &domain.LogicalTable{DatabaseID: dbID, ID: 2, Name: newName}, nil
		},
		deleteFn: func(_ context.Context, _, _ int64, table string) error {
			deletedTable = table
			return nil
		},
		schemaFn: func(_ context.Context, _, _ int64, _ string) (domain.TableSchema, error) {
			return domain.TableSchema{{Name: "serial_num", Type: "bigint", IsPrimaryKey: true, IsAutoGenerated: true}}, nil
		},
	}
	router := newTestRouter(deps{tables: svc})

	rec := do(t, router, http.MethodGet, "/api/v1/databases/1/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"orders"`)

	rec = do(t, router, http.MethodPost, "/api/v1/databases/1/tables", strings.NewReader(`{"name":"customers"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPatch, "/api/v1/databases/1/tables/my%20orders", strings.NewReader(`{"newName":"archive"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "my orders", renamedFrom)
	assert.Equal(t, "archive", renamedTo)

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/1/tables/orders", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "orders", deletedTable)

	rec = do(t, router, http.MethodGet, "/api/v1/databases/1/tables/orders/schema", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isAutoGenerated":true`)
}

func TestColumnRoutes(t *testing.T) {
	svc := &mockTableService{
		addColumnFn: func(_ context.Context, _, _ int64, _ string, req domain.AddColumnRequest) (*domain.ColumnSchema, error) {
			assert.Equal(t, "email", req.Name)
			assert.False(t, req.Nullable())
			assert.Equal(t, "n/a", req.DefaultValue)
			return &domain.ColumnSchema{Name: req.Name, Type: "text"}, nil
		},
		dropColumnFn: func(_ context.Context, _, _ int64, _, column string) ([]string, error) {
			if column == "serial_num" {
				return []string{"column \"serial_num\" was the primary key"}, nil
			}
			return nil, nil
		},
	}
	router := newTestRouter(deps{tables: svc})

	rec := do(t, router, http.MethodPost, "/api/v1/databases/1/tables/orders/columns",
		strings.NewReader(`{"name":"email","type":"TEXT","isNullable":false,"defaultValue":"n/a"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/1/tables/orders/columns/serial_num", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "primary key")

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/1/tables/orders/columns/note", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"warnings":[]}`, rec.Body.String())
}

// === Rows ===

func TestQueryRows(t *testing.T) {
	var got domain.RowQuery
	svc := &mockRowService{
		queryFn: func(_ context.Context, _, _ int64, table string, q domain.RowQuery) (*domain.RowPage, error) {
			assert.Equal(t, "orders", table)
			got = q
			return &domain.RowPage{Total: 0, Page: 2, Limit: 5}, nil
		},
	}
	filters := `[{"column":"age","operator":">","value":30},{"column":"city","operator":"=","value":"Oslo","logicalOperator":"OR"}]`
	target := "/api/v1/databases/1/tables/orders/rows?page=2&limit=5&group_by=city,name&group_by=age&filters=" + url.QueryEscape(filters)

	rec := do(t, newTestRouter(deps{rows: svc}), http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	assert.Equal(t, domain.PageRequest{Page: 2, PerPage: 5}, got.Page)
	assert.Equal(t, []string{"city", "name", "age"}, got.GroupBy)
	require.Len(t, got.Filters, 2)
	assert.Equal(t, json.Number("30"), got.Filters[0].Value)
	assert.Equal(t, "OR", got.Filters[1].Connector)
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty", raw: "", want: 0},
		{name: "malformed", raw: `[{"column":`, want: 0},
		{name: "object_not_array", raw: `{"column":"a","operator":"="}`, want: 0},
		{name: "non_object_items_skipped", raw: `[1,"x",{"column":"a","operator":"is null"}]`, want: 1},
		{name: "two", raw: `[{"column":"a","operator":"=","value":null},{"column":"b","operator":"like","value":true}]`, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, parseFilters(tt.raw), tt.want)
		})
	}

	f := parseFilters(`[{"column":"a","operator":"=","value":null},{"column":"b","operator":"=","value":false}]`)
	assert.Nil(t, f[0].Value)
	assert.Equal(t, false, f[1].Value)
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, domain.PageRequest{}, parsePage(url.Values{"page": {"x"}, "limit": {""}}))
	assert.Equal(t, domain.PageRequest{Page: 3, PerPage: 500}, parsePage(url.Values{"page": {"3"}, "limit": {"500"}}))
}

func TestRowWrites(t *testing.T) {
	svc := &mockRowService{
		insertFn: func(_ context.Context, _, _ int64, _ string, input map[string]any) (domain.Record, error) {
			assert.Equal(t, json.Number("9007199254740993"), input["big"])
			return domain.Record{{Name: "serial_num", Value: domain.Integer(1)}, {Name: "name", Value: domain.Text("Ann")}}, nil
		},
		updateFn: func(_ context.Context, _, _ int64, _, pk string, _ map[string]any) (domain.Record, error) {
			if pk == "99" {
				return nil, domain.ErrNotFound("row 99 not found in table %q", "people")
			}
			return domain.Record{{Name: "serial_num", Value: domain.Integer(1)}}, nil
		},
		deleteFn: func(_ context.Context, _, _ int64, _, pk string) (bool, error) {
			return pk == "1", nil
		},
	}
	router := newTestRouter(deps{rows: svc})

	rec := do(t, router, http.MethodPost, "/api/v1/databases/1/tables/people/rows", strings.NewReader(`{"name":"Ann","big":9007199254740993}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"serial_num":1,"name":"Ann"}`, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/api/v1/databases/1/tables/people/rows/1", strings.NewReader(`{"name":"Bob"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/v1/databases/1/tables/people/rows/99", strings.NewReader(`{"name":"Bob"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/1/tables/people/rows/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/databases/1/tables/people/rows/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// === Upload ===

func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadTable(t *testing.T) {
	var gotHeaders []string
	var gotRecords []map[string]string
	rebuilder := &mockRebuilder{
		rebuildFn: func(_ context.Context, userID, dbID int64, table string, headers []string, records []map[string]string) (*domain.ImportResult, error) {
			assert.Equal(t, testUser, userID)
			assert.Equal(t, int64(4), dbID)
			assert.Equal(t, "people", table)
			gotHeaders, gotRecords = headers, records
			return &domain.ImportResult{Message: "table \"people\" rebuilt with 2 rows", RowsProcessed: 2, TableRebuilt: true}, nil
		},
	}

	t.Run("csv_rebuilds_table", func(t *testing.T) {
		body, ct := multipartBody(t, "people.csv", "text/csv", "\uFEFFName,Age\nAnn,30\nBob,\n")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/databases/4/tables/people/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		newTestRouter(deps{rebuilder: rebuilder}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"table \"people\" rebuilt with 2 rows","rowsProcessed":2,"tableRebuilt":true}`, rec.Body.String())
		assert.Equal(t, []string{"Name", "Age"}, gotHeaders)
		require.Len(t, gotRecords, 2)
		assert.Equal(t, "", gotRecords[1]["Age"])
	})

	t.Run("non_csv_rejected", func(t *testing.T) {
		body, ct := multipartBody(t, "people.xlsx", "application/octet-stream", "PK..")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/databases/4/tables/people/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		newTestRouter(deps{rebuilder: &mockRebuilder{}}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing_file_field", func(t *testing.T) {
		rec := do(t, newTestRouter(deps{}), http.MethodPost, "/api/v1/databases/4/tables/people/upload", strings.NewReader(`{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too_large", func(t *testing.T) {
		body, ct := multipartBody(t, "people.csv", "text/csv", strings.Repeat("a,b\n", 1000))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/databases/4/tables/people/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		newTestRouter(deps{maxUpload: 512}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

package catalog

import (
	"context"
	"fmt"
	"time"

	"tablehub/internal/domain"
	"tablehub/internal/testutil"
)

// errTest is a sentinel error for test scenarios.
var errTest = fmt.Errorf("test error")

// Short names for the shared mocks.
type mockStore = testutil.MockStore
type mockDatabaseRepo = testutil.MockDatabaseRepo
type mockTableRepo = testutil.MockTableRepo
type mockIntrospector = testutil.MockIntrospector
type mockEngine = testutil.MockEngine

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func existingDatabase() *mockDatabaseRepo {
	return &mockDatabaseRepo{
		GetFn: func(_ context.Context, userID, dbID int64) (*domain.LogicalDatabase, error) {
			return &domain.LogicalDatabase{UserID: userID, ID: dbID, Name: "Sales", CreatedAt: now, UpdatedAt: now}, nil
		},
	}
}

// tablesNamed returns a table repo whose GetByName knows the given names.
func tablesNamed(names ...string) *mockTableRepo {
	return &mockTableRepo{
		GetByNameFn: func(_ context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error) {
			for i, n := range names {
				if n == name {
					return &domain.LogicalTable{UserID: userID, DatabaseID: dbID, ID: int64(i + 1), Name: n}, nil
				}
			}
			return nil, domain.ErrNotFound("table %q not found", name)
		},
	}
}

// existsOnly reports the listed physical tables as present.
func existsOnly(physical ...string) *mockIntrospector {
	return &mockIntrospector{
		TableExistsFn: func(_ context.Context, table string) (bool, error) {
			for _, p := range physical {
				if p == table {
					return true, nil
				}
			}
			return false, nil
		},
	}
}

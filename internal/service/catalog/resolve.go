package catalog

import (
	"context"
	"errors"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
)

// ResolveTable looks up the association of a logical table and derives its
// physical name. A missing association is reported as NotFound; a physical
// table without association is never served.
func ResolveTable(ctx context.Context, store domain.Store, userID, dbID int64, name string) (*domain.LogicalTable, string, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, "", err
	}
	t, err := store.Tables().GetByName(ctx, userID, dbID, name)
	if err != nil {
		if IsNotFound(err) {
			return nil, "", domain.ErrNotFound("table %q not found in database %d", name, dbID)
		}
		return nil, "", err
	}
	physical, err := ddl.ResolvePhysicalName(t.Name, userID, dbID)
	if err != nil {
		return nil, "", err
	}
	return t, physical, nil
}

// IsNotFound reports whether err is a domain NotFoundError.
func IsNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}

// asConflict replaces the message of a Conflict error.
func asConflict(err error, format string, args ...any) error {
	var cf *domain.ConflictError
	if errors.As(err, &cf) {
		return domain.ErrConflict(format, args...)
	}
	return err
}

// asNotFound replaces the message of a NotFound error.
func asNotFound(err error, format string, args ...any) error {
	if IsNotFound(err) {
		return domain.ErrNotFound(format, args...)
	}
	return err
}

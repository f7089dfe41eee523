package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tablehub/internal/domain"
)

// PostgreSQL SQLSTATE codes the hub classifies.
const (
	CodeNotNullViolation    = "23502"
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeUndefinedTable      = "42P01"
	CodeDuplicateTable      = "42P07"
	CodeDuplicateColumn     = "42701"
	CodeUndefinedColumn     = "42703"
)

// PgCode returns the SQLSTATE of err, or "" when err did not come from the server.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Classify maps an engine error to the domain taxonomy. subject names the
// object the statement worked on and is used in the messages. Errors that
// already are domain errors pass through unchanged.
func Classify(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("%s not found", subject)
	}
	switch PgCode(err) {
	case CodeNotNullViolation:
		return domain.ErrValidation("%s violates a NOT NULL constraint", subject)
	case CodeUniqueViolation:
		return domain.ErrConflict("%s already exists", subject)
	case CodeDuplicateTable:
		return domain.ErrConflict("%s already exists", subject)
	case CodeDuplicateColumn:
		return domain.ErrConflict("column already exists in %s", subject)
	case CodeUndefinedTable:
		return domain.ErrNotFound("%s does not exist", subject)
	case CodeUndefinedColumn:
		return domain.ErrNotFound("%s references an unknown column", subject)
	}
	return domain.ErrEngine(op, err)
}

func isDomainError(err error) bool {
	var (
		nf   *domain.NotFoundError
		cf   *domain.ConflictError
		val  *domain.ValidationError
		eng  *domain.EngineError
		auth *domain.UnauthenticatedError
	)
	return errors.As(err, &nf) || errors.As(err, &cf) || errors.As(err, &val) ||
		errors.As(err, &eng) || errors.As(err, &auth)
}

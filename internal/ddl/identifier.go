package ddl

import (
	"regexp"
	"strings"

	"tablehub/internal/domain"
)

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// displayNameRe is the looser charset for user-facing names.
var displayNameRe = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// displayNameDenyRe flags statement keywords and comment/terminator sequences.
var displayNameDenyRe = regexp.MustCompile(`(?i)(\b(ALTER|CREATE|DELETE|DROP|EXEC|INSERT|MERGE|SELECT|UPDATE|UNION)\b)|(--|/\*|\*/|;)`)

// columnTypeRe matches the allow-listed PostgreSQL base types, optionally
// with one or two numeric parameters:
//
//	TEXT, BOOLEAN, UUID, DOUBLE PRECISION
//	VARCHAR(255), NUMERIC(10), NUMERIC(10,2)
//	TIMESTAMP WITH TIME ZONE
var columnTypeRe = regexp.MustCompile(`(?i)^(TEXT|VARCHAR|CHAR|INTEGER|INT|SMALLINT|BIGINT|SERIAL|BIGSERIAL|NUMERIC|DECIMAL|FLOAT|REAL|DOUBLE PRECISION|BOOLEAN|BOOL|DATE|TIME|TIMESTAMPTZ|TIMESTAMP|TIMESTAMP WITH TIME ZONE|JSON|JSONB|UUID)(\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)

var spaceRunRe = regexp.MustCompile(`\s+`)

// MaxIdentifierLen is the engine's identifier length limit in bytes.
const MaxIdentifierLen = 63

// MaxDisplayNameLen bounds user-facing database names.
const MaxDisplayNameLen = 50

// maxColumnTypeLen is the maximum length allowed for a column type string.
const maxColumnTypeLen = 64

// reservedWords are the PostgreSQL keywords that cannot be used as bare
// column or table names.
var reservedWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		ALL ANALYSE ANALYZE AND ANY ARRAY AS ASC ASYMMETRIC AUTHORIZATION BINARY BOTH
		CASE CAST CHECK COLLATE COLLATION COLUMN CONCURRENTLY CONSTRAINT CREATE CROSS
		CURRENT_CATALOG CURRENT_DATE CURRENT_ROLE CURRENT_SCHEMA CURRENT_TIME
		CURRENT_TIMESTAMP CURRENT_USER DEFAULT DEFERRABLE DESC DISTINCT DO ELSE END
		EXCEPT FALSE FETCH FOR FOREIGN FREEZE FROM FULL GRANT GROUP HAVING ILIKE IN
		INITIALLY INNER INTERSECT INTO IS ISNULL JOIN LATERAL LEADING LEFT LIKE LIMIT
		LOCALTIME LOCALTIMESTAMP NATURAL NOT NOTNULL NULL OFFSET ON ONLY OR ORDER OUTER
		OVERLAPS PLACING PRIMARY REFERENCES RETURNING RIGHT SELECT SESSION_USER SIMILAR
		SOME SYMMETRIC TABLE TABLESAMPLE THEN TO TRAILING TRUE UNION UNIQUE USER USING
		VARIADIC VERBOSE WHEN WHERE WINDOW WITH`) {
		reservedWords[w] = struct{}{}
	}
}

// IsReserved reports whether name is a reserved keyword, ignoring case.
func IsReserved(name string) bool {
	_, ok := reservedWords[strings.ToUpper(name)]
	return ok
}

// ValidateIdentifier checks that name is a safe engine identifier (table or
// column name) and returns it trimmed:
//   - Non-empty
//   - At most 63 bytes
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
//   - Not a reserved keyword
func ValidateIdentifier(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalid(domain.ReasonInvalidName, "name is required")
	}
	if len(name) > MaxIdentifierLen {
		return "", domain.ErrInvalid(domain.ReasonNameTooLong,
			"name %q must be at most %d characters", name, MaxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return "", domain.ErrInvalid(domain.ReasonInvalidName,
			"name %q must match [a-zA-Z_][a-zA-Z0-9_]*", name)
	}
	if IsReserved(name) {
		return "", domain.ErrInvalid(domain.ReasonInvalidName,
			"name %q is a reserved SQL keyword", name)
	}
	return name, nil
}

// ValidateDisplayName checks a user-facing name such as a database name and
// returns it trimmed.
func ValidateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalid(domain.ReasonInvalidName, "name is required")
	}
	if len(name) > MaxDisplayNameLen {
		return "", domain.ErrInvalid(domain.ReasonNameTooLong,
			"name must be at most %d characters", MaxDisplayNameLen)
	}
	if !displayNameRe.MatchString(name) {
		return "", domain.ErrInvalid(domain.ReasonInvalidName,
			"name %q may only contain letters, digits, spaces, '_' and '-'", name)
	}
	if displayNameDenyRe.MatchString(name) {
		return "", domain.ErrInvalid(domain.ReasonInvalidName,
			"name %q contains a disallowed SQL keyword or sequence", name)
	}
	return name, nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes schema.name.
func QuoteQualified(schema, name string) string {
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(name)
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ValidateColumnType checks typeName against the allow-list and returns its
// normalized upper-case spelling.
func ValidateColumnType(typeName string) (string, error) {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return "", domain.ErrInvalid(domain.ReasonUnsupportedType, "column type is required")
	}
	if len(typeName) > maxColumnTypeLen {
		return "", domain.ErrInvalid(domain.ReasonUnsupportedType,
			"column type must be at most %d characters", maxColumnTypeLen)
	}
	normalized := strings.ToUpper(spaceRunRe.ReplaceAllString(typeName, " "))
	if !columnTypeRe.MatchString(normalized) {
		return "", domain.ErrInvalid(domain.ReasonUnsupportedType,
			"unsupported column type %q", typeName)
	}
	return normalized, nil
}

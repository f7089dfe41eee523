package ddl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tablehub/internal/domain"
)

// maxLogicalPrefix is how many characters of the sanitized logical name are
// kept in front of the tenant suffix.
const maxLogicalPrefix = 40

var physicalSuffixRe = regexp.MustCompile(`_u([0-9]+)_db([0-9]+)$`)

// ResolvePhysicalName derives the engine table name for a logical table:
//
//	<sanitized logical name, at most 40 chars>_u<userID>_db<dbID>
//
// Characters outside [A-Za-z0-9_] become '_'. The result is never truncated
// after the suffix is appended; it must satisfy the identifier rules as is.
func ResolvePhysicalName(logical string, userID, dbID int64) (string, error) {
	var b strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(logical) {
		if n == maxLogicalPrefix {
			break
		}
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	name := fmt.Sprintf("%s_u%d_db%d", b.String(), userID, dbID)

	if len(name) > MaxIdentifierLen {
		return "", domain.ErrInvalid(domain.ReasonNameTooLong,
			"physical table name %q exceeds %d characters", name, MaxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return "", domain.ErrInvalid(domain.ReasonInvalidGeneratedName,
			"cannot derive a valid physical table name from %q", logical)
	}
	return name, nil
}

// ParsePhysicalName reports the tenant scope encoded in a physical table name.
func ParsePhysicalName(name string) (userID, dbID int64, ok bool) {
	m := physicalSuffixRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	u, err1 := strconv.ParseInt(m[1], 10, 64)
	d, err2 := strconv.ParseInt(m[2], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return u, d, true
}

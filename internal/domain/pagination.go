package domain

// DefaultPageLimit is the default page size when none is specified.
const DefaultPageLimit = 20

// MaxPageLimit is the maximum allowed page size.
const MaxPageLimit = 100

// PageRequest holds 1-based page pagination parameters for row reads.
type PageRequest struct {
	Page    int
	PerPage int
}

// Number returns the effective page number, at least 1.
func (p PageRequest) Number() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// Limit returns the effective page size, clamped to [1, MaxPageLimit].
// Zero means "unspecified" and yields DefaultPageLimit.
func (p PageRequest) Limit() int {
	switch {
	case p.PerPage == 0:
		return DefaultPageLimit
	case p.PerPage < 1:
		return 1
	case p.PerPage > MaxPageLimit:
		return MaxPageLimit
	}
	return p.PerPage
}

// Offset returns (page-1)*limit.
func (p PageRequest) Offset() int {
	return (p.Number() - 1) * p.Limit()
}

// TotalPages returns the number of pages needed to hold total items.
func (p PageRequest) TotalPages(total int64) int64 {
	limit := int64(p.Limit())
	return (total + limit - 1) / limit
}

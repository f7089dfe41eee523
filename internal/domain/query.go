package domain

// FilterCondition is one link of a flat, left-to-right predicate chain.
// Connector joins it to the previous emitted condition ("AND" or "OR").
type FilterCondition struct {
	Column    string `json:"column"`
	Operator  string `json:"operator"`
	Value     any    `json:"value"`
	Connector string `json:"logicalOperator,omitempty"`
}

// RowQuery describes a filtered, optionally grouped, paginated read.
type RowQuery struct {
	Filters []FilterCondition
	GroupBy []string
	Page    PageRequest
}

// RowPage is one page of a read.
type RowPage struct {
	Data    []Record `json:"data"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Pages   int64    `json:"totalPages"`
	Grouped bool     `json:"grouped"`
	GroupBy []string `json:"groupBy,omitempty"`
}

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/tidwall/gjson"

	"tablehub/internal/domain"
)

// userID reads the caller set by the auth middleware.
func userID(r *http.Request) (int64, error) {
	id, ok := domain.UserIDFromContext(r.Context())
	if !ok || id <= 0 {
		return 0, domain.ErrUnauthenticated("authentication required")
	}
	return id, nil
}

// dbIDParam binds the {dbID} path segment. Ids that cannot exist are
// reported as a missing database.
func dbIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "dbID")
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "dbID", raw, &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound("database %q not found", raw)
	}
	return id, nil
}

// pathParam returns an unescaped path segment.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// parseFilters reads the filters query parameter, a JSON array of
// {column, operator, value, logicalOperator}. Anything else yields no
// filters.
func parseFilters(raw string) []domain.FilterCondition {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil
	}
	var filters []domain.FilterCondition
	parsed.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		filters = append(filters, domain.FilterCondition{
			Column:    item.Get("column").String(),
			Operator:  item.Get("operator").String(),
			Value:     filterValue(item.Get("value")),
			Connector: item.Get("logicalOperator").String(),
		})
		return true
	})
	return filters
}

func filterValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return v.Str
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return v.Raw
	}
}

// parseGroupBy accepts group_by repeated and/or comma-separated.
func parseGroupBy(q url.Values) []string {
	var cols []string
	for _, v := range q["group_by"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// parsePage reads page and limit; unparsable values fall back to defaults.
func parsePage(q url.Values) domain.PageRequest {
	var p domain.PageRequest
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.PerPage = n
	}
	return p
}

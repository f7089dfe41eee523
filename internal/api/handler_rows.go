package api

import (
	"net/http"

	"tablehub/internal/domain"
)

// QueryRows handles GET /databases/{dbID}/tables/{table}/rows.
func (h *Handler) QueryRows(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	query := domain.RowQuery{
		Filters: parseFilters(q.Get("filters")),
		GroupBy: parseGroupBy(q),
		Page:    parsePage(q),
	}
	page, err := h.rows.Query(r.Context(), uid, dbID, pathParam(r, "table"), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if page.Data == nil {
		page.Data = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, page)
}

// InsertRow handles POST /databases/{dbID}/tables/{table}/rows.
func (h *Handler) InsertRow(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var input map[string]any
	if err := decodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := h.rows.Insert(r.Context(), uid, dbID, pathParam(r, "table"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// UpdateRow handles PUT /databases/{dbID}/tables/{table}/rows/{pk}.
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var input map[string]any
	if err := decodeJSON(r, &input); err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := h.rows.Update(r.Context(), uid, dbID, pathParam(r, "table"), pathParam(r, "pk"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// DeleteRow handles DELETE /databases/{dbID}/tables/{table}/rows/{pk}.
func (h *Handler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	table, pk := pathParam(r, "table"), pathParam(r, "pk")
	deleted, err := h.rows.Delete(r.Context(), uid, dbID, table, pk)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		h.fail(w, r, domain.ErrNotFound("row %s not found in table %q", pk, table))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"

	"tablehub/internal/domain"
)

// ListTables handles GET /databases/{dbID}/tables.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tables, err := h.tables.List(r.Context(), uid, dbID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// CreateTable handles POST /databases/{dbID}/tables.
func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.tables.Create(r.Context(), uid, dbID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// RenameTable handles PATCH /databases/{dbID}/tables/{table}.
func (h *Handler) RenameTable(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req renameTableRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.tables.Rename(r.Context(), uid, dbID, pathParam(r, "table"), req.NewName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTable handles DELETE /databases/{dbID}/tables/{table}.
func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.tables.Delete(r.Context(), uid, dbID, pathParam(r, "table")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTableSchema handles GET /databases/{dbID}/tables/{table}/schema.
func (h *Handler) GetTableSchema(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cols, err := h.tables.Schema(r.Context(), uid, dbID, pathParam(r, "table"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

// AddColumn handles POST /databases/{dbID}/tables/{table}/columns.
func (h *Handler) AddColumn(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req domain.AddColumnRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	col, err := h.tables.AddColumn(r.Context(), uid, dbID, pathParam(r, "table"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

// DropColumn handles DELETE /databases/{dbID}/tables/{table}/columns/{column}.
func (h *Handler) DropColumn(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	warnings, err := h.tables.DropColumn(r.Context(), uid, dbID, pathParam(r, "table"), pathParam(r, "column"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

package api

import "net/http"

// ListDatabases handles GET /databases.
func (h *Handler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dbs, err := h.databases.List(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dbs)
}

// CreateDatabase handles POST /databases.
func (h *Handler) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	db, err := h.databases.Create(r.Context(), uid, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, db)
}

// GetDatabase handles GET /databases/{dbID}.
func (h *Handler) GetDatabase(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	db, err := h.databases.Get(r.Context(), uid, dbID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, db)
}

// RenameDatabase handles PATCH /databases/{dbID}.
func (h *Handler) RenameDatabase(w http.ResponseWriter, r *http.Request) {
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
	db, err := h.databases.Rename(r.Context(), uid, dbID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, db)
}

// DeleteDatabase handles DELETE /databases/{dbID}.
func (h *Handler) DeleteDatabase(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.databases.Delete(r.Context(), uid, dbID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// scope resolves the caller and the {dbID} path segment.
func scope(r *http.Request) (int64, int64, error) {
	uid, err := userID(r)
	if err != nil {
		return 0, 0, err
	}
	dbID, err := dbIDParam(r)
	if err != nil {
		return 0, 0, err
	}
	return uid, dbID, nil
}

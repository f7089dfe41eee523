package api

import (
	"errors"
	"net/http"

	"tablehub/internal/csvimport"
	"tablehub/internal/domain"
)

// UploadTable handles POST /databases/{dbID}/tables/{table}/upload. The
// multipart field "file" must hold a CSV file; its contents replace the
// table.
func (h *Handler) UploadTable(w http.ResponseWriter, r *http.Request) {
	uid, dbID, err := scope(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	table := pathParam(r, "table")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, domain.ErrValidation("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		h.fail(w, r, domain.ErrValidation("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if !csvimport.IsCSV(header.Filename, header.Header.Get("Content-Type")) {
		h.fail(w, r, domain.ErrValidation("only CSV files are accepted, got %q", header.Filename))
		return
	}

	decoded, err := csvimport.Decode(file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "csv upload decoded",
		"table", table, "db_id", dbID, "file", header.Filename, "shape", decoded.Describe())

	result, err := h.rebuilder.Rebuild(r.Context(), uid, dbID, table, decoded.Headers, decoded.Records)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

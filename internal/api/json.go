package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tablehub/internal/domain"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v. Numbers are kept as
// json.Number so integer columns do not lose precision.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is empty")
		}
		return domain.ErrValidation("malformed JSON body: %v", err)
	}
	return nil
}

package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

// GetOpenAPI loads and validates the embedded API description once.
func GetOpenAPI(ctx context.Context) (*openapi3.T, error) {
	openapiOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiYAML)
		if err != nil {
			openapiErr = fmt.Errorf("load openapi: %w", err)
			return
		}
		if err := doc.Validate(ctx); err != nil {
			openapiErr = fmt.Errorf("validate openapi: %w", err)
			return
		}
		openapiDoc = doc
	})
	return openapiDoc, openapiErr
}

// OpenAPI serves the API description as JSON.
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := GetOpenAPI(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

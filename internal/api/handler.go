// Package api serves the tablehub HTTP interface.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"tablehub/internal/domain"
)

// DatabaseService manages a user's logical databases.
type DatabaseService interface {
	List(ctx context.Context, userID int64) ([]domain.LogicalDatabase, error)
	Get(ctx context.Context, userID, dbID int64) (*domain.LogicalDatabase, error)
	Create(ctx context.Context, userID int64, name string) (*domain.LogicalDatabase, error)
	Rename(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalDatabase, error)
	Delete(ctx context.Context, userID, dbID int64) error
}

// TableService manages logical tables and their physical schema.
type TableService interface {
	List(ctx context.Context, userID, dbID int64) ([]domain.LogicalTable, error)
	Create(ctx context.Context, userID, dbID int64, name string) (*domain.LogicalTable, error)
	Rename(ctx context.Context, userID, dbID int64, table, newName string) (*domain.LogicalTable, error)
	Delete(ctx context.Context, userID, dbID int64, table string) error
	Schema(ctx context.Context, userID, dbID int64, table string) (domain.TableSchema, error)
	AddColumn(ctx context.Context, userID, dbID int64, table string, req domain.AddColumnRequest) (*domain.ColumnSchema, error)
	DropColumn(ctx context.Context, userID, dbID int64, table, column string) ([]string, error)
}

// RowService reads and writes rows of a logical table.
type RowService interface {
	Query(ctx context.Context, userID, dbID int64, table string, q domain.RowQuery) (*domain.RowPage, error)
	Insert(ctx context.Context, userID, dbID int64, table string, input map[string]any) (domain.Record, error)
	Update(ctx context.Context, userID, dbID int64, table, pkValue string, input map[string]any) (domain.Record, error)
	Delete(ctx context.Context, userID, dbID int64, table, pkValue string) (bool, error)
}

// Rebuilder replaces a table's contents from decoded tabular data.
type Rebuilder interface {
	Rebuild(ctx context.Context, userID, dbID int64, table string, headers []string, records []map[string]string) (*domain.ImportResult, error)
}

// Handler implements the HTTP endpoints on top of the services.
type Handler struct {
	databases      DatabaseService
	tables         TableService
	rows           RowService
	rebuilder      Rebuilder
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a Handler. maxUploadBytes <= 0 means 50 MiB.
func NewHandler(databases DatabaseService, tables TableService, rows RowService, rebuilder Rebuilder, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		databases:      databases,
		tables:         tables,
		rows:           rows,
		rebuilder:      rebuilder,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "api"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type nameRequest struct {
	Name string `json:"name"`
}

type renameTableRequest struct {
	NewName string `json:"newName"`
}

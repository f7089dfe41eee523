// Package ingestion rebuilds a table from a decoded bulk input: the physical
// table is dropped, recreated with a surrogate key plus one TEXT column per
// header, and filled, all in one transaction.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"tablehub/internal/ddl"
	"tablehub/internal/dml"
	"tablehub/internal/domain"
	"tablehub/internal/service/catalog"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9_]`)
)

// Column pairs a source header with the column name derived from it.
type Column struct {
	Source string
	Name   string
}

// SanitizeHeaders derives column names from headers: lower case, whitespace
// runs become "_", other disallowed characters are removed, and names not
// starting with a letter or "_" get a "_" prefix. Headers that sanitize to
// nothing are dropped.
func SanitizeHeaders(headers []string) ([]Column, error) {
	seen := make(map[string]string, len(headers))
	cols := make([]Column, 0, len(headers))
	for _, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		name = whitespaceRe.ReplaceAllString(name, "_")
		name = disallowedRe.ReplaceAllString(name, "")
		if name == "" {
			continue
		}
		if c := name[0]; !(c == '_' || (c >= 'a' && c <= 'z')) {
			name = "_" + name
		}
		if len(name) > ddl.MaxIdentifierLen {
			return nil, domain.ErrInvalid(domain.ReasonNameTooLong,
				"header %q gives column name longer than %d characters", h, ddl.MaxIdentifierLen)
		}
		if name == domain.SurrogateKeyColumn {
			return nil, domain.ErrInvalid(domain.ReasonReservedName,
				"header %q collides with the reserved column %q", h, domain.SurrogateKeyColumn)
		}
		if prev, ok := seen[name]; ok {
			return nil, domain.ErrInvalid(domain.ReasonDuplicateColumns,
				"headers %q and %q both map to column %q", prev, h, name)
		}
		seen[name] = h
		cols = append(cols, Column{Source: h, Name: name})
	}
	return cols, nil
}

// Service rebuilds tables from bulk input.
type Service struct {
	store    domain.Store
	pgSchema string
	logger   *slog.Logger
}

// NewService creates an ingestion Service.
func NewService(store domain.Store, pgSchema string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, pgSchema: pgSchema, logger: logger.With("component", "ingestion")}
}

// Rebuild replaces the structure and contents of an existing table. Prior
// rows and column types are discarded. Every value is stored as text; blank
// or missing values become NULL. When no header yields a column name the
// table is rebuilt with only the surrogate key and no rows are inserted.
func (s *Service) Rebuild(ctx context.Context, userID, dbID int64, table string, headers []string, records []map[string]string) (*domain.ImportResult, error) {
	_, physical, err := catalog.ResolveTable(ctx, s.store, userID, dbID, table)
	if err != nil {
		return nil, err
	}
	cols, err := SanitizeHeaders(headers)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 && len(records) > 0 {
		s.logger.WarnContext(ctx, "no usable column headers, rows skipped",
			"table", table, "rows", len(records))
	}

	drop, err := ddl.DropTable(s.pgSchema, physical)
	if err != nil {
		return nil, err
	}
	defs := make([]ddl.ColumnDef, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = ddl.ColumnDef{Name: c.Name, Type: "TEXT"}
		names[i] = c.Name
	}
	create, err := ddl.CreateTable(s.pgSchema, physical, defs)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			if v, ok := rec[c.Source]; ok && strings.TrimSpace(v) != "" {
				row[j] = v
			}
		}
		rows[i] = row
	}
	inserts := dml.BuildBulkInsert(s.pgSchema, physical, names, rows)

	var inserted int64
	err = s.store.InTx(ctx, func(tx domain.Store) error {
		eng := tx.Engine()
		if err := eng.ExecDDL(ctx, drop); err != nil {
			return err
		}
		if err := eng.ExecDDL(ctx, create); err != nil {
			return err
		}
		for _, stmt := range inserts {
			n, err := eng.Exec(ctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "table rebuild rolled back", "table", table, "physical", physical, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "table rebuilt",
		"table", table, "physical", physical, "columns", len(cols), "rows", inserted)
	return &domain.ImportResult{
		Message:       fmt.Sprintf("table %q rebuilt with %d rows", table, inserted),
		RowsProcessed: inserted,
		TableRebuilt:  true,
	}, nil
}

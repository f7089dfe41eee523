package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tablehub/internal/ddl"
	"tablehub/internal/domain"
)

// Reaper finds physical tables that carry a tenant suffix but have no
// association, and drops them.
type Reaper struct {
	store    domain.Store
	pgSchema string
	logger   *slog.Logger
}

// NewReaper creates a Reaper.
func NewReaper(store domain.Store, pgSchema string, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{store: store, pgSchema: pgSchema, logger: logger.With("component", "reaper")}
}

// ReapOrphans lists orphaned physical tables and, unless dryRun, drops them.
// A failed drop does not stop the others; all failures are returned joined.
func (r *Reaper) ReapOrphans(ctx context.Context, dryRun bool) (*domain.ReapResult, error) {
	physical, err := r.store.Introspector().ListPhysicalTables(ctx)
	if err != nil {
		return nil, err
	}
	assocs, err := r.store.Tables().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]struct{}, len(assocs))
	for _, a := range assocs {
		name, err := ddl.ResolvePhysicalName(a.Name, a.UserID, a.DatabaseID)
		if err != nil {
			r.logger.WarnContext(ctx, "association with unresolvable name",
				"user_id", a.UserID, "db_id", a.DatabaseID, "table", a.Name, "error", err)
			continue
		}
		owned[name] = struct{}{}
	}

	res := &domain.ReapResult{Orphans: []string{}, Dropped: []string{}, DryRun: dryRun}
	for _, name := range physical {
		if _, _, ok := ddl.ParsePhysicalName(name); !ok {
			continue
		}
		if _, ok := owned[name]; ok {
			continue
		}
		res.Orphans = append(res.Orphans, name)
	}

	if dryRun {
		r.logger.InfoContext(ctx, "orphan scan", "orphans", len(res.Orphans), "dry_run", true)
		return res, nil
	}

	var errs []error
	for _, name := range res.Orphans {
		stmt, err := ddl.DropTable(r.pgSchema, name)
		if err == nil {
			err = r.store.Engine().ExecDDL(ctx, stmt)
		}
		if err != nil {
			r.logger.ErrorContext(ctx, "drop orphaned table", "physical", name, "error", err)
			errs = append(errs, fmt.Errorf("drop %s: %w", name, err))
			continue
		}
		r.logger.InfoContext(ctx, "dropped orphaned table", "physical", name)
		res.Dropped = append(res.Dropped, name)
	}
	return res, errors.Join(errs...)
}

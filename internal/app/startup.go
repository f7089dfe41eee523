package app

import (
	"context"
	"log/slog"
)

// ReportOrphans runs a dry-run orphan scan and logs what it finds. Physical
// tables are never dropped here; use the CLI reap command for that.
// Errors are logged but not fatal (best-effort).
func (a *App) ReportOrphans(ctx context.Context, logger *slog.Logger) {
	res, err := a.Services.Reaper.ReapOrphans(ctx, true)
	if err != nil {
		logger.Warn("orphan scan failed", "error", err)
		return
	}
	if len(res.Orphans) > 0 {
		logger.Warn("orphaned physical tables found", "count", len(res.Orphans), "tables", res.Orphans)
	}
}

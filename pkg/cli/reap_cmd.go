package cli

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tablehub/internal/config"
	"tablehub/internal/db/repository"
	"tablehub/internal/service/catalog"
)

func newReapCmd(e *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Drop physical tables that no logical table owns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commandLogger(cmd, e)
			return withDB(cmd, e, func(cfg *config.Config, db *sql.DB) error {
				store := repository.NewStore(db, cfg.PhysicalSchema, logger)
				res, err := catalog.NewReaper(store, cfg.PhysicalSchema, logger).ReapOrphans(cmd.Context(), dryRun)
				if res == nil {
					return err
				}
				if rerr := render(cmd, e, res, func() [][2]string {
					return [][2]string{
						{"dry run", strconv.FormatBool(res.DryRun)},
						{"orphans", strings.Join(res.Orphans, ", ")},
						{"dropped", strings.Join(res.Dropped, ", ")},
					}
				}); rerr != nil {
					return rerr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list orphans")
	return cmd
}

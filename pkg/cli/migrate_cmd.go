package cli

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tablehub/internal/config"
	internaldb "tablehub/internal/db"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending metadata migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, e, func(_ *config.Config, db *sql.DB) error {
				if err := internaldb.RunMigrations(db); err != nil {
					return err
				}
				v, err := internaldb.MigrationVersion(db)
				if err != nil {
					return err
				}
				return render(cmd, e, map[string]int64{"version": v}, func() [][2]string {
					return [][2]string{{"status", "up to date"}, {"version", strconv.FormatInt(v, 10)}}
				})
			})
		},
	}
}

// mustPositive rejects ids that cannot name a tenant or database.
func mustPositive(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("--%s must be a positive integer", name)
	}
	return nil
}

package cli

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tablehub/internal/config"
	"tablehub/internal/csvimport"
	"tablehub/internal/db/repository"
	"tablehub/internal/service/ingestion"
)

func newImportCmd(e *env) *cobra.Command {
	var userID, dbID int64
	var table string

	cmd := &cobra.Command{
		Use:   "import --user ID --db ID --table NAME FILE.csv",
		Short: "Replace a table's contents with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mustPositive("user", userID); err != nil {
				return err
			}
			if err := mustPositive("db", dbID); err != nil {
				return err
			}
			if !csvimport.IsCSV(args[0], "") {
				return fmt.Errorf("%s is not a .csv file", args[0])
			}
			f, err := os.Open(args[0]) //nolint:gosec // path is operator-supplied
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close() //nolint:errcheck

			decoded, err := csvimport.Decode(f)
			if err != nil {
				return err
			}
			logger := commandLogger(cmd, e)
			logger.Debug("decoded csv", "file", args[0], "shape", decoded.Describe())

			return withDB(cmd, e, func(cfg *config.Config, db *sql.DB) error {
				store := repository.NewStore(db, cfg.PhysicalSchema, logger)
				svc := ingestion.NewService(store, cfg.PhysicalSchema, logger)
				res, err := svc.Rebuild(cmd.Context(), userID, dbID, table, decoded.Headers, decoded.Records)
				if err != nil {
					return err
				}
				return render(cmd, e, res, func() [][2]string {
					return [][2]string{
						{"message", res.Message},
						{"rows", strconv.FormatInt(res.RowsProcessed, 10)},
						{"rebuilt", strconv.FormatBool(res.TableRebuilt)},
					}
				})
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "owning user id")
	cmd.Flags().Int64Var(&dbID, "db", 0, "logical database id")
	cmd.Flags().StringVar(&table, "table", "", "logical table name")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

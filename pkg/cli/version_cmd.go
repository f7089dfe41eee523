package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resolveFormat(cmd, e) == formatJSON {
				return printJSON(e.stdout, map[string]string{"version": version, "commit": commit})
			}
			_, err := fmt.Fprintf(e.stdout, "tablehub version %s (commit: %s)\n", version, commit)
			return err
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

func validateOutputFormat(output string) error {
	switch output {
	case "", formatAuto, formatTable, formatJSON:
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'auto', 'table' or 'json'", output)
}

// resolveFormat picks table output on a terminal and JSON otherwise unless
// --output says which.
func resolveFormat(cmd *cobra.Command, e *env) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	switch v {
	case formatTable, formatJSON:
		return v
	}
	if e.isTerminal() {
		return formatTable
	}
	return formatJSON
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printKV renders ordered key/value pairs as an aligned two-column table.
func printKV(w io.Writer, pairs [][2]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\n", strings.ToUpper(p[0]), p[1])
	}
	return tw.Flush()
}

// render writes v as JSON, or the human form built by kv.
func render(cmd *cobra.Command, e *env, v any, kv func() [][2]string) error {
	if resolveFormat(cmd, e) == formatJSON {
		return printJSON(e.stdout, v)
	}
	return printKV(e.stdout, kv())
}

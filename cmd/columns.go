package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/utils"
)

var colJSON bool

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "Show detected header row, columns and role mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := normalize(args[0], cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if colJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"source":         res.Source,
				"sheet":          res.Sheet,
				"header_row":     res.HeaderRow,
				"header_found":   res.HeaderFound,
				"source_columns": res.SourceColumns,
				"columns":        res.Table.Columns,
				"roles":          res.Roles.Map(),
				"year_column":    res.YearColumn,
				"records":        res.Table.Len(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		fmt.Fprintf(out, "File: %s (sheet %s)\n", res.Source, res.Sheet)
		if res.HeaderFound {
			fmt.Fprintf(out, "Header row: %d\n", res.HeaderRow+1)
		} else {
			fmt.Fprintln(out, "Header row: not found, using row 1")
		}
		fmt.Fprintf(out, "Records: %d\n", res.Table.Len())
		fmt.Fprintf(out, "Columns before relocation: %s\n", strings.Join(res.SourceColumns, ", "))
		fmt.Fprintf(out, "Columns: %s\n", strings.Join(res.Table.Columns, ", "))
		for _, role := range asset.AllRoles() {
			col, ok := res.Roles.Column(role)
			if !ok {
				col = "(not found)"
			}
			fmt.Fprintf(out, "  %-9s %s\n", role.String()+":", col)
		}
		if res.YearColumn != "" {
			fmt.Fprintf(out, "  %-9s %s (derived)\n", "year:", res.YearColumn)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().BoolVar(&colJSON, "json", false, "print as JSON")
}

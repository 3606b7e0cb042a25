package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assetboard-cli/internal/filter"
)

var valField string

var valuesCmd = &cobra.Command{
	Use:   "values <file>",
	Short: "List the distinct values available for each filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := filter.Fields()
		if valField != "" {
			f, err := filter.ParseField(valField)
			if err != nil {
				return err
			}
			fields = []filter.Field{f}
		}
		res, err := normalize(args[0], cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		choices := filter.NewEngine(res.Table, binding(res)).Choices()
		out := cmd.OutOrStdout()
		for _, f := range fields {
			vals, ok := choices[f]
			if !ok {
				fmt.Fprintf(out, "%s: (column not found)\n", f)
				continue
			}
			fmt.Fprintf(out, "%s (%d): %s\n", f, len(vals), strings.Join(vals, " | "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(valuesCmd)
	valuesCmd.Flags().StringVar(&valField, "field", "", "only list one field: unit|condition|category|year")
}

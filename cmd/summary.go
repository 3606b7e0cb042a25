package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/assetboard-cli/internal/analysis"
	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/utils"
)

var (
	sumFormat string
	sumOutput string
	sumSel    = newSelectionFlags()
)

var summaryCmd = &cobra.Command{
	Use:   "summary <files...>",
	Short: "Summarize one or more asset registers after filtering",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(sumFormat))
		switch format {
		case "md", "markdown", "html", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use md|html|json)", sumFormat)
		}
		sel, err := sumSel.selection()
		if err != nil {
			return err
		}
		files, err := utils.ExpandPaths(args)
		if err != nil {
			return err
		}

		c := settings()
		docs := make([]string, len(files))
		warns := make([]bytes.Buffer, len(files))
		var g errgroup.Group
		g.SetLimit(max(c.Workers, 1))
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				res, err := normalize(path, &warns[i])
				if err != nil {
					return fmt.Errorf("summarize %s: %w", path, err)
				}
				filtered := filter.NewEngine(res.Table, binding(res)).Apply(res.Table, sel)
				rep := &analysis.Report{
					Name:       res.Source,
					Sheet:      res.Sheet,
					Columns:    res.Table.Columns,
					Total:      res.Table.Len(),
					Roles:      res.Roles,
					YearColumn: res.YearColumn,
					Summary:    analysis.Summarize(filtered, res.Roles, c.AnalysisOptions()),
					Warnings:   res.Warnings,
				}
				switch format {
				case "html":
					docs[i] = rep.HTML()
				case "json":
					b, err := utils.PrettyJSON(map[string]any{"source": res.Source, "summary": rep.Summary})
					if err != nil {
						return err
					}
					docs[i] = string(b)
				default:
					docs[i] = rep.Markdown()
				}
				return nil
			})
		}
		err = g.Wait()
		for i := range warns {
			_, _ = cmd.ErrOrStderr().Write(warns[i].Bytes())
		}
		if err != nil {
			return err
		}

		sep := "\n"
		if format == "md" || format == "markdown" {
			sep = "\n---\n\n"
		}
		body := strings.Join(docs, sep)
		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, []byte(body)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary of %d file(s) to %s\n", len(files), sumOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&sumFormat, "format", "md", "output format: md|html|json")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	sumSel.register(summaryCmd)
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
)

// selectionFlags holds the repeatable per-field filter flags of a command.
type selectionFlags struct {
	values map[filter.Field]*[]string
	none   map[filter.Field]*bool
}

func newSelectionFlags() *selectionFlags {
	s := &selectionFlags{values: map[filter.Field]*[]string{}, none: map[filter.Field]*bool{}}
	for _, f := range filter.Fields() {
		s.values[f] = new([]string)
		s.none[f] = new(bool)
	}
	return s
}

// register adds --unit/--condition/--category/--year and their --none-* forms.
func (s *selectionFlags) register(cmd *cobra.Command) {
	for _, f := range filter.Fields() {
		name := string(f)
		cmd.Flags().StringArrayVar(s.values[f], name, nil, fmt.Sprintf("keep only records whose %s is this value (repeatable)", name))
		cmd.Flags().BoolVar(s.none[f], "none-"+name, false, fmt.Sprintf("select no %s values (excludes every record)", name))
	}
}

func (s *selectionFlags) reset() {
	for _, f := range filter.Fields() {
		*s.values[f] = nil
		*s.none[f] = false
	}
}

// selection builds a filter selection; fields without flags are not filtered.
func (s *selectionFlags) selection() (filter.Selection, error) {
	sel := filter.Selection{}
	for _, f := range filter.Fields() {
		vals := *s.values[f]
		if *s.none[f] {
			if len(vals) > 0 {
				return nil, fmt.Errorf("--%s and --none-%s are mutually exclusive", f, f)
			}
			sel[f] = filter.NewSet()
			continue
		}
		if len(vals) > 0 {
			sel[f] = filter.NewSet(vals...)
		}
	}
	return sel, nil
}

// normalize loads path with the configured ingestion options and prints any
// warnings to w.
func normalize(path string, w io.Writer) (*ingest.Result, error) {
	res, err := ingest.NewNormalizer(settings().IngestOptions()).NormalizeFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("normalized",
		slog.String("source", res.Source),
		slog.Int("header_row", res.HeaderRow),
		slog.Int("records", res.Table.Len()))
	printWarnings(w, res)
	return res, nil
}

func printWarnings(w io.Writer, res *ingest.Result) {
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "⚠ Warning: %s: %s\n", res.Source, wn.Message)
	}
}

func binding(res *ingest.Result) filter.Binding {
	return filter.Binding{Roles: res.Roles, YearColumn: res.YearColumn}
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assetboard-cli/internal/export"
	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/utils"
)

var (
	expOutput string
	expSheet  string
	expSel    = newSelectionFlags()
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the filtered records of an asset register to a new workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := expSel.selection()
		if err != nil {
			return err
		}
		res, err := normalize(args[0], cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		filtered := filter.NewEngine(res.Table, binding(res)).Apply(res.Table, sel)
		if filtered.Len() == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no records match the selection; nothing exported")
			return nil
		}

		opt := settings().ExportOptions()
		if expSheet != "" {
			opt.Sheet = expSheet
		}
		if expOutput != "" {
			opt.Filename = filepath.Base(expOutput)
		}
		p, err := export.Workbook(filtered, opt)
		if err != nil {
			return err
		}
		dest := expOutput
		if dest == "" {
			dest = p.Filename
		}
		if err := utils.SafeWriteFile(dest, p.Data); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d of %d records to %s\n", filtered.Len(), res.Table.Len(), dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default data_aset_filtered.xlsx)")
	exportCmd.Flags().StringVar(&expSheet, "sheet", "", "sheet name (default from config)")
	expSel.register(exportCmd)
}

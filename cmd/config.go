package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/assetboard-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Assetboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "header_marker: %s\n", c.HeaderMarker)
		fmt.Fprintf(out, "year_column: %s\n", c.YearColumn)
		if len(c.ExtraAliases) > 0 {
			roles := make([]string, 0, len(c.ExtraAliases))
			for r := range c.ExtraAliases {
				roles = append(roles, r)
			}
			sort.Strings(roles)
			for _, r := range roles {
				fmt.Fprintf(out, "extra_aliases.%s: %s\n", r, strings.Join(c.ExtraAliases[r], ", "))
			}
		}
		if c.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", c.DecimalSeparator)
		}
		if c.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", c.ThousandsSeparator)
		}
		fmt.Fprintf(out, "incomplete_threshold: %d\n", c.IncompleteThreshold)
		fmt.Fprintf(out, "good_condition_keywords: %s\n", strings.Join(c.GoodConditionKeywords, ", "))
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "export_sheet: %s\n", c.ExportSheet)
		fmt.Fprintf(out, "export_filename: %s\n", c.ExportFilename)
		fmt.Fprintf(out, "workers: %d\n", c.Workers)
		fmt.Fprintf(out, "serve_addr: %s\n", c.ServeAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "session_ttl_min: %d\n", c.SessionTTLMin)
		fmt.Fprintf(out, "upload_rps: %g\n", c.UploadRPS)
		fmt.Fprintf(out, "upload_burst: %d\n", c.UploadBurst)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

List values (good_condition_keywords) are comma-separated. Aliases are set per
role, e.g. "extra_aliases.unit" "Lokasi,Unit Kerja".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := settings()
		atoi := func() (int, error) {
			i, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		var err error
		switch {
		case key == "header_marker":
			c.HeaderMarker = val
		case key == "year_column":
			c.YearColumn = val
		case key == "decimal_separator":
			c.DecimalSeparator = val
		case key == "thousands_separator":
			c.ThousandsSeparator = val
		case key == "incomplete_threshold":
			c.IncompleteThreshold, err = atoi()
		case key == "good_condition_keywords":
			c.GoodConditionKeywords = splitList(val)
		case key == "histogram_bins":
			c.HistogramBins, err = atoi()
		case key == "export_sheet":
			c.ExportSheet = val
		case key == "export_filename":
			c.ExportFilename = val
		case key == "workers":
			c.Workers, err = atoi()
		case key == "serve_addr":
			c.ServeAddr = val
		case key == "max_upload_mb":
			c.MaxUploadMB, err = atoi()
		case key == "session_ttl_min":
			c.SessionTTLMin, err = atoi()
		case key == "upload_rps":
			c.UploadRPS, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				err = fmt.Errorf("invalid number for %s: %v", key, val)
			}
		case key == "upload_burst":
			c.UploadBurst, err = atoi()
		case strings.HasPrefix(key, "extra_aliases."):
			role := strings.TrimPrefix(key, "extra_aliases.")
			if c.ExtraAliases == nil {
				c.ExtraAliases = map[string][]string{}
			}
			if aliases := splitList(val); len(aliases) > 0 {
				c.ExtraAliases[role] = aliases
			} else {
				delete(c.ExtraAliases, role)
			}
		default:
			return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

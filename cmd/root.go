package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/assetboard-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides (take precedence over config when set)
	flagHeaderMarker string
	flagThreshold    int
	flagWorkers      int

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:   "assetboard",
	Short: "Assetboard: summarize, filter and export asset register spreadsheets",
	Long: `Assetboard reads asset register workbooks with free-form preambles, locates the
real header row, maps unit/condition/category/date/value columns by name, and
produces filtered summaries, exports and a small JSON API.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.assetboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagHeaderMarker, "header-marker", "", "text identifying the header row (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagThreshold, "incomplete-threshold", 0, "missing tracked values that make a record incomplete (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "parallel files for multi-file commands (overrides config)")
}

func loadConfig() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("header-marker") && flagHeaderMarker != "" {
		cfg.HeaderMarker = flagHeaderMarker
	}
	if f.Changed("incomplete-threshold") && flagThreshold > 0 {
		cfg.IncompleteThreshold = flagThreshold
	}
	if f.Changed("workers") && flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	logger.Debug("config loaded",
		slog.String("header_marker", cfg.HeaderMarker),
		slog.Int("incomplete_threshold", cfg.IncompleteThreshold),
		slog.Int("workers", cfg.Workers))
}

// settings returns the loaded configuration, or defaults before loadConfig ran.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

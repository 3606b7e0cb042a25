package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/assetboard-cli/internal/session"
	httptransport "github.com/KaramelBytes/assetboard-cli/internal/transport/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API for uploading, filtering and exporting registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		addr := c.ServeAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		store := session.NewStore(c.SessionTTL())
		h := httptransport.NewDatasetHandler(store, httptransport.Options{
			Ingest:         c.IngestOptions(),
			Analysis:       c.AnalysisOptions(),
			Export:         c.ExportOptions(),
			MaxUploadBytes: c.MaxUploadBytes(),
			UploadRate:     c.UploadRPS,
			UploadBurst:    c.UploadBurst,
		}, httptransport.NewMetrics(), logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on http://%s (Ctrl+C to stop)\n", addr)
		srv := &httptransport.Server{
			Addr:    addr,
			Handler: httptransport.NewRouter(h, logger),
			Store:   store,
			Logger:  logger.With("component", "server"),
		}
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve_addr)")
}

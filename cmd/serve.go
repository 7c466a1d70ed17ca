package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/happydash/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API, HTML summary and metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		log := newLogger()
		srv := server.New(ds, server.Config{
			CORSOrigins:     cfg.CORSOrigins,
			TopCorrelations: cfg.TopCorrelations,
			ReadTimeout:     time.Duration(cfg.ReadTimeoutSec) * time.Second,
			ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSec) * time.Second,
		}, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Loaded %s (%d rows)\n", ds.Name, ds.Len())
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Listening on http://%s\n", addr)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}

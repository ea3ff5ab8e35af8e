package main

import (
	"github.com/spf13/cobra"

	"github.com/VolaTeQ/litchitool/internal/observability"
	"github.com/VolaTeQ/litchitool/internal/server"
)

var (
	serveAddr      string
	serveCacheSize int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve CSV conversion over HTTP",
	Long:  "serve exposes POST /convert and POST /kml together with /healthz and Prometheus /metrics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := current.cfg.MissionConfig()
		if err != nil {
			return err
		}
		metrics, err := observability.NewConversionCollector(nil)
		if err != nil {
			return err
		}
		srv, err := server.New(
			server.WithMissionConfig(mc),
			server.WithMetrics(metrics),
			server.WithHistory(current.history),
			server.WithCacheSize(serveCacheSize),
		)
		if err != nil {
			return err
		}
		return srv.Start(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().IntVar(&serveCacheSize, "cache-size", server.DefaultCacheSize, "Number of converted missions to keep in memory")
}

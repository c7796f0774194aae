package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-generator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes POST /generate-cover-letter along with /health and /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "Interface to bind (default: all)")
	serveCmd.Flags().Int("port", server.DefaultPort, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv := server.New(a.cfg.ServerConfig(), a.composer, a.logger, a.metrics)
	return srv.Start()
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves calculator sessions over HTTP: one-shot evaluation, batched key presses,
server-sent state diffs, a WebSocket keypad and history. The API is described at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.Serve(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}

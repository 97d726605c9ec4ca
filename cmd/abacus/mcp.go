package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the calculator to AI agents as MCP tools (evaluate_expression, press_keys,
get_history) and the abacus://history resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("sse-port")
		return cli.ServeMCP(cfg, transport, port)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("sse-port", 8081, "Port to listen on (only for SSE)")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "abacus is a keypad calculator with scientific functions",
	Long: `abacus accumulates an expression from keypad input, evaluates it and keeps a history.
It runs as an interactive REPL, a one-shot evaluator, an HTTP/WebSocket server or an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().String("history", "", "History backend: memory, loam or redis")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis")
}

// loadConfig resolves the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("debug") {
		cfg.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if cmd.Flags().Changed("history") {
		cfg.History, _ = cmd.Flags().GetString("history")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store, _ = cmd.Flags().GetString("store")
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
	}
	if f := cmd.Flags().Lookup("metrics"); f != nil && f.Changed {
		cfg.Metrics, _ = cmd.Flags().GetBool("metrics")
	}
	return cfg, cfg.Validate()
}

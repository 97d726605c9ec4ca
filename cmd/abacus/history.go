package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/presentation/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent calculations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if !cmd.Flags().Changed("limit") {
			limit = cfg.HistoryLimit
		}

		var render abacus.ContentRenderer
		if tui.IsInteractive() {
			render = tui.NewRenderer()
		}
		return cli.ShowHistory(cmd.Context(), cfg, limit, render, cmd.OutOrStdout())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded calculations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.ClearHistory(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyCmd.Flags().IntP("limit", "n", abacus.DefaultHistoryLimit, "Number of entries to show (0 for all)")
}

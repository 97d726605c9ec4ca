package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove calculator sessions kept in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.ListSessions(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.InspectSession(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm <session-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.DeleteSession(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}

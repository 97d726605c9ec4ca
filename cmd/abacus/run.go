package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive calculator",
	Long: `Reads keys line by line. Type digits and operators as on a keypad, named keys such as
sqrt or = separated by spaces, 'help' for the key list, 'history' and 'exit'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")
		sessionID, _ := cmd.Flags().GetString("session")

		return cli.Run(cli.RunOptions{
			Config:    cfg,
			SessionID: sessionID,
			Headless:  headless,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Print only the output display, no banner or prompt")
	runCmd.Flags().StringP("session", "s", "", "Resume and persist a named session")

	// 'run' is the default when no command is given.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var evalCmd = &cobra.Command{
	Use:     "eval <expression>...",
	Short:   "Evaluate expressions and print the results",
	Example: `  abacus eval "2(3+4)" "2**10"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.Eval(cmd.Context(), cfg, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

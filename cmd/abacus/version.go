package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of abacus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "abacus version %s\n", abacus.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tradecoin"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tradecoin",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tradecoin version %s\n", strings.TrimSpace(tradecoin.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

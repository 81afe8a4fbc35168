package main

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version number of Hostpool",
	Args:  cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("hostpool version %s (%s)\n", version, commit[:min(len(commit), 7)])
	},
}

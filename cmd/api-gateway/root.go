package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "noticeboard",
	Short:        "Notice board API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command. Without a subcommand the server starts.
func Execute() error {
	return rootCmd.Execute()
}

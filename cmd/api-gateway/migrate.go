package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/noticeboard-api/pkg/config"
	"github.com/noah-isme/noticeboard-api/pkg/database"
	"github.com/noah-isme/noticeboard-api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logr, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logr.Sync() //nolint:errcheck

		return database.Migrate(cfg.Database, logr)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

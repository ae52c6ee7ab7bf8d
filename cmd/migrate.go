package main

import (
	"property-service/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.InitDB(&cfg.DB, log)
			if err != nil {
				return err
			}

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("Database migrations completed", zap.String("db_name", cfg.DB.DBName))
			return nil
		},
	}
}

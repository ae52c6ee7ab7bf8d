package main

import (
	"property-service/pkg/config"
	"property-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "property-service",
		Short:         "Rental property listings API",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

// bootstrap loads configuration and sets up the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, logger.GetLogger(), nil
}

package cmd

import (
	"context"
	"fmt"
	"log"

	"care-booking/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "care-booking",
		Short:         "Healthcare booking lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(importTestsCmd())
	return root
}

// Execute runs the CLI. ctx is cancelled on shutdown signals, callers exit
// non-zero on error.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// bootstrap loads config and the logger shared by every subcommand.
func bootstrap() (*utils.Config, *zap.Logger, error) {
	config, err := utils.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	return config, logger, nil
}

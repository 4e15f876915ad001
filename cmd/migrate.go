package cmd

import (
	"care-booking/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	for _, direction := range []database.MigrateDirection{database.MigrateUp, database.MigrateDown} {
		direction := direction
		cmd.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: "Run migrations " + string(direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				config, logger, err := bootstrap()
				if err != nil {
					return err
				}
				defer logger.Sync()

				if err := database.RunMigrations(config.Database, direction); err != nil {
					logger.Error("Migration failed", zap.String("direction", string(direction)), zap.Error(err))
					return err
				}

				logger.Info("Migrations applied", zap.String("direction", string(direction)))
				return nil
			},
		})
	}

	return cmd
}

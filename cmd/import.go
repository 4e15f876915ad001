package cmd

import (
	"fmt"
	"os"

	"care-booking/internal/data/repository"
	"care-booking/internal/importer"
	"care-booking/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func importTestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-tests <file.csv>",
		Short: "Upsert the diagnostic test catalog from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer file.Close()

			ctx := cmd.Context()
			db, err := database.InitDB(ctx, config.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			imp := importer.NewTestImporter(repository.NewTestRepository(db, logger), logger)
			result, err := imp.Import(ctx, file)
			if err != nil {
				logger.Error("Test import failed",
					zap.String("file", args[0]),
					zap.Int("inserted", result.Inserted),
					zap.Int("updated", result.Updated),
					zap.Error(err))
				return err
			}

			logger.Info("Test import finished",
				zap.String("file", args[0]),
				zap.Int("inserted", result.Inserted),
				zap.Int("updated", result.Updated),
				zap.Int("skipped", result.Skipped),
				zap.Int("total", result.Total()))
			return nil
		},
	}
}

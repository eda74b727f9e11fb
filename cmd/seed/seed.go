// Package seed installs the ability catalog and default profiles.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"agendia/internal/seed"
	"agendia/pkg/config"
	"agendia/pkg/database"
	"agendia/pkg/logger"
)

// NewSeedCommand returns the seed subcommand.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the ability catalog and default profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load("agendia")
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if err := logger.InitLogger(&logger.LogConfig{
				Level:       conf.Log.Level,
				Environment: conf.Server.Env,
				ServiceName: conf.ServiceName,
			}); err != nil {
				return err
			}

			db, err := database.Init(&conf.DB)
			if err != nil {
				return err
			}
			if err := seed.Run(db); err != nil {
				return err
			}

			logger.GetLogger().Info("Reference data seeded")
			return nil
		},
	}
}

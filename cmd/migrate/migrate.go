// Package migrate runs the schema migrations.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"agendia/pkg/config"
	"agendia/pkg/database"
	"agendia/pkg/logger"
)

// NewMigrateCommand returns the migrate subcommand.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
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

			if _, err := database.Init(&conf.DB); err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return err
			}

			logger.GetLogger().Info("Migrations applied")
			return nil
		},
	}
}

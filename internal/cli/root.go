// Package cli defines the hackreg command line: serve runs the HTTP
// server and job workers, migrate applies the embedded schema.
package cli

import (
	"github.com/deppfellow/hackreg/internal/config"
	"github.com/deppfellow/hackreg/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           config.ServiceName,
		Short:         "Hackathon registration form backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}

// bootstrap loads config and builds the logger every subcommand needs.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}

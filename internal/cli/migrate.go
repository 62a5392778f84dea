package cli

import (
	"context"
	"time"

	"github.com/deppfellow/hackreg/internal/database"
	"github.com/spf13/cobra"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	Timeout time.Duration
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "give up after this long")

	return cmd
}

func runMigrate(ctx context.Context, opts *MigrateOptions) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := database.Migrate(ctx, &log, cfg); err != nil {
		log.Error().Err(err).Msg("migration failed")
		return err
	}
	return nil
}

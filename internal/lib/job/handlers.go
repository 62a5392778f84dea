package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/hackreg/internal/config"
	"github.com/deppfellow/hackreg/internal/lib/email"
	"github.com/deppfellow/hackreg/internal/lib/webhook"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// InitHandlers builds the clients used by task handlers. A client is only
// created when its integration is configured.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Integration.NotifyWebhookURL != "" {
		j.webhook = webhook.NewClient(cfg.Integration.NotifyWebhookURL)
	}
	if cfg.Integration.EmailEnabled() {
		j.email = email.NewClient(cfg, logger)
	}
}

func (j *JobService) handleSubmissionNotifyTask(ctx context.Context, t *asynq.Task) error {
	var p SubmissionNotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal submission notify payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.webhook == nil {
		j.logger.Warn().Str("type", "submission_notify").Msg("No webhook configured, dropping notification")
		return nil
	}

	if err := j.webhook.Send(ctx, p.Message); err != nil {
		j.logger.Error().
			Str("type", "submission_notify").
			Err(err).
			Msg("Failed to send webhook notification")
		return err
	}

	j.logger.Info().
		Str("type", "submission_notify").
		Msg("Webhook notification sent")

	return nil
}

func (j *JobService) handleRegistrationConfirmedTask(ctx context.Context, t *asynq.Task) error {
	var p RegistrationConfirmedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal registration confirmed payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.email == nil {
		j.logger.Warn().Str("type", "registration_confirmed").Msg("Email is not configured, skipping")
		return nil
	}

	j.logger.Info().
		Str("type", "registration_confirmed").
		Str("to", p.To).
		Msg("Processing registration confirmed email task")

	if err := j.email.SendRegistrationConfirmedEmail(p.To, p.FirstName); err != nil {
		j.logger.Error().
			Str("type", "registration_confirmed").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send registration confirmed email")
		return err
	}

	j.logger.Info().
		Str("type", "registration_confirmed").
		Str("to", p.To).
		Msg("Successfully sent registration confirmed email")

	return nil
}

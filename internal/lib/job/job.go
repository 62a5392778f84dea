// Package job runs background work on Asynq.
//
// Asynq is a Redis-backed job queue:
//   - tasks are enqueued (producer) with an asynq.Client
//   - a server runs workers that process them (consumer) with an asynq.Server
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/hackreg/internal/config"
	"github.com/deppfellow/hackreg/internal/lib/email"
	"github.com/deppfellow/hackreg/internal/lib/webhook"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer is the producer side of asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client Enqueuer
	server *asynq.Server
	logger *zerolog.Logger

	webhook *webhook.Client
	email   *email.Client
}

// NewJobService creates a JobService on the Redis instance from cfg.
//
// Queue weights give "critical" tasks the largest worker share:
//
//	critical: 6, default: 3, low: 1
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   asynqLogger{logger: logger},
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// Mux routes every task type to its handler.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSubmissionNotify, j.handleSubmissionNotifyTask)
	mux.HandleFunc(TaskRegistrationConfirmed, j.handleRegistrationConfirmedTask)
	return mux
}

// Start registers task handlers and starts the workers in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return err
	}

	return nil
}

// Stop waits for in-flight tasks and closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	if j.server != nil {
		j.server.Shutdown()
	}
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("Failed to close job client")
	}
}

// Submission is what the worker needs to announce one registration.
type Submission struct {
	Message   webhook.Message
	Email     string
	FirstName string
}

// NotifySubmission enqueues the webhook task and, when email is configured,
// the confirmation email. A missing webhook URL is logged and skipped.
func (j *JobService) NotifySubmission(ctx context.Context, s Submission) error {
	if j.webhook == nil {
		j.logger.Warn().Msg("notify webhook URL is not configured, skipping submission notification")
	} else {
		task, err := NewSubmissionNotifyTask(s.Message)
		if err != nil {
			return fmt.Errorf("failed to build submission notify task: %w", err)
		}
		if _, err := j.Client.EnqueueContext(ctx, task); err != nil {
			return fmt.Errorf("failed to enqueue submission notify task: %w", err)
		}
	}

	if j.email == nil || s.Email == "" {
		return nil
	}

	task, err := NewRegistrationConfirmedTask(s.Email, s.FirstName)
	if err != nil {
		return fmt.Errorf("failed to build registration confirmed task: %w", err)
	}
	if _, err := j.Client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue registration confirmed task: %w", err)
	}

	return nil
}

package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/hackreg/internal/lib/webhook"
	"github.com/hibiken/asynq"
)

const (
	// TaskSubmissionNotify posts a new-submission embed to the chat webhook.
	TaskSubmissionNotify = "webhook:submission"

	// TaskRegistrationConfirmed emails the registrant a receipt.
	TaskRegistrationConfirmed = "email:registration_confirmed"
)

// SubmissionNotifyPayload is the JSON payload of TaskSubmissionNotify.
type SubmissionNotifyPayload struct {
	Message webhook.Message `json:"message"`
}

// RegistrationConfirmedPayload is the JSON payload of TaskRegistrationConfirmed.
type RegistrationConfirmedPayload struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
}

// submissionNotifyOpts makes the webhook task single-attempt with no
// timeout of its own. A failed notification is logged and dropped.
func submissionNotifyOpts() []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Queue("critical"),
	}
}

// NewSubmissionNotifyTask builds the webhook task for msg.
func NewSubmissionNotifyTask(msg webhook.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(SubmissionNotifyPayload{Message: msg})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskSubmissionNotify, payload, submissionNotifyOpts()...), nil
}

// NewRegistrationConfirmedTask builds the confirmation email task.
//
//   - MaxRetry(3): retry up to 3 times on failure
//   - Queue("default")
//   - Timeout(30s)
func NewRegistrationConfirmedTask(to, firstName string) (*asynq.Task, error) {
	payload, err := json.Marshal(RegistrationConfirmedPayload{
		To:        to,
		FirstName: firstName,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRegistrationConfirmed,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/hackreg/internal/lib/job"
	"github.com/deppfellow/hackreg/internal/lib/webhook"
	"github.com/deppfellow/hackreg/internal/metrics"
	"github.com/deppfellow/hackreg/internal/model"
	"github.com/deppfellow/hackreg/internal/sqlerr"
	"github.com/rs/zerolog"
)

var (
	// ErrUnauthenticated is returned by Submit when there is no session identity.
	ErrUnauthenticated = errors.New("you must be logged in to submit the form")

	// ErrPersistence is returned by Submit when the row could not be stored.
	// The underlying datastore error is logged, not wrapped.
	ErrPersistence = errors.New("an error occurred while submitting the form")
)

const (
	// NotificationTitle is the embed title of a new-submission notification.
	NotificationTitle = "New Hacker Submission"

	// NotificationColor is the embed side-bar color.
	NotificationColor = 7506394

	// Placeholder replaces empty values in a notification.
	Placeholder = "N/A"
)

type registrationStore interface {
	FindByCreator(ctx context.Context, userID string) (*model.Registration, error)
	Insert(ctx context.Context, reg *model.Registration) error
}

// Notifier hands a submission to the background notification pipeline.
type Notifier interface {
	NotifySubmission(ctx context.Context, s job.Submission) error
}

type RegistrationService struct {
	logger   *zerolog.Logger
	store    registrationStore
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewRegistrationService(logger *zerolog.Logger, store registrationStore, notifier Notifier, m *metrics.Metrics) *RegistrationService {
	return &RegistrationService{
		logger:   logger,
		store:    store,
		notifier: notifier,
		metrics:  m,
	}
}

// Load returns the caller's prior submission, or nil. An empty userID
// (dev mode without a session) matches nothing.
func (s *RegistrationService) Load(ctx context.Context, userID string) (*model.Registration, error) {
	if userID == "" {
		return nil, nil
	}

	existing, err := s.store.FindByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	return existing, nil
}

// Submit stores a validated form for userID and starts the notification
// without waiting for it.
func (s *RegistrationService) Submit(ctx context.Context, userID string, form model.RegistrationForm) (*model.Registration, error) {
	if userID == "" {
		s.record(metrics.OutcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	reg := model.ToRegistration(form, userID)

	if err := s.store.Insert(ctx, &reg); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("sql_code", string(sqlerr.ErrCode(err))).
			Msg("failed to insert registration")
		s.record(metrics.OutcomeError)
		return nil, ErrPersistence
	}

	s.record(metrics.OutcomeSuccess)

	s.logger.Info().
		Str("user_id", userID).
		Str("registration_id", reg.ID.String()).
		Msg("registration submitted")

	go s.dispatch(context.WithoutCancel(ctx), form)

	return &reg, nil
}

// RecordInvalid counts a submission rejected by validation.
func (s *RegistrationService) RecordInvalid() {
	s.record(metrics.OutcomeInvalid)
}

func (s *RegistrationService) dispatch(ctx context.Context, form model.RegistrationForm) {
	err := s.notifier.NotifySubmission(ctx, job.Submission{
		Message:   BuildNotification(form),
		Email:     form.ContactEmail,
		FirstName: form.NameFirst,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to dispatch submission notification")
		s.recordNotification("error")
		return
	}
	s.recordNotification("enqueued")
}

func (s *RegistrationService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (s *RegistrationService) recordNotification(result string) {
	if s.metrics != nil {
		s.metrics.Notifications.WithLabelValues(result).Inc()
	}
}

// BuildNotification renders every submitted field as an embed row,
// spread over as many embeds as the webhook limits require.
func BuildNotification(f model.RegistrationForm) webhook.Message {
	fields := []webhook.Field{
		{Name: "First Name", Value: f.NameFirst},
		{Name: "Last Name", Value: f.NameLast},
		{Name: "Email", Value: f.ContactEmail},
		{Name: "Date of Birth", Value: f.DOB},
		{Name: "Phone", Value: f.Phone},
		{Name: "Gender", Value: f.Gender},
		{Name: "Race / Ethnicity", Value: f.RaceEthnicity},
		{Name: "Country", Value: f.Country},
		{Name: "School", Value: f.SchoolName},
		{Name: "Major", Value: f.SchoolMajor},
		{Name: "Level of Study", Value: f.LevelOfStudy},
		{Name: "Graduation Year", Value: f.GraduationYear},
		{Name: "Address", Value: f.Address1},
		{Name: "City", Value: f.City},
		{Name: "State", Value: f.State},
		{Name: "Zip Code", Value: f.ZipCode},
		{Name: "Attending In Person", Value: yesNo(f.IsAttendingInPerson)},
		{Name: "Shirt Size", Value: f.ShirtSize},
		{Name: "Dietary Restrictions", Value: f.DietaryRestrictions},
		{Name: "Dietary Restrictions Other", Value: f.DietaryRestrictionsOther},
		{Name: "Allergies", Value: f.Allergies},
		{Name: "Allergies Other", Value: f.AllergiesOther},
		{Name: "Special Request", Value: f.SpecialRequest},
		{Name: "How You Heard", Value: f.HowYouHeard},
		{Name: "Why Attend", Value: f.WhyAttend},
		{Name: "UB Hacking Code of Conduct", Value: yesNo(f.CodeOfConductUBHacking)},
		{Name: "MLH Code of Conduct", Value: yesNo(f.CodeOfConductMLH)},
		{Name: "MLH Data Sharing", Value: yesNo(f.DataSharingMLH)},
		{Name: "MLH Communication", Value: yesNo(f.CommunicationMLH)},
	}

	for i := range fields {
		if fields[i].Value == "" {
			fields[i].Value = Placeholder
		}
	}

	return webhook.NewMessage(NotificationTitle, NotificationColor, fields)
}

func yesNo(c model.Checkbox) string {
	if c {
		return "Yes"
	}
	return "No"
}

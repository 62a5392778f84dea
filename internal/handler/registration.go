package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/deppfellow/hackreg/internal/middleware"
	"github.com/deppfellow/hackreg/internal/model"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/deppfellow/hackreg/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	// LoginPath is where anonymous visitors of the form are sent.
	LoginPath = "/login"

	// ConfirmedPath is where a successful submission lands.
	ConfirmedPath = "/confirmed"

	MsgLoginRequired    = "You must be logged in to submit the form."
	MsgSubmissionFailed = "An error occurred while submitting the form."
)

type registrationService interface {
	Load(ctx context.Context, userID string) (*model.Registration, error)
	Submit(ctx context.Context, userID string, form model.RegistrationForm) (*model.Registration, error)
	RecordInvalid()
}

type RegistrationHandler struct {
	Handler
	registration registrationService
}

func NewRegistrationHandler(s *server.Server, registration registrationService) *RegistrationHandler {
	return &RegistrationHandler{
		Handler:      NewHandler(s),
		registration: registration,
	}
}

// Load serves the form page data: a blank form and the caller's prior
// submission, if any. Anonymous callers are redirected to the login page
// unless dev mode is on.
func (h *RegistrationHandler) Load(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if userID == "" && !h.server.Config.Primary.DevMode {
		return c.Redirect(http.StatusFound, LoginPath)
	}

	existing, err := h.registration.Load(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, model.LoadResponse{
		Form:               model.NewFormState(model.RegistrationForm{}),
		ExistingSubmission: existing,
	})
}

// Submit handles a validated form post and returns the redirect target.
func (h *RegistrationHandler) Submit(c echo.Context, form *model.RegistrationForm) (string, error) {
	state := model.FormState{Data: *form, Valid: true}

	_, err := h.registration.Submit(c.Request().Context(), middleware.GetUserID(c), *form)
	switch {
	case err == nil:
		return ConfirmedPath, nil

	case errors.Is(err, service.ErrUnauthenticated):
		return "", errs.NewUnauthorizedError(MsgLoginRequired, true).WithForm(state)

	default:
		return "", errs.NewInternalServerError().WithMessage(MsgSubmissionFailed).WithForm(state)
	}
}

// SubmitRoute is the POST handler: the typed pipeline around Submit, with
// validation rejections counted.
func (h *RegistrationHandler) SubmitRoute() echo.HandlerFunc {
	next := HandleRedirect(h.Handler, h.Submit, http.StatusFound, &model.RegistrationForm{})

	return func(c echo.Context) error {
		err := next(c)

		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest {
			h.registration.RecordInvalid()
		}
		return err
	}
}

package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/hackreg/internal/middleware"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/deppfellow/hackreg/internal/service"
	"github.com/labstack/echo/v4"
)

type profileService interface {
	Profile(ctx context.Context, userID string) (*service.Profile, error)
}

// AccountHandler serves the session-facing pages around the form.
type AccountHandler struct {
	Handler
	auth profileService
}

func NewAccountHandler(s *server.Server, auth profileService) *AccountHandler {
	return &AccountHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

// MeRequest has no parameters.
type MeRequest struct{}

func (r *MeRequest) Validate() error { return nil }

type MeResponse struct {
	UserID    string `json:"userId"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Me returns the identity resolved for the current session. When the
// profile lookup fails the bare identity is still returned.
func (h *AccountHandler) Me(c echo.Context, _ *MeRequest) (MeResponse, error) {
	role, _ := c.Get(middleware.UserRoleKey).(string)
	res := MeResponse{UserID: middleware.GetUserID(c), Role: role}

	profile, err := h.auth.Profile(c.Request().Context(), res.UserID)
	if err != nil {
		middleware.GetLogger(c).Warn().Err(err).Msg("failed to load user profile")
		return res, nil
	}

	res.Email = profile.Email
	res.FirstName = profile.FirstName
	res.LastName = profile.LastName
	return res, nil
}

type pageResponse struct {
	Page    string `json:"page"`
	Message string `json:"message"`
}

// Confirmed is the landing page after a successful submission.
func (h *AccountHandler) Confirmed(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{
		Page:    "confirmed",
		Message: "Thanks! Your registration has been received.",
	})
}

// Login is where anonymous visitors are sent. Sign-in itself happens in
// the identity provider's hosted UI.
func (h *AccountHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{
		Page:    "login",
		Message: "Sign in to continue to the registration form.",
	})
}

package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/hackreg/internal/config"
	"github.com/deppfellow/hackreg/internal/handler"
	"github.com/deppfellow/hackreg/internal/metrics"
	"github.com/deppfellow/hackreg/internal/middleware"
	"github.com/deppfellow/hackreg/internal/model"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/deppfellow/hackreg/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(ctx context.Context, token string) (*clerk.SessionClaims, error) {
	sub, ok := v[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	claims := &clerk.SessionClaims{}
	claims.Subject = sub
	return claims, nil
}

type stubRegistration struct{}

func (stubRegistration) Load(ctx context.Context, userID string) (*model.Registration, error) {
	return nil, nil
}

func (stubRegistration) Submit(ctx context.Context, userID string, form model.RegistrationForm) (*model.Registration, error) {
	if userID == "" {
		return nil, service.ErrUnauthenticated
	}
	reg := model.ToRegistration(form, userID)
	return &reg, nil
}

func (stubRegistration) RecordInvalid() {}

type stubProfiles struct{}

func (stubProfiles) Profile(ctx context.Context, userID string) (*service.Profile, error) {
	return &service.Profile{UserID: userID}, nil
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	l := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"http://localhost:5173"},
				RateLimit:          1,
				RateLimitBurst:     5,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger:  &l,
		Metrics: metrics.New(),
	}

	mw := middleware.NewMiddlewares(s)
	mw.Auth = middleware.NewAuthMiddlewareWithVerifier(s, staticVerifier{"good": "user_1"})

	h := &handler.Handlers{
		Health:       handler.NewHealthHandlerWithChecks(s, map[string]handler.CheckFunc{}),
		OpenAPI:      handler.NewOpenAPIHandlerWithFS(s, fstest.MapFS{"openapi.html": {Data: []byte("docs")}}),
		Registration: handler.NewRegistrationHandler(s, stubRegistration{}),
		Account:      handler.NewAccountHandler(s, stubProfiles{}),
	}

	return NewRouterWithMiddlewares(s, h, mw)
}

func do(r *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"status", "/status", "", http.StatusOK},
		{"docs", "/docs", "", http.StatusOK},
		{"metrics", "/metrics", "", http.StatusOK},
		{"register anonymous", "/register", "", http.StatusFound},
		{"register signed in", "/register", "good", http.StatusOK},
		{"confirmed", "/confirmed", "", http.StatusOK},
		{"login", "/login", "", http.StatusOK},
		{"me anonymous", "/api/v1/me", "", http.StatusUnauthorized},
		{"me signed in", "/api/v1/me", "good", http.StatusOK},
		{"unknown", "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tt.token})
			}
			rec := do(r, req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
		})
	}
}

func TestSubmitThroughRouter(t *testing.T) {
	r := newTestRouter(t)

	values := url.Values{
		"contactEmail": {"ada@example.com"}, "nameFirst": {"Ada"}, "nameLast": {"Lovelace"},
		"dob": {"2004-12-10"}, "phone": {"+17165550100"}, "gender": {"Woman"},
		"raceEthnicity": {"White"}, "country": {"United States"},
		"schoolName": {"University at Buffalo"}, "schoolMajor": {"Computer Science"},
		"levelOfStudy": {"Undergraduate University (3+ year)"}, "graduationYear": {"2027"},
		"shirtSize": {"M"}, "dietaryRestrictions": {"None"}, "allergies": {"None"},
		"howYouHeard": {"Friend"}, "whyAttend": {"Fun"},
		"codeOfConductUBHacking": {"on"}, "codeOfConductMLH": {"on"}, "dataSharingMLH": {"on"},
	}

	post := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(values.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		return do(r, req)
	}

	rec := post("good")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, handler.ConfirmedPath, rec.Header().Get("Location"))

	rec = post("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitIsRateLimited(t *testing.T) {
	r := newTestRouter(t)

	var last int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(""))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		last = do(r, req).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

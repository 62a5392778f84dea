package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/deppfellow/hackreg/internal/config"
	"github.com/deppfellow/hackreg/internal/middleware"
	"github.com/deppfellow/hackreg/internal/model"
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/deppfellow/hackreg/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func testServer(devMode bool) *server.Server {
	l := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test", DevMode: devMode},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &l,
	}
}

// newEcho returns an Echo instance with the production error handler and
// a middleware that impersonates userID when it is non-empty.
func newEcho(s *server.Server, userID string) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != "" {
				c.Set(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	})
	return e
}

type fakeRegistrationService struct {
	mu        sync.Mutex
	existing  *model.Registration
	loadErr   error
	submitErr error
	submitted []model.RegistrationForm
	invalid   int
}

func (f *fakeRegistrationService) Load(ctx context.Context, userID string) (*model.Registration, error) {
	if userID == "" {
		return nil, nil
	}
	return f.existing, f.loadErr
}

func (f *fakeRegistrationService) Submit(ctx context.Context, userID string, form model.RegistrationForm) (*model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if userID == "" {
		return nil, service.ErrUnauthenticated
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, form)
	reg := model.ToRegistration(form, userID)
	return &reg, nil
}

func (f *fakeRegistrationService) RecordInvalid() {
	f.mu.Lock()
	f.invalid++
	f.mu.Unlock()
}

type fakeProfiles map[string]*service.Profile

func (f fakeProfiles) Profile(ctx context.Context, userID string) (*service.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return nil, errors.New("clerk unavailable")
	}
	return p, nil
}

var errDriver = errors.New(`pq: relation "registration" does not exist`)

func validValues() url.Values {
	return url.Values{
		"contactEmail":           {"ada@example.com"},
		"nameFirst":              {"Ada"},
		"nameLast":               {"Lovelace"},
		"dob":                    {"2004-12-10"},
		"phone":                  {"+17165550100"},
		"gender":                 {"Woman"},
		"raceEthnicity":          {"White"},
		"country":                {"United States"},
		"schoolName":             {"University at Buffalo"},
		"schoolMajor":            {"Computer Science"},
		"levelOfStudy":           {"Undergraduate University (3+ year)"},
		"graduationYear":         {"2027"},
		"isAttendingInPerson":    {"on"},
		"shirtSize":              {"M"},
		"dietaryRestrictions":    {"None"},
		"allergies":              {"None"},
		"howYouHeard":            {"Friend"},
		"whyAttend":              {"To build an analytical engine."},
		"codeOfConductUBHacking": {"on"},
		"codeOfConductMLH":       {"on"},
		"dataSharingMLH":         {"on"},
	}
}

func postForm(e *echo.Echo, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

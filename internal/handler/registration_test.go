package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/deppfellow/hackreg/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AnonymousIsRedirectedToLogin(t *testing.T) {
	s := testServer(false)
	h := NewRegistrationHandler(s, &fakeRegistrationService{})

	e := newEcho(s, "")
	e.GET("/register", h.Load)

	rec := get(e, "/register")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestLoad_DevModeRendersForAnonymous(t *testing.T) {
	s := testServer(true)
	h := NewRegistrationHandler(s, &fakeRegistrationService{})

	e := newEcho(s, "")
	e.GET("/register", h.Load)

	rec := get(e, "/register")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, "null", string(body["existingSubmission"]))
	assert.Contains(t, body, "form")
}

func TestLoad_ReturnsExistingSubmission(t *testing.T) {
	s := testServer(false)
	existing := model.ToRegistration(model.RegistrationForm{NameFirst: "Ada"}, "user_1")
	h := NewRegistrationHandler(s, &fakeRegistrationService{existing: &existing})

	e := newEcho(s, "user_1")
	e.GET("/register", h.Load)

	rec := get(e, "/register")
	require.Equal(t, http.StatusOK, rec.Code)

	var body model.LoadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.ExistingSubmission)
	assert.Equal(t, "Ada", body.ExistingSubmission.NameFirst)
	assert.Equal(t, "user_1", body.ExistingSubmission.CreatedBy)
}

func TestLoad_NoSubmissionYet(t *testing.T) {
	s := testServer(false)
	h := NewRegistrationHandler(s, &fakeRegistrationService{})

	e := newEcho(s, "user_1")
	e.GET("/register", h.Load)

	rec := get(e, "/register")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"existingSubmission":null`)
}

func TestSubmit_RedirectsToConfirmed(t *testing.T) {
	s := testServer(false)
	svc := &fakeRegistrationService{}
	h := NewRegistrationHandler(s, svc)

	e := newEcho(s, "user_1")
	e.POST("/register", h.SubmitRoute())

	rec := postForm(e, "/register", validValues())
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, ConfirmedPath, rec.Header().Get("Location"))

	require.Len(t, svc.submitted, 1)
	got := svc.submitted[0]
	assert.Equal(t, "ada@example.com", got.ContactEmail)
	assert.True(t, bool(got.IsAttendingInPerson))
	assert.False(t, bool(got.CommunicationMLH))
	assert.Equal(t, 0, svc.invalid)
}

func TestSubmit_InvalidFormEchoesValues(t *testing.T) {
	s := testServer(false)
	svc := &fakeRegistrationService{}
	h := NewRegistrationHandler(s, svc)

	e := newEcho(s, "user_1")
	e.POST("/register", h.SubmitRoute())

	values := validValues()
	values.Set("contactEmail", "not-an-email")
	values.Del("codeOfConductMLH")

	rec := postForm(e, "/register", values)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Message string            `json:"message"`
		Errors  []errs.FieldError `json:"errors"`
		Form    model.FormState   `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	fields := map[string]string{}
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Error
	}
	assert.Contains(t, fields, "contactEmail")
	assert.Contains(t, fields, "codeOfConductMLH")

	assert.False(t, body.Form.Valid)
	assert.Equal(t, "not-an-email", body.Form.Data.ContactEmail)
	assert.Equal(t, "Ada", body.Form.Data.NameFirst)
	assert.Len(t, body.Form.Errors, len(body.Errors))

	assert.Empty(t, svc.submitted)
	assert.Equal(t, 1, svc.invalid)
}

func TestSubmit_ValidationRunsBeforeSessionCheck(t *testing.T) {
	s := testServer(false)
	h := NewRegistrationHandler(s, &fakeRegistrationService{})

	e := newEcho(s, "")
	e.POST("/register", h.SubmitRoute())

	values := validValues()
	values.Del("nameFirst")

	rec := postForm(e, "/register", values)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_AnonymousIsUnauthorized(t *testing.T) {
	s := testServer(true)
	svc := &fakeRegistrationService{}
	h := NewRegistrationHandler(s, svc)

	e := newEcho(s, "")
	e.POST("/register", h.SubmitRoute())

	rec := postForm(e, "/register", validValues())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Message string          `json:"message"`
		Form    model.FormState `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, MsgLoginRequired, body.Message)
	assert.True(t, body.Form.Valid)
	assert.Equal(t, "Ada", body.Form.Data.NameFirst)
	assert.Empty(t, svc.submitted)
	assert.Equal(t, 0, svc.invalid)
}

func TestSubmit_PersistenceFailureIsGeneric(t *testing.T) {
	s := testServer(false)
	h := NewRegistrationHandler(s, &fakeRegistrationService{submitErr: errDriver})

	e := newEcho(s, "user_1")
	e.POST("/register", h.SubmitRoute())

	rec := postForm(e, "/register", validValues())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Contains(t, rec.Body.String(), MsgSubmissionFailed)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Contains(t, rec.Body.String(), `"nameFirst":"Ada"`)
}

func TestSubmit_NoFieldsLeakBetweenRequests(t *testing.T) {
	s := testServer(false)
	svc := &fakeRegistrationService{}
	h := NewRegistrationHandler(s, svc)

	e := newEcho(s, "user_1")
	e.POST("/register", h.SubmitRoute())

	first := validValues()
	first.Set("communicationMLH", "on")
	first.Set("specialRequest", "Quiet room")
	require.Equal(t, http.StatusFound, postForm(e, "/register", first).Code)

	require.Equal(t, http.StatusFound, postForm(e, "/register", validValues()).Code)

	require.Len(t, svc.submitted, 2)
	assert.True(t, bool(svc.submitted[0].CommunicationMLH))
	assert.False(t, bool(svc.submitted[1].CommunicationMLH))
	assert.Empty(t, svc.submitted[1].SpecialRequest)
}

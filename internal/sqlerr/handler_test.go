package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_PgErrors(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      *pgconn.PgError
		wantStatus int
		wantCode   string
		wantMsg    string
		wantField  string
	}{
		{
			name: "not null",
			pgErr: &pgconn.PgError{
				Code: "23502", Severity: "ERROR", TableName: "registration", ColumnName: "contact_email",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "REGISTRATION_REQUIRED",
			wantMsg:    "The Contact Email is required",
			wantField:  "contactEmail",
		},
		{
			name: "string too long",
			pgErr: &pgconn.PgError{
				Code: "22001", Severity: "ERROR", TableName: "registration", ColumnName: "why_attend",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "REGISTRATION_INVALID",
			wantMsg:    "The Why Attend value does not meet required conditions",
			wantField:  "whyAttend",
		},
		{
			name: "invalid datetime without column",
			pgErr: &pgconn.PgError{
				Code: "22007", Severity: "ERROR", TableName: "registration",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "REGISTRATION_INVALID",
			wantMsg:    "One or more values do not meet required conditions",
		},
		{
			name:       "unique violation is not a client error",
			pgErr:      &pgconn.PgError{Code: "23505", Severity: "ERROR", TableName: "registration"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    "Internal Server Error",
		},
		{
			name:       "connection failure",
			pgErr:      &pgconn.PgError{Code: "08006", Severity: "FATAL"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantMsg:    "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleError(fmt.Errorf("insert registration: %w", tt.pgErr))

			var httpErr *errs.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)

			if tt.wantField == "" {
				assert.Empty(t, httpErr.Errors)
				return
			}
			require.Len(t, httpErr.Errors, 1)
			assert.Equal(t, tt.wantField, httpErr.Errors[0].Field)
		})
	}
}

func TestHandleError_NoRows(t *testing.T) {
	err := HandleError(fmt.Errorf("table:registration: %w", pgx.ErrNoRows))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Registration not found", httpErr.Message)

	err = HandleError(pgx.ErrNoRows)
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassThroughAndUnknown(t *testing.T) {
	original := errs.NewUnauthorizedError("nope", false)
	assert.Same(t, original, HandleError(original))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(HandleError(errors.New("boom")), &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestErrCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "22001"}

	assert.Equal(t, StringDataTruncation, ErrCode(fmt.Errorf("wrapped: %w", pgErr)))
	assert.Equal(t, NotNullViolation, ErrCode(ConvertPgError(&pgconn.PgError{Code: "23502"})))
	assert.Equal(t, ConnectionFailure, ErrCode(&pgconn.PgError{Code: "08006"}))
	assert.Equal(t, Other, ErrCode(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
}

func TestFormField(t *testing.T) {
	assert.Equal(t, "zipCode", formField("zip_code"))
	assert.Equal(t, "isAttendingInPerson", formField("is_attending_in_person"))
	assert.Equal(t, "dob", formField("dob"))
	assert.Equal(t, "address1", formField("address1"))
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("SOMETHING"))
}

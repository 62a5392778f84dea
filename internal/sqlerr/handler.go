package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tablePrefix is how repositories name the table in a wrapped error:
//
//	fmt.Errorf("table:registration: %w", err)
const tablePrefix = "table:"

// ErrCode reports the Code of err. Both *Error and *pgconn.PgError are
// recognized anywhere in the chain; anything else is Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}

	return Other
}

// ConvertPgError converts a raw *pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:         MapCode(src.Code),
		Severity:     MapSeverity(src.Severity),
		DatabaseCode: src.Code,
		Message:      src.Message,
		TableName:    src.TableName,
		ColumnName:   src.ColumnName,
		driverErr:    src,
	}
}

// humanize turns a snake_case identifier into Title Case.
//
//	"name_first" -> "Name First"
func humanize(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// formField converts a column back to the camel-case input name the
// client renders errors against.
//
//	"zip_code" -> "zipCode"
func formField(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// errorCode builds "<TABLE>_<ACTION>", e.g. REGISTRATION_REQUIRED.
func errorCode(table, action string) string {
	if table == "" {
		table = "record"
	}
	return strings.ToUpper(table) + "_" + action
}

// columnError is the 400 for a value the column rejected.
func columnError(sqlErr *Error, action, message, fieldMsg string) *errs.HTTPError {
	code := errorCode(sqlErr.TableName, action)

	var fieldErrors []errs.FieldError
	if sqlErr.ColumnName != "" {
		fieldErrors = []errs.FieldError{{Field: formField(sqlErr.ColumnName), Error: fieldMsg}}
	}

	return errs.NewBadRequestError(message, true, &code, fieldErrors, nil)
}

// HandleError converts a database error into an application error:
//
//   - *errs.HTTPError: unchanged
//   - not-null, truncation, bad text or datetime input: 400 naming the field
//   - ErrNoRows: 404
//   - anything else: a generic 500, with no driver text
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		column := humanize(sqlErr.ColumnName)

		switch sqlErr.Code {
		case NotNullViolation:
			if column == "" {
				column = "field"
			}
			return columnError(sqlErr, "REQUIRED", fmt.Sprintf("The %s is required", column), "is required")

		case StringDataTruncation, InvalidTextRep, InvalidDatetime:
			msg := "One or more values do not meet required conditions"
			if column != "" {
				msg = fmt.Sprintf("The %s value does not meet required conditions", column)
			}
			return columnError(sqlErr, "INVALID", msg, "has an invalid value")

		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		msg := err.Error()
		if i := strings.Index(msg, tablePrefix); i >= 0 {
			table, _, _ := strings.Cut(msg[i+len(tablePrefix):], ":")
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", humanize(table)), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

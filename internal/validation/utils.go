package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/deppfellow/hackreg/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads that know how to validate themselves.
//
// Typical pattern:
//   - define a request struct with validator tags (`validate:"required,email"`)
//   - implement Validate() error that runs validator.Struct(req)
//   - return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// FormEchoer is implemented by payloads that are sent back to the client
// together with their field errors when validation fails.
type FormEchoer interface {
	EchoForm(fieldErrors []errs.FieldError) any
}

// CustomValidationError is a single issue that cannot be expressed with
// validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// payload must be a pointer. On failure the returned *errs.HTTPError is a
// 400 carrying field errors and, for a FormEchoer, the submitted form.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return withForm(errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil), payload, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return withForm(errs.NewBadRequestError(msg, true, nil, fieldErrors, nil), payload, fieldErrors)
	}

	return nil
}

func withForm(httpErr *errs.HTTPError, payload Validatable, fieldErrors []errs.FieldError) *errs.HTTPError {
	if fe, ok := payload.(FormEchoer); ok {
		return httpErr.WithForm(fe.EchoForm(fieldErrors))
	}
	return httpErr
}

// bindErrorMessage pulls the client-facing part out of an echo bind error.
func bindErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request body"
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

// FieldErrors converts a Validate() error into client field errors.
// It returns nil for a nil error.
func FieldErrors(err error) []errs.FieldError {
	if err == nil {
		return nil
	}
	_, fieldErrors := extractValidationError(err)
	return fieldErrors
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, ce := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: ce.Field,
				Error: ce.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		// Field() is already the json name when the validator registers a
		// tag name func.
		field := fe.Field()

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: fieldMessage(fe),
		})
	}

	return "Validation failed", fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "required_if":
		return "is required for the selected option"

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())

	case "numeric":
		return "must contain only digits"

	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "e164":
		return "must be a valid phone number with country code"

	case "url":
		return "must be a valid URL"

	case "uuid":
		return "must be a valid UUID"

	case "dive":
		return "some items are invalid"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
}

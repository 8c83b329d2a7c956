package apperror

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jellydator/validation"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error             // actual error
	Message string            // Human-readable error message
	Field   string            // Optional: field causing the error
	Fields  map[string]string // Optional: one message per invalid field (forms, JSON bodies)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// InvalidFields reports several field errors at once. Message is the first
// field's message in alphabetical order so the output is stable.
func InvalidFields(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	appErr := &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
	if len(names) > 0 {
		appErr.Field = names[0]
		appErr.Message = fmt.Sprintf("%s: %s", names[0], fields[names[0]])
	}
	return appErr
}

// FromValidation converts the error returned by validation.ValidateStruct into
// an *AppError. validation.Errors become per-field messages; any other error
// (a rule that failed internally) is returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for name, fieldErr := range verrs {
		if fieldErr == nil {
			continue
		}
		fields[name] = fieldErr.Error()
	}
	return InvalidFields(fields)
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Package payload defines the JSON request bodies accepted by the REST
// resource under /api, and decodes and validates them in one step.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jellydator/validation"

	"github.com/sakif/enrollment/internal/apperror"
)

// maxBodyBytes bounds request bodies; user records are tiny.
const maxBodyBytes = 1 << 20

// DecodeAndValidate reads r's JSON body into object, rejecting unknown
// fields and trailing data, then runs object's Validate method if it has one.
// Every failure is an *apperror.AppError of kind ErrValidation.
func DecodeAndValidate(r *http.Request, object any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(object); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return apperror.ValidationFailed("body", "request body must contain a single JSON object")
	}

	v, ok := object.(validation.Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return apperror.FromValidation(err)
	}
	return nil
}

// decodeError turns encoding/json failures into messages a client can act on.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.Is(err, io.EOF):
		return apperror.ValidationFailed("body", "request body is empty")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return apperror.ValidationFailed("body", "request body must be a JSON object")
		}
		return apperror.ValidationFailed(typeErr.Field,
			fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr):
		return apperror.ValidationFailed("body",
			fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	default:
		// DisallowUnknownFields reports `json: unknown field "x"`.
		return apperror.ValidationFailed("body", err.Error())
	}
}

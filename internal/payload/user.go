package payload

import (
	"errors"

	"github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	"github.com/sakif/enrollment/internal/auth"
)

// CreateUserRequest is the body of POST /api. Every field is required.
type CreateUserRequest struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (c CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.FirstName, validation.Required, validation.RuneLength(1, 55)),
		validation.Field(&c.LastName, validation.Required, validation.RuneLength(1, 55)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(8, auth.MaxPasswordBytes)),
	)
}

// UpdateUserRequest is the body of PUT /api/{id}. Fields are optional; the
// ones present are merged into the stored record. user_id is not accepted:
// a record's id never changes.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

var errEmptyUpdate = errors.New("at least one of first_name, last_name, email, password is required")

func (u UpdateUserRequest) Validate() error {
	if u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Password == nil {
		return validation.Errors{"body": errEmptyUpdate}
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.FirstName, validation.NilOrNotEmpty, validation.RuneLength(1, 55)),
		validation.Field(&u.LastName, validation.NilOrNotEmpty, validation.RuneLength(1, 55)),
		validation.Field(&u.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&u.Password, validation.NilOrNotEmpty, validation.Length(8, auth.MaxPasswordBytes)),
	)
}

// Package form holds the registration and login forms: their fields, as
// posted by the HTML pages, and the rules each field must satisfy.
//
// Validation returns one message per failing field keyed by the input name,
// so the page can show it right under that input. Rules that need the store
// (email uniqueness) live in the account service.
package form

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// Field limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
	MinNameLength     = 2
	MaxNameLength     = 55
)

var (
	passwordRules = []validation.Rule{
		validation.Required.Error("Password is required"),
		validation.RuneLength(MinPasswordLength, MaxPasswordLength).
			Error("Password must be between 8 and 20 characters"),
	}
	emailRules = []validation.Rule{
		validation.Required.Error("Email is required"),
		is.Email.Error("Invalid email address"),
	}
)

// RegisterForm is the body of POST /register.
type RegisterForm struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// ParseRegister reads a RegisterForm from a submitted request.
func ParseRegister(r *http.Request) (RegisterForm, error) {
	if err := r.ParseForm(); err != nil {
		return RegisterForm{}, err
	}
	return RegisterForm{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		FirstName:       strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:        strings.TrimSpace(r.PostFormValue("last_name")),
	}, nil
}

// Validate checks presence, email shape, lengths and that both passwords match.
func (f RegisterForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, emailRules...),
		validation.Field(&f.Password, passwordRules...),
		validation.Field(&f.ConfirmPassword,
			validation.Required.Error("Please confirm the password"),
			validation.RuneLength(MinPasswordLength, MaxPasswordLength).
				Error("Password must be between 8 and 20 characters"),
			validation.By(equalTo(f.Password, "Passwords must match")),
		),
		validation.Field(&f.FirstName,
			validation.Required.Error("First name is required"),
			validation.RuneLength(MinNameLength, MaxNameLength).
				Error("First name must be between 2 and 55 characters"),
		),
		validation.Field(&f.LastName,
			validation.Required.Error("Last name is required"),
			validation.RuneLength(MinNameLength, MaxNameLength).
				Error("Last name must be between 2 and 55 characters"),
		),
	)
}

// LoginForm is the body of POST /login.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParseLogin reads a LoginForm from a submitted request.
func ParseLogin(r *http.Request) (LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return LoginForm{}, err
	}
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}, nil
}

func (f LoginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, emailRules...),
		validation.Field(&f.Password, passwordRules...),
	)
}

func equalTo(want, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(message)
		}
		return nil
	}
}

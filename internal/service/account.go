// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, renders pages / writes JSON
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the document store
//
// Services accept plain values and return model types or apperror kinds.
// They never see an *http.Request, so every rule here is testable with
// plain function calls against a fake or in-memory repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/auth"
	"github.com/sakif/enrollment/internal/form"
	"github.com/sakif/enrollment/internal/model"
	"github.com/sakif/enrollment/internal/payload"
	"github.com/sakif/enrollment/internal/repository"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email and
// for a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

// MsgEmailTaken is the registration error shown under the email field.
const MsgEmailTaken = "Email already registered"

// maxIDAttempts bounds retries when a reserved user id turns out to be taken.
const maxIDAttempts = 3

// AccountService handles registration, login and the user records behind
// the /user page and the REST resource.
type AccountService struct {
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	passwords   *auth.PasswordService
	logger      *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:       users,
		enrollments: enrollments,
		passwords:   passwords,
		logger:      logger,
	}
}

// Register validates f and creates the account.
//
// The email is lowercased and the names title-cased before storing. A taken
// email is reported as a field error on "email"; the lookup gives the
// friendly message and the store's unique index catches the race between
// lookup and insert.
func (s *AccountService) Register(ctx context.Context, f form.RegisterForm) (*model.User, error) {
	if err := f.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	email := normalizeEmail(f.Email)

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.ValidationFailed("email", MsgEmailTaken)
	}

	hash, err := s.passwords.Hash(f.Password)
	if err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	user := &model.User{
		FirstName:    titleCase(f.FirstName),
		LastName:     titleCase(f.LastName),
		Email:        email,
		PasswordHash: hash,
	}

	for attempt := 1; ; attempt++ {
		id, err := s.users.NextUserID(ctx)
		if err != nil {
			return nil, fmt.Errorf("service/account: %w", err)
		}
		user.UserID = id

		err = s.users.CreateUser(ctx, user)
		if err == nil {
			break
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("service/account: registering %s: %w", email, err)
		}

		// Either the email was registered concurrently or the id was
		// taken by a REST client; only the latter is worth retrying.
		if taken, lookupErr := s.emailTaken(ctx, email); lookupErr == nil && taken {
			return nil, apperror.ValidationFailed("email", MsgEmailTaken)
		}
		if attempt == maxIDAttempts {
			return nil, fmt.Errorf("service/account: no free user id after %d attempts: %w", attempt, err)
		}
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.UserID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Authenticate returns the user whose email and password match.
//
// A malformed form is an apperror validation error with one message per
// field. An unknown email and a wrong password are both
// ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, f form.LoginForm) (*model.User, error) {
	if err := f.Validate(); err != nil {
		return nil, apperror.FromValidation(err)
	}

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(f.Email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service/account: looking up login: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, f.Password); err != nil {
		if !errors.Is(err, auth.ErrMismatch) {
			s.logger.Error("stored password hash unusable",
				slog.Int64("userID", user.UserID),
				slog.String("error", err.Error()),
			)
		}
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.UserID))
	return user, nil
}

// ListUsers returns every account, ordered by user id.
func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}
	return user, nil
}

// CreateUser stores a user supplied by an API client with a client-chosen
// id. The request has already passed its schema validation.
func (s *AccountService) CreateUser(ctx context.Context, req payload.CreateUserRequest) (*model.User, error) {
	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		UserID:       req.UserID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	s.logger.Info("user created via api", slog.Int64("userID", user.UserID))
	return user, nil
}

// UpdateUser merges the fields present in req into the stored user.
func (s *AccountService) UpdateUser(ctx context.Context, userID int64, req payload.UpdateUserRequest) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Password != nil {
		hash, err := s.passwords.Hash(*req.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	s.logger.Info("user updated via api", slog.Int64("userID", userID))
	return user, nil
}

// DeleteUser removes the user and their enrollments, then returns the
// remaining users. Enrollments go first so a failed call can be repeated
// without leaving enrollments behind for a user that no longer exists.
func (s *AccountService) DeleteUser(ctx context.Context, userID int64) ([]model.User, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}
	if err := s.enrollments.DeleteEnrollmentsByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("service/account: %w", err)
	}

	s.logger.Info("user deleted via api", slog.String("userID", strconv.FormatInt(userID, 10)))
	return s.ListUsers(ctx)
}

func (s *AccountService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperror.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("service/account: checking email: %w", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// titleCase capitalizes every run of letters and lower-cases the rest of
// it. Any non-letter starts a new run, so "o'brien" → "O'Brien" and
// "mary-jane" → "Mary-Jane", not just "ana maría" → "Ana María".
func titleCase(s string) string {
	s = strings.TrimSpace(s)
	caser := cases.Title(language.Und)

	var b strings.Builder
	start, inWord := 0, false
	flush := func(end int) {
		if inWord {
			b.WriteString(caser.String(s[start:end]))
		} else {
			b.WriteString(s[start:end])
		}
	}
	for i, r := range s {
		if letter := unicode.IsLetter(r); letter != inWord {
			flush(i)
			start, inWord = i, letter
		}
	}
	flush(len(s))
	return b.String()
}

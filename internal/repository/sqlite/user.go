package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

const userColumns = `user_id, first_name, last_name, email, password`

// NextUserID bumps the user_id counter and returns the new value.
//
// The single UPSERT ... RETURNING statement seeds the counter from the
// highest existing user_id on first use and never moves it backwards, so ids
// created through the REST resource are skipped as well. SQLite serializes
// writers, so two concurrent registrations cannot receive the same id.
func (db *DB) NextUserID(ctx context.Context) (int64, error) {
	var next int64
	err := db.conn.GetContext(ctx, &next, `
		INSERT INTO counters (name, seq)
		VALUES ('user_id', (SELECT COALESCE(MAX(user_id), 0) FROM users) + 1)
		ON CONFLICT (name) DO UPDATE
		SET seq = MAX(counters.seq, (SELECT COALESCE(MAX(user_id), 0) FROM users)) + 1
		RETURNING seq`)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reserving user id: %w", err)
	}
	return next, nil
}

// CreateUser inserts a user. A duplicate user_id or email is reported as
// apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:user_id, :first_name, :last_name, :email, :password)`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", strconv.FormatInt(user.UserID, 10))
		}
		return fmt.Errorf("sqlite: creating user %d: %w", user.UserID, err)
	}
	return nil
}

// GetUserByID retrieves a user by their application-assigned id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(userID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", userID, err)
	}
	return &u, nil
}

// GetUserByEmail looks a user up by exact email. Callers lowercase first.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}

// ListUsers returns every user ordered by user_id.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := db.conn.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	return users, nil
}

// UpdateUser overwrites the mutable fields of the user with user.UserID.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	result, err := db.conn.NamedExecContext(ctx,
		`UPDATE users
		 SET first_name = :first_name, last_name = :last_name, email = :email, password = :password
		 WHERE user_id = :user_id`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", strconv.FormatInt(user.UserID, 10))
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.UserID, 10))
	}
	return nil
}

// DeleteUser removes a user. Enrollments are removed separately by the
// service (see DeleteEnrollmentsByUser).
func (db *DB) DeleteUser(ctx context.Context, userID int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(userID, 10))
	}
	return nil
}

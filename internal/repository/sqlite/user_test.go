package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser is a test helper that creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, userID int64, email string) *model.User {
	t.Helper()
	user := &model.User{
		UserID:       userID,
		FirstName:    "Ana",
		LastName:     "Lopez",
		Email:        email,
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1, "a@x.com")

	found, err := db.GetUserByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", found.Email, "a@x.com")
	}
	if found.PasswordHash == "" {
		t.Error("PasswordHash was not stored")
	}
}

func TestCreateUser_DuplicateUserID(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1, "a@x.com")

	err := db.CreateUser(context.Background(), &model.User{UserID: 1, Email: "b@x.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1, "a@x.com")

	err := db.CreateUser(context.Background(), &model.User{UserID: 2, Email: "a@x.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}

	users, _ := db.ListUsers(context.Background())
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 3, "c@x.com")

	found, err := db.GetUserByEmail(context.Background(), "c@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.UserID != 3 {
		t.Errorf("UserID = %d, want 3", found.UserID)
	}

	_, err = db.GetUserByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestListUsers_OrderedByID(t *testing.T) {
	db := newTestDB(t)

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("ListUsers() on empty db = %v, want empty non-nil slice", users)
	}

	createTestUser(t, db, 5, "e@x.com")
	createTestUser(t, db, 2, "b@x.com")

	users, err = db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0].UserID != 2 || users[1].UserID != 5 {
		t.Errorf("ListUsers() = %+v, want ids [2 5]", users)
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUpdateUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, 1, "a@x.com")

	user.FirstName = "Anita"
	if err := db.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, _ := db.GetUserByID(context.Background(), 1)
	if found.FirstName != "Anita" {
		t.Errorf("FirstName = %q, want %q", found.FirstName, "Anita")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateUser(context.Background(), &model.User{UserID: 9, Email: "z@x.com"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, 1, "a@x.com")

	if err := db.DeleteUser(context.Background(), 1); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := db.GetUserByID(context.Background(), 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteUser(context.Background(), 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// ID ASSIGNMENT TESTS
// =========================================================================

func TestNextUserID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.NextUserID(ctx)
	if err != nil {
		t.Fatalf("NextUserID() error = %v", err)
	}
	if first != 1 {
		t.Errorf("first NextUserID() = %d, want 1", first)
	}

	second, _ := db.NextUserID(ctx)
	if second != 2 {
		t.Errorf("second NextUserID() = %d, want 2", second)
	}
}

func TestNextUserID_SkipsExplicitIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// A user created through the REST resource with a hand-picked id.
	createTestUser(t, db, 40, "api@x.com")

	next, err := db.NextUserID(ctx)
	if err != nil {
		t.Fatalf("NextUserID() error = %v", err)
	}
	if next != 41 {
		t.Errorf("NextUserID() = %d, want 41", next)
	}
}

func TestNextUserID_DoesNotReuseDeletedIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, _ := db.NextUserID(ctx)
	createTestUser(t, db, id, "a@x.com")
	if err := db.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	next, _ := db.NextUserID(ctx)
	if next == id {
		t.Errorf("NextUserID() reused deleted id %d", id)
	}
}

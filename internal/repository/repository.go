// Package repository declares the storage interfaces the services depend on.
//
// Two implementations exist: repository/mongo (the document database used in
// production) and repository/sqlite (embedded, used for local runs and tests).
// Both report a missing record as apperror.ErrNotFound and a unique-index
// violation as apperror.ErrConflict, so services never inspect driver errors.
package repository

import (
	"context"

	"github.com/sakif/enrollment/internal/model"
)

type UserRepository interface {
	// NextUserID reserves the next application-assigned user id.
	NextUserID(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, userID int64) error
}

type CourseRepository interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, courseID string) (*model.Course, error)
	ListCoursesByID(ctx context.Context, courseIDs []string) ([]model.Course, error)
	UpsertCourse(ctx context.Context, course *model.Course) error
}

type EnrollmentRepository interface {
	EnrollmentExists(ctx context.Context, userID int64, courseID string) (bool, error)
	CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error
	ListEnrollmentsByUser(ctx context.Context, userID int64) ([]model.Enrollment, error)
	DeleteEnrollmentsByUser(ctx context.Context, userID int64) error
}

// Store is everything a backend provides. The server owns it and closes it
// on shutdown.
type Store interface {
	UserRepository
	CourseRepository
	EnrollmentRepository
	Close() error
}

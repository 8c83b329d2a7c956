package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory repository.Store. It enforces the same unique
// constraints as the real stores (user_id, email, enrollment pair) so the
// services' conflict handling can be exercised without a database.
//
// The *Err fields simulate storage failures for one operation.

type fakeStore struct {
	users       map[int64]model.User
	courses     map[string]model.Course
	enrollments []model.Enrollment
	counter     int64

	// nextIDs, when non-empty, is consumed by NextUserID before the counter.
	nextIDs []int64

	createUserErr        error
	listUsersErr         error
	deleteEnrollmentsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]model.User),
		courses: make(map[string]model.Course),
	}
}

func (f *fakeStore) NextUserID(_ context.Context) (int64, error) {
	if len(f.nextIDs) > 0 {
		id := f.nextIDs[0]
		f.nextIDs = f.nextIDs[1:]
		return id, nil
	}
	f.counter++
	return f.counter, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if _, ok := f.users[user.UserID]; ok {
		return apperror.Conflict("user", strconv.FormatInt(user.UserID, 10))
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.users[user.UserID] = *user
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(userID, 10))
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	if f.listUsersErr != nil {
		return nil, f.listUsersErr
	}
	users := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.UserID]; !ok {
		return apperror.NotFound("user", strconv.FormatInt(user.UserID, 10))
	}
	for id, u := range f.users {
		if id != user.UserID && u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.users[user.UserID] = *user
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, userID int64) error {
	if _, ok := f.users[userID]; !ok {
		return apperror.NotFound("user", strconv.FormatInt(userID, 10))
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeStore) ListCourses(_ context.Context) ([]model.Course, error) {
	courses := make([]model.Course, 0, len(f.courses))
	for _, c := range f.courses {
		courses = append(courses, c)
	}
	return courses, nil
}

func (f *fakeStore) GetCourse(_ context.Context, courseID string) (*model.Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return nil, apperror.NotFound("course", courseID)
	}
	return &c, nil
}

func (f *fakeStore) ListCoursesByID(_ context.Context, courseIDs []string) ([]model.Course, error) {
	var courses []model.Course
	for _, id := range courseIDs {
		if c, ok := f.courses[id]; ok {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

func (f *fakeStore) UpsertCourse(_ context.Context, course *model.Course) error {
	f.courses[course.CourseID] = *course
	return nil
}

func (f *fakeStore) EnrollmentExists(_ context.Context, userID int64, courseID string) (bool, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	exists, _ := f.EnrollmentExists(ctx, enrollment.UserID, enrollment.CourseID)
	if exists {
		return apperror.Conflict("enrollment", fmt.Sprintf("%d/%s", enrollment.UserID, enrollment.CourseID))
	}
	f.enrollments = append(f.enrollments, *enrollment)
	return nil
}

func (f *fakeStore) ListEnrollmentsByUser(_ context.Context, userID int64) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range f.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteEnrollmentsByUser(_ context.Context, userID int64) error {
	if f.deleteEnrollmentsErr != nil {
		return f.deleteEnrollmentsErr
	}
	kept := f.enrollments[:0]
	for _, e := range f.enrollments {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	f.enrollments = kept
	return nil
}

func (f *fakeStore) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

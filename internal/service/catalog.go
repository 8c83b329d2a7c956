package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
	"github.com/sakif/enrollment/internal/repository"
)

// ErrAlreadyEnrolled is returned by Enroll when the (user, course) pair
// already exists. Nothing is written in that case.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// CatalogService lists courses and manages enrollments.
type CatalogService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	logger      *slog.Logger
}

func NewCatalogService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
	}
}

// ListCourses returns the whole catalog ordered by course id.
func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: %w", err)
	}
	sortCourses(courses)
	return courses, nil
}

// Enroll records that userID takes courseID.
//
// An existing pair yields ErrAlreadyEnrolled. The existence check only
// decides which message the user sees; the store's unique index is what
// actually prevents a second record, and its conflict maps to the same error.
func (s *CatalogService) Enroll(ctx context.Context, userID int64, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return apperror.ValidationFailed("course_id", "course_id is required")
	}

	exists, err := s.enrollments.EnrollmentExists(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("service/catalog: %w", err)
	}
	if exists {
		return ErrAlreadyEnrolled
	}

	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return fmt.Errorf("service/catalog: %w", err)
	}

	err = s.enrollments.CreateEnrollment(ctx, &model.Enrollment{UserID: userID, CourseID: courseID})
	if errors.Is(err, apperror.ErrConflict) {
		return ErrAlreadyEnrolled
	}
	if err != nil {
		return fmt.Errorf("service/catalog: %w", err)
	}

	s.logger.Info("enrollment created",
		slog.Int64("userID", userID),
		slog.String("courseID", courseID),
	)
	return nil
}

// EnrolledCourses joins user → enrollments → courses for one user and
// returns the rows sorted ascending by course id. Enrollments whose course
// no longer exists are left out.
func (s *CatalogService) EnrolledCourses(ctx context.Context, userID int64) ([]model.EnrolledCourse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: %w", err)
	}

	enrollments, err := s.enrollments.ListEnrollmentsByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: %w", err)
	}
	if len(enrollments) == 0 {
		return []model.EnrolledCourse{}, nil
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}

	courses, err := s.courses.ListCoursesByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: %w", err)
	}
	byID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		byID[c.CourseID] = c
	}

	rows := make([]model.EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		course, ok := byID[e.CourseID]
		if !ok {
			continue
		}
		rows = append(rows, model.EnrolledCourse{UserID: user.UserID, Course: course})
	}

	slices.SortFunc(rows, func(a, b model.EnrolledCourse) int {
		return compareCourseIDs(a.CourseID, b.CourseID)
	})
	return rows, nil
}

// SeedCourses upserts every course in the list. It is used by cmd/seed.
func (s *CatalogService) SeedCourses(ctx context.Context, courses []model.Course) (int, error) {
	for i := range courses {
		c := &courses[i]
		c.CourseID = strings.TrimSpace(c.CourseID)
		if c.CourseID == "" {
			return i, apperror.ValidationFailed("course_id", fmt.Sprintf("course #%d has no course_id", i+1))
		}
		if err := s.courses.UpsertCourse(ctx, c); err != nil {
			return i, fmt.Errorf("service/catalog: seeding %s: %w", c.CourseID, err)
		}
	}

	s.logger.Info("catalog seeded", slog.Int("courses", len(courses)))
	return len(courses), nil
}

func sortCourses(courses []model.Course) {
	slices.SortFunc(courses, func(a, b model.Course) int {
		return compareCourseIDs(a.CourseID, b.CourseID)
	})
}

// compareCourseIDs puts integer ids first in numeric order ("9" before
// "10"), then every other id in string order.
func compareCourseIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if c := cmp.Compare(ai, bi); c != 0 {
			return c
		}
		// "7" and "07" parse alike.
		return strings.Compare(a, b)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

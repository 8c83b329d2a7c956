package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

func (db *DB) EnrollmentExists(ctx context.Context, userID int64, courseID string) (bool, error) {
	var exists bool
	err := db.conn.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = ? AND course_id = ?)`,
		userID, courseID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking enrollment %d/%s: %w", userID, courseID, err)
	}
	return exists, nil
}

// CreateEnrollment inserts the join record. The composite primary key turns
// a concurrent duplicate into apperror.ErrConflict.
func (db *DB) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO enrollments (user_id, course_id) VALUES (:user_id, :course_id)`,
		enrollment,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("enrollment",
				fmt.Sprintf("%d/%s", enrollment.UserID, enrollment.CourseID))
		}
		return fmt.Errorf("sqlite: creating enrollment %d/%s: %w",
			enrollment.UserID, enrollment.CourseID, err)
	}
	return nil
}

func (db *DB) ListEnrollmentsByUser(ctx context.Context, userID int64) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	err := db.conn.SelectContext(ctx, &enrollments,
		`SELECT user_id, course_id FROM enrollments WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing enrollments for user %d: %w", userID, err)
	}
	return enrollments, nil
}

func (db *DB) DeleteEnrollmentsByUser(ctx context.Context, userID int64) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM enrollments WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: deleting enrollments for user %d: %w", userID, err)
	}
	return nil
}

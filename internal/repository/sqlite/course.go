package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

const courseColumns = `course_id, title, description, credits, term`

// ListCourses returns the whole catalog ordered by course_id.
func (db *DB) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	err := db.conn.SelectContext(ctx, &courses,
		`SELECT `+courseColumns+` FROM courses ORDER BY course_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing courses: %w", err)
	}
	return courses, nil
}

func (db *DB) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var c model.Course
	err := db.conn.GetContext(ctx, &c,
		`SELECT `+courseColumns+` FROM courses WHERE course_id = ?`, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("course", courseID)
		}
		return nil, fmt.Errorf("sqlite: getting course %s: %w", courseID, err)
	}
	return &c, nil
}

// ListCoursesByID returns the courses whose ids are in courseIDs. Unknown ids
// are skipped; order is unspecified.
func (db *DB) ListCoursesByID(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	courses := []model.Course{}
	if len(courseIDs) == 0 {
		return courses, nil
	}

	// sqlx.In expands the single ? into one placeholder per id.
	query, args, err := sqlx.In(
		`SELECT `+courseColumns+` FROM courses WHERE course_id IN (?)`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlite: building course lookup: %w", err)
	}

	if err := db.conn.SelectContext(ctx, &courses, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing courses by id: %w", err)
	}
	return courses, nil
}

// UpsertCourse inserts a course or replaces the one with the same course_id.
func (db *DB) UpsertCourse(ctx context.Context, course *model.Course) error {
	_, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO courses (`+courseColumns+`)
		 VALUES (:course_id, :title, :description, :credits, :term)
		 ON CONFLICT (course_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			credits = excluded.credits,
			term = excluded.term`,
		course,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting course %s: %w", course.CourseID, err)
	}
	return nil
}

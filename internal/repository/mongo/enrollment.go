package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

func (db *DB) EnrollmentExists(ctx context.Context, userID int64, courseID string) (bool, error) {
	n, err := db.enrollments.CountDocuments(ctx,
		bson.M{"user_id": userID, "course_id": courseID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("mongo: checking enrollment %d/%s: %w", userID, courseID, err)
	}
	return n > 0, nil
}

func (db *DB) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	if _, err := db.enrollments.InsertOne(ctx, enrollment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("enrollment",
				fmt.Sprintf("%d/%s", enrollment.UserID, enrollment.CourseID))
		}
		return fmt.Errorf("mongo: creating enrollment %d/%s: %w",
			enrollment.UserID, enrollment.CourseID, err)
	}
	return nil
}

func (db *DB) ListEnrollmentsByUser(ctx context.Context, userID int64) ([]model.Enrollment, error) {
	cursor, err := db.enrollments.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("mongo: listing enrollments for user %d: %w", userID, err)
	}

	enrollments := []model.Enrollment{}
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("mongo: decoding enrollments: %w", err)
	}
	return enrollments, nil
}

func (db *DB) DeleteEnrollmentsByUser(ctx context.Context, userID int64) error {
	if _, err := db.enrollments.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("mongo: deleting enrollments for user %d: %w", userID, err)
	}
	return nil
}

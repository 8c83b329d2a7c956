package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

func (db *DB) ListCourses(ctx context.Context) ([]model.Course, error) {
	return db.findCourses(ctx, bson.D{})
}

func (db *DB) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var c model.Course
	if err := db.courses.FindOne(ctx, bson.M{"course_id": courseID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("course", courseID)
		}
		return nil, fmt.Errorf("mongo: getting course %s: %w", courseID, err)
	}
	return &c, nil
}

func (db *DB) ListCoursesByID(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	if len(courseIDs) == 0 {
		return []model.Course{}, nil
	}
	return db.findCourses(ctx, bson.M{"course_id": bson.M{"$in": courseIDs}})
}

func (db *DB) findCourses(ctx context.Context, filter any) ([]model.Course, error) {
	cursor, err := db.courses.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "course_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: listing courses: %w", err)
	}

	courses := []model.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("mongo: decoding courses: %w", err)
	}
	return courses, nil
}

// UpsertCourse replaces the document with the same course_id, inserting it
// when absent.
func (db *DB) UpsertCourse(ctx context.Context, course *model.Course) error {
	_, err := db.courses.ReplaceOne(ctx,
		bson.M{"course_id": course.CourseID},
		course,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: upserting course %s: %w", course.CourseID, err)
	}
	return nil
}

// Package mongo implements the repository interfaces on MongoDB, the
// document database the application runs against in production.
//
// Collections mirror the data model one-to-one:
//
//	user        {user_id, first_name, last_name, email, password}
//	course      {course_id, title, description, credits, term}
//	enrollment  {user_id, course_id}
//	counters    {_id: "user_id", seq}
//
// Records are keyed by application-assigned ids. Unique indexes on those ids,
// on user.email and on enrollment (user_id, course_id) make the database the
// final word on duplicates; a violation surfaces as apperror.ErrConflict.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/sakif/enrollment/internal/repository"
)

const (
	usersCollection       = "user"
	coursesCollection     = "course"
	enrollmentsCollection = "enrollment"
	countersCollection    = "counters"

	userIDCounter = "user_id"
)

var _ repository.Store = (*DB)(nil)

// DB holds the client and one handle per collection.
type DB struct {
	client      *mongo.Client
	users       *mongo.Collection
	courses     *mongo.Collection
	enrollments *mongo.Collection
	counters    *mongo.Collection
	logger      *slog.Logger

	// raiseCounter is raiseUserCounter; tests swap it to simulate failures.
	raiseCounter func(ctx context.Context, atLeast int64) error
}

// New connects to uri, verifies the connection and ensures the indexes.
// timeout bounds the whole startup sequence.
func New(ctx context.Context, uri, database string, timeout time.Duration, logger *slog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	mdb := client.Database(database)
	db := &DB{
		client:      client,
		users:       mdb.Collection(usersCollection),
		courses:     mdb.Collection(coursesCollection),
		enrollments: mdb.Collection(enrollmentsCollection),
		counters:    mdb.Collection(countersCollection),
		logger:      logger,
	}
	db.raiseCounter = db.raiseUserCounter

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ensuring indexes: %w", err)
	}

	if err := db.seedUserCounter(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: seeding user counter: %w", err)
	}

	return db, nil
}

// Close disconnects the client.
func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	if _, err := db.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique(bson.D{{Key: "user_id", Value: 1}}),
		unique(bson.D{{Key: "email", Value: 1}}),
	}); err != nil {
		return fmt.Errorf("users: %w", err)
	}

	if _, err := db.courses.Indexes().CreateOne(ctx,
		unique(bson.D{{Key: "course_id", Value: 1}}),
	); err != nil {
		return fmt.Errorf("courses: %w", err)
	}

	if _, err := db.enrollments.Indexes().CreateOne(ctx,
		unique(bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}}),
	); err != nil {
		return fmt.Errorf("enrollments: %w", err)
	}

	return nil
}

// seedUserCounter makes sure the counter is at least the highest user_id
// already stored, so a database populated before the counter existed does
// not hand out taken ids.
func (db *DB) seedUserCounter(ctx context.Context) error {
	var highest struct {
		UserID int64 `bson:"user_id"`
	}
	err := db.users.FindOne(ctx, bson.D{},
		options.FindOne().
			SetSort(bson.D{{Key: "user_id", Value: -1}}).
			SetProjection(bson.D{{Key: "user_id", Value: 1}}),
	).Decode(&highest)
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}
	return db.raiseUserCounter(ctx, highest.UserID)
}

// raiseUserCounter moves the counter up to atLeast; it never moves it down.
func (db *DB) raiseUserCounter(ctx context.Context, atLeast int64) error {
	_, err := db.counters.UpdateOne(ctx,
		bson.M{"_id": userIDCounter},
		bson.M{"$max": bson.M{"seq": atLeast}},
		options.Update().SetUpsert(true),
	)
	return err
}

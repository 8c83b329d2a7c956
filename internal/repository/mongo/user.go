package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/model"
)

// NextUserID atomically increments the counters document and returns the
// new value. Unlike counting users, this never returns the same id twice.
func (db *DB) NextUserID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userIDCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("mongo: reserving user id: %w", err)
	}
	return counter.Seq, nil
}

// CreateUser inserts a user document. Duplicate user_id or email → ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if _, err := db.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("user", strconv.FormatInt(user.UserID, 10))
		}
		return fmt.Errorf("mongo: creating user %d: %w", user.UserID, err)
	}

	// Ids chosen by REST clients can run ahead of the counter. The user is
	// stored either way; a lagging counter only costs Register a retry.
	if err := db.raiseCounter(ctx, user.UserID); err != nil {
		db.logger.Warn("failed to raise user id counter",
			slog.Int64("userID", user.UserID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return db.findUser(ctx, bson.M{"user_id": userID}, strconv.FormatInt(userID, 10))
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.findUser(ctx, bson.M{"email": email}, email)
}

func (db *DB) findUser(ctx context.Context, filter bson.M, key string) (*model.User, error) {
	var u model.User
	if err := db.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("mongo: getting user %s: %w", key, err)
	}
	return &u, nil
}

// ListUsers returns every user ordered by user_id.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	cursor, err := db.users.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: listing users: %w", err)
	}

	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo: decoding users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	result, err := db.users.UpdateOne(ctx,
		bson.M{"user_id": user.UserID},
		bson.M{"$set": bson.M{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"password":   user.PasswordHash,
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("user", strconv.FormatInt(user.UserID, 10))
		}
		return fmt.Errorf("mongo: updating user %d: %w", user.UserID, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.UserID, 10))
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, userID int64) error {
	result, err := db.users.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("mongo: deleting user %d: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("user", strconv.FormatInt(userID, 10))
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"premium-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements UserRepository for MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

// SaveUser updates or inserts the user, refreshing username and last_seen.
func (r *MongoUserRepository) SaveUser(ctx context.Context, userID int64, username string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":  username,
			"last_seen": now,
		},
		"$setOnInsert": bson.M{
			"first_seen": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return nil
}

// ListUsers returns every known user.
func (r *MongoUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.collection, "user_id")
}

// CountUsers returns the number of known users.
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return countAll(ctx, r.collection)
}

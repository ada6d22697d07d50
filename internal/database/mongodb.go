package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"premium-bot/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names. They match the layout of the existing production database.
const (
	usersCollection         = "all_users"
	premiumCollection       = "premium_users"
	bannedCollection        = "banned_users"
	channelsCollection      = "premium_channels"
	broadcastLogsCollection = "broadcast_logs"
)

// ConnectDB establishes a connection to the MongoDB database using the provided configuration.
// It returns the MongoDB client, database object, and an error if connection fails.
func ConnectDB(cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.MongoDBURI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Send a ping to confirm a successful connection
	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Println("Successfully connected and pinged MongoDB!")

	return client, client.Database(cfg.MongoDBDatabase), nil
}

// EnsureIndexes creates the unique key indexes every record set relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := map[string]string{
		usersCollection:    "user_id",
		premiumCollection:  "user_id",
		bannedCollection:   "user_id",
		channelsCollection: "channel_id",
	}
	for collection, key := range unique {
		_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create unique index on %s.%s: %w", collection, key, err)
		}
	}

	_, err := db.Collection(broadcastLogsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create timestamp index on %s: %w", broadcastLogsCollection, err)
	}
	return nil
}

// insertIfAbsent inserts doc unless a document matching filter exists.
// Returns ErrAlreadyExists when nothing was inserted.
func insertIfAbsent(ctx context.Context, collection *mongo.Collection, filter bson.M, doc interface{}) error {
	result, err := collection.UpdateOne(ctx, filter, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert into %s: %w", collection.Name(), err)
	}
	if result.UpsertedCount == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// deleteOne removes the document matching filter. Returns ErrNotFound when nothing matched.
func deleteOne(ctx context.Context, collection *mongo.Collection, filter bson.M) error {
	result, err := collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection.Name(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// exists reports whether a document matching filter exists.
func exists(ctx context.Context, collection *mongo.Collection, filter bson.M) (bool, error) {
	err := collection.FindOne(ctx, filter).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, fmt.Errorf("failed to query %s: %w", collection.Name(), err)
}

// findAll decodes every document of the collection sorted by sortKey ascending.
func findAll[T any](ctx context.Context, collection *mongo.Collection, sortKey string) ([]T, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}})
	cursor, err := collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents in %s: %w", collection.Name(), err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode documents from %s: %w", collection.Name(), err)
	}
	return items, nil
}

func countAll(ctx context.Context, collection *mongo.Collection) (int64, error) {
	n, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents in %s: %w", collection.Name(), err)
	}
	return n, nil
}

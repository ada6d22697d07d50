package database

import (
	"context"
	"fmt"
	"time"

	"premium-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoChannelRepository implements ChannelRepository for MongoDB.
type MongoChannelRepository struct {
	collection *mongo.Collection
}

// NewMongoChannelRepository creates a new MongoDB premium channel repository.
func NewMongoChannelRepository(db *mongo.Database) *MongoChannelRepository {
	return &MongoChannelRepository{collection: db.Collection(channelsCollection)}
}

// AddChannel registers a channel, returning ErrAlreadyExists for a known channel id.
func (r *MongoChannelRepository) AddChannel(ctx context.Context, channel models.Channel) error {
	return insertIfAbsent(ctx, r.collection, bson.M{"channel_id": channel.ChannelID}, channel)
}

// RemoveChannel deletes a channel, returning ErrNotFound when it is not registered.
func (r *MongoChannelRepository) RemoveChannel(ctx context.Context, channelID string) error {
	return deleteOne(ctx, r.collection, bson.M{"channel_id": channelID})
}

// ListChannels returns all premium channels ordered by the date they were added.
func (r *MongoChannelRepository) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return findAll[models.Channel](ctx, r.collection, "added_date")
}

// CountChannels returns the number of premium channels.
func (r *MongoChannelRepository) CountChannels(ctx context.Context) (int64, error) {
	return countAll(ctx, r.collection)
}

// MongoBroadcastLogRepository implements BroadcastLogRepository for MongoDB.
type MongoBroadcastLogRepository struct {
	collection *mongo.Collection
}

// NewMongoBroadcastLogRepository creates a new MongoDB broadcast log repository.
func NewMongoBroadcastLogRepository(db *mongo.Database) *MongoBroadcastLogRepository {
	return &MongoBroadcastLogRepository{collection: db.Collection(broadcastLogsCollection)}
}

// LogBroadcast appends one audit entry.
func (r *MongoBroadcastLogRepository) LogBroadcast(ctx context.Context, entry models.BroadcastLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert broadcast log: %w", err)
	}
	return nil
}

// CountBroadcastsSince counts audit entries with a timestamp at or after since.
func (r *MongoBroadcastLogRepository) CountBroadcastsSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count broadcast logs: %w", err)
	}
	return n, nil
}

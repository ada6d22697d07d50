package database

import (
	"context"

	"premium-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPremiumRepository implements PremiumRepository for MongoDB.
type MongoPremiumRepository struct {
	collection *mongo.Collection
}

// NewMongoPremiumRepository creates a new MongoDB premium membership repository.
func NewMongoPremiumRepository(db *mongo.Database) *MongoPremiumRepository {
	return &MongoPremiumRepository{collection: db.Collection(premiumCollection)}
}

// IsPremium reports whether the user has a premium membership record.
func (r *MongoPremiumRepository) IsPremium(ctx context.Context, userID int64) (bool, error) {
	return exists(ctx, r.collection, bson.M{"user_id": userID})
}

// AddPremium inserts a membership, returning ErrAlreadyExists for a current member.
func (r *MongoPremiumRepository) AddPremium(ctx context.Context, member models.PremiumMember) error {
	return insertIfAbsent(ctx, r.collection, bson.M{"user_id": member.UserID}, member)
}

// RemovePremium deletes a membership, returning ErrNotFound when there is none.
func (r *MongoPremiumRepository) RemovePremium(ctx context.Context, userID int64) error {
	return deleteOne(ctx, r.collection, bson.M{"user_id": userID})
}

// ListPremium returns all premium members ordered by the date they were added.
func (r *MongoPremiumRepository) ListPremium(ctx context.Context) ([]models.PremiumMember, error) {
	return findAll[models.PremiumMember](ctx, r.collection, "added_date")
}

// CountPremium returns the number of premium members.
func (r *MongoPremiumRepository) CountPremium(ctx context.Context) (int64, error) {
	return countAll(ctx, r.collection)
}

// MongoBanRepository implements BanRepository for MongoDB.
type MongoBanRepository struct {
	collection *mongo.Collection
}

// NewMongoBanRepository creates a new MongoDB ban repository.
func NewMongoBanRepository(db *mongo.Database) *MongoBanRepository {
	return &MongoBanRepository{collection: db.Collection(bannedCollection)}
}

// IsBanned reports whether the user has a ban record.
func (r *MongoBanRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	return exists(ctx, r.collection, bson.M{"user_id": userID})
}

// Ban inserts a ban record, returning ErrAlreadyExists when the user is already banned.
func (r *MongoBanRepository) Ban(ctx context.Context, ban models.Ban) error {
	return insertIfAbsent(ctx, r.collection, bson.M{"user_id": ban.UserID}, ban)
}

// Unban deletes a ban record, returning ErrNotFound when the user is not banned.
func (r *MongoBanRepository) Unban(ctx context.Context, userID int64) error {
	return deleteOne(ctx, r.collection, bson.M{"user_id": userID})
}

// ListBans returns all ban records ordered by ban date.
func (r *MongoBanRepository) ListBans(ctx context.Context) ([]models.Ban, error) {
	return findAll[models.Ban](ctx, r.collection, "banned_date")
}

// CountBans returns the number of banned users.
func (r *MongoBanRepository) CountBans(ctx context.Context) (int64, error) {
	return countAll(ctx, r.collection)
}

package database

import (
	"context"
	"time"

	"premium-bot/internal/database/models"
)

// UserRepository stores every user the bot has observed.
type UserRepository interface {
	// SaveUser creates or refreshes the user record with the current time.
	SaveUser(ctx context.Context, userID int64, username string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// PremiumRepository stores premium memberships.
type PremiumRepository interface {
	IsPremium(ctx context.Context, userID int64) (bool, error)
	// AddPremium returns ErrAlreadyExists when the user is already a member.
	AddPremium(ctx context.Context, member models.PremiumMember) error
	// RemovePremium returns ErrNotFound when the user is not a member.
	RemovePremium(ctx context.Context, userID int64) error
	ListPremium(ctx context.Context) ([]models.PremiumMember, error)
	CountPremium(ctx context.Context) (int64, error)
}

// BanRepository stores banned users.
type BanRepository interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
	// Ban returns ErrAlreadyExists when the user is already banned.
	Ban(ctx context.Context, ban models.Ban) error
	// Unban returns ErrNotFound when the user is not banned.
	Unban(ctx context.Context, userID int64) error
	ListBans(ctx context.Context) ([]models.Ban, error)
	CountBans(ctx context.Context) (int64, error)
}

// ChannelRepository stores premium channels.
type ChannelRepository interface {
	// AddChannel returns ErrAlreadyExists when the channel is already registered.
	AddChannel(ctx context.Context, channel models.Channel) error
	// RemoveChannel returns ErrNotFound when the channel is not registered.
	RemoveChannel(ctx context.Context, channelID string) error
	ListChannels(ctx context.Context) ([]models.Channel, error)
	CountChannels(ctx context.Context) (int64, error)
}

// BroadcastLogRepository stores the premium broadcast audit trail.
type BroadcastLogRepository interface {
	LogBroadcast(ctx context.Context, entry models.BroadcastLog) error
	CountBroadcastsSince(ctx context.Context, since time.Time) (int64, error)
}

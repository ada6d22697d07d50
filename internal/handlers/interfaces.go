package handlers

import (
	"context"

	"premium-bot/internal/broadcast"
	"premium-bot/internal/invites"
	"premium-bot/internal/media"

	"github.com/mymmrac/telego"
)

// AccessChecker is implemented by auth.Checker.
type AccessChecker interface {
	AdminID() int64
	IsAdmin(userID int64) bool
	IsBanned(ctx context.Context, userID int64) bool
	IsPremium(ctx context.Context, userID int64) bool
	SaveUser(ctx context.Context, user *telego.User)
}

// ChannelInviter is implemented by invites.Inviter.
type ChannelInviter interface {
	InviteIfEligible(ctx context.Context, userID int64) invites.Result
}

// Broadcaster is implemented by broadcast.Manager.
type Broadcaster interface {
	Begin(adminID int64) bool
	IsCollecting(adminID int64) bool
	Collect(adminID int64, msg media.Message) (int, bool)
	Flush(ctx context.Context, adminID int64) (broadcast.Summary, error)
	PremiumBroadcast(ctx context.Context, adminID int64, msg media.Message) (broadcast.Summary, error)
}

// Relayer is implemented by relay.Relay.
type Relayer interface {
	ToAdmin(ctx context.Context, msg telego.Message) error
	AdminReply(ctx context.Context, msg telego.Message) (int64, error)
}

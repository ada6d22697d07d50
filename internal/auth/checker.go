package auth

import (
	"context"
	"fmt"
	"log"

	"premium-bot/internal/database"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
)

// NoUsername is stored for users without a public Telegram username.
const NoUsername = "No username"

// Checker answers access questions about a user: admin identity, ban and premium status.
// Lookup failures are reported and treated as the safe default (not banned, not premium).
type Checker struct {
	adminID int64
	users   database.UserRepository
	premium database.PremiumRepository
	bans    database.BanRepository
}

// NewChecker creates a new Checker.
// It requires a non-zero admin ID and non-nil repositories.
func NewChecker(adminID int64, users database.UserRepository, premium database.PremiumRepository, bans database.BanRepository) (*Checker, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin ID cannot be zero")
	}
	if users == nil || premium == nil || bans == nil {
		return nil, fmt.Errorf("repositories cannot be nil")
	}
	return &Checker{
		adminID: adminID,
		users:   users,
		premium: premium,
		bans:    bans,
	}, nil
}

// AdminID returns the configured admin identity.
func (c *Checker) AdminID() int64 {
	return c.adminID
}

// IsAdmin reports whether userID is the configured admin.
func (c *Checker) IsAdmin(userID int64) bool {
	return userID == c.adminID
}

// IsBanned reports whether a ban record exists for userID.
func (c *Checker) IsBanned(ctx context.Context, userID int64) bool {
	banned, err := c.bans.IsBanned(ctx, userID)
	if err != nil {
		log.Printf("[AccessCheck User:%d] Error checking ban status: %v. Assuming not banned.", userID, err)
		sentry.CaptureException(fmt.Errorf("ban lookup for user %d: %w", userID, err))
		return false
	}
	return banned
}

// IsPremium reports whether a premium membership exists for userID.
func (c *Checker) IsPremium(ctx context.Context, userID int64) bool {
	premium, err := c.premium.IsPremium(ctx, userID)
	if err != nil {
		log.Printf("[AccessCheck User:%d] Error checking premium status: %v. Assuming not premium.", userID, err)
		sentry.CaptureException(fmt.Errorf("premium lookup for user %d: %w", userID, err))
		return false
	}
	return premium
}

// SaveUser records that the user was seen now. Failures are only logged.
func (c *Checker) SaveUser(ctx context.Context, user *telego.User) {
	if user == nil {
		return
	}
	username := user.Username
	if username == "" {
		username = NoUsername
	}
	if err := c.users.SaveUser(ctx, user.ID, username); err != nil {
		log.Printf("[AccessCheck User:%d] Error saving user: %v", user.ID, err)
		sentry.CaptureException(err)
	}
}

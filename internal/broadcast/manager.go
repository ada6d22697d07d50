package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"premium-bot/internal/database"
	"premium-bot/internal/database/models"
	"premium-bot/internal/media"
	"premium-bot/internal/metrics"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

// Banners prepended to broadcast messages.
const (
	AllBroadcastBanner     = "📢 Admin Broadcast:\n\n"
	PremiumBroadcastBanner = "📢 Premium Broadcast:\n\n"
)

const (
	DefaultConcurrency = 8
	DefaultRate        = 25
)

var (
	ErrNoSession    = errors.New("no active broadcast session")
	ErrEmptySession = errors.New("broadcast session has no messages")
	ErrNoRecipients = errors.New("no recipients to broadcast to")
)

// Summary tallies a broadcast at recipient granularity.
type Summary struct {
	Successful int
	Failed     int
	Total      int
	Messages   int
}

// Options tunes the delivery fan-out.
type Options struct {
	// Concurrency bounds the number of recipients served in parallel.
	Concurrency int
	// Limiter throttles individual deliveries. Defaults to DefaultRate per second.
	Limiter ratelimit.Limiter
}

// Manager runs admin broadcasts: the collect-then-flush session to all users
// and the immediate single-message broadcast to premium members.
type Manager struct {
	bot      telegoapi.BotAPI
	users    database.UserRepository
	premium  database.PremiumRepository
	bans     database.BanRepository
	logs     database.BroadcastLogRepository
	sessions *SessionStore

	concurrency int
	limiter     ratelimit.Limiter
}

// NewManager creates a new broadcast manager.
func NewManager(
	bot telegoapi.BotAPI,
	users database.UserRepository,
	premium database.PremiumRepository,
	bans database.BanRepository,
	logs database.BroadcastLogRepository,
	opts Options,
) *Manager {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(DefaultRate)
	}
	return &Manager{
		bot:         bot,
		users:       users,
		premium:     premium,
		bans:        bans,
		logs:        logs,
		sessions:    NewSessionStore(),
		concurrency: opts.Concurrency,
		limiter:     opts.Limiter,
	}
}

// Begin opens a collecting session for adminID. It reports whether an earlier
// session was discarded.
func (m *Manager) Begin(adminID int64) bool {
	restarted := m.sessions.Start(adminID)
	log.Printf("[Broadcast Admin:%d] All broadcast session started (restarted: %t)", adminID, restarted)
	return restarted
}

// IsCollecting reports whether adminID has an open session.
func (m *Manager) IsCollecting(adminID int64) bool {
	return m.sessions.State(adminID) == StateCollecting
}

// Collect appends msg to adminID's session and returns the running count.
func (m *Manager) Collect(adminID int64, msg media.Message) (int, bool) {
	count, ok := m.sessions.Append(adminID, msg)
	if ok {
		log.Printf("[Broadcast Admin:%d] Collected message %d (%s)", adminID, count, msg.Kind())
	}
	return count, ok
}

// Flush sends every collected message, in order, to all known users that are not banned.
// An empty session is left open; any other outcome returns the admin to Idle.
func (m *Manager) Flush(ctx context.Context, adminID int64) (Summary, error) {
	msgs, ok := m.sessions.Take(adminID)
	if !ok {
		return Summary{}, ErrNoSession
	}
	if len(msgs) == 0 {
		return Summary{}, ErrEmptySession
	}

	recipients, err := m.activeRecipients(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return Summary{}, err
	}
	if len(recipients) == 0 {
		return Summary{}, ErrNoRecipients
	}

	log.Printf("[Broadcast Admin:%d] Starting all broadcast to %d active users with %d messages", adminID, len(recipients), len(msgs))
	summary := m.fanOut(ctx, metrics.PathAllBroadcast, recipients, msgs, AllBroadcastBanner)
	log.Printf("[Broadcast Admin:%d] All broadcast completed - Success: %d, Failed: %d, Messages: %d",
		adminID, summary.Successful, summary.Failed, summary.Messages)
	return summary, nil
}

// PremiumBroadcast sends msg once to every premium member and records the audit log entry.
func (m *Manager) PremiumBroadcast(ctx context.Context, adminID int64, msg media.Message) (Summary, error) {
	members, err := m.premium.ListPremium(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return Summary{}, fmt.Errorf("failed to list premium members: %w", err)
	}
	if len(members) == 0 {
		return Summary{}, ErrNoRecipients
	}

	recipients := make([]int64, 0, len(members))
	for _, member := range members {
		recipients = append(recipients, member.UserID)
	}

	log.Printf("[Broadcast Admin:%d] Starting premium broadcast to %d premium users", adminID, len(recipients))
	summary := m.fanOut(ctx, metrics.PathPremiumBroadcast, recipients, []media.Message{msg}, PremiumBroadcastBanner)
	log.Printf("[Broadcast Admin:%d] Premium broadcast completed - Success: %d, Failed: %d", adminID, summary.Successful, summary.Failed)

	entry := models.BroadcastLog{
		AdminID:         adminID,
		MessageText:     media.Summary(msg),
		Timestamp:       time.Now(),
		TotalUsers:      summary.Total,
		SuccessfulSends: summary.Successful,
		FailedSends:     summary.Failed,
	}
	if err := m.logs.LogBroadcast(ctx, entry); err != nil {
		sentry.CaptureException(err)
		return summary, fmt.Errorf("failed to record broadcast log: %w", err)
	}
	return summary, nil
}

// activeRecipients returns every known user id that has no ban record.
func (m *Manager) activeRecipients(ctx context.Context) ([]int64, error) {
	users, err := m.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	bans, err := m.bans.ListBans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list banned users: %w", err)
	}

	excluded := make(map[int64]struct{}, len(bans)+len(users))
	for _, ban := range bans {
		excluded[ban.UserID] = struct{}{}
	}

	recipients := make([]int64, 0, len(users))
	for _, user := range users {
		if _, skip := excluded[user.UserID]; skip {
			continue
		}
		excluded[user.UserID] = struct{}{}
		recipients = append(recipients, user.UserID)
	}
	return recipients, nil
}

// fanOut delivers msgs to every recipient. A recipient's messages are sent in order by a
// single goroutine and its first failure aborts only that recipient.
func (m *Manager) fanOut(ctx context.Context, path string, recipients []int64, msgs []media.Message, banner string) Summary {
	start := time.Now()
	var successful, failed int64

	g := new(errgroup.Group)
	g.SetLimit(m.concurrency)

	for _, userID := range recipients {
		g.Go(func() error {
			if err := m.deliverSequence(ctx, path, userID, msgs, banner); err != nil {
				log.Printf("[Broadcast %s] Failed to deliver to user %d: %v", path, userID, err)
				atomic.AddInt64(&failed, 1)
				metrics.BroadcastRecipients.WithLabelValues(path, metrics.ResultFailed).Inc()
				return nil
			}
			atomic.AddInt64(&successful, 1)
			metrics.BroadcastRecipients.WithLabelValues(path, metrics.ResultSuccess).Inc()
			return nil
		})
	}
	_ = g.Wait()

	metrics.BroadcastDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	return Summary{
		Successful: int(successful),
		Failed:     int(failed),
		Total:      len(recipients),
		Messages:   len(msgs),
	}
}

func (m *Manager) deliverSequence(ctx context.Context, path string, userID int64, msgs []media.Message, banner string) error {
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.limiter.Take()
		_, err := media.Send(ctx, m.bot, tu.ID(userID), msg, banner)
		metrics.Delivery(path, err)
		if err != nil {
			return fmt.Errorf("message %d of %d: %w", i+1, len(msgs), err)
		}
	}
	return nil
}

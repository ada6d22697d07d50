package invites

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"premium-bot/internal/database"
	"premium-bot/internal/database/models"
	"premium-bot/internal/locales"
	"premium-bot/internal/metrics"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/sync/errgroup"
)

const (
	// LinkTTL is how long a minted invite link stays valid.
	LinkTTL = time.Hour
	// DefaultConcurrency bounds parallel channel checks.
	DefaultConcurrency = 4
)

// Result counts the outcome of one invitation run.
type Result struct {
	Channels int
	Sent     int
	Skipped  int
	Failed   int
}

// Inviter sends single-use invite links for premium channels the user has not joined yet.
type Inviter struct {
	bot         telegoapi.BotAPI
	channels    database.ChannelRepository
	concurrency int
	now         func() time.Time
}

// NewInviter creates a new Inviter. concurrency <= 0 selects DefaultConcurrency.
func NewInviter(bot telegoapi.BotAPI, channels database.ChannelRepository, concurrency int) *Inviter {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Inviter{
		bot:         bot,
		channels:    channels,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// InviteIfEligible checks every premium channel and sends an invite link for each one
// userID is not a member of. A failing channel never stops the others.
func (i *Inviter) InviteIfEligible(ctx context.Context, userID int64) Result {
	logPrefix := fmt.Sprintf("[Invites User:%d]", userID)

	channels, err := i.channels.ListChannels(ctx)
	if err != nil {
		log.Printf("%s Failed to list premium channels: %v", logPrefix, err)
		sentry.CaptureException(fmt.Errorf("%s list channels: %w", logPrefix, err))
		return Result{}
	}

	var sent, skipped, failed int64
	g := new(errgroup.Group)
	g.SetLimit(i.concurrency)

	for _, channel := range channels {
		g.Go(func() error {
			joined, err := i.inviteToChannel(ctx, userID, channel)
			switch {
			case err != nil:
				log.Printf("%s Error checking/inviting to channel %s: %v", logPrefix, channel.ChannelID, err)
				atomic.AddInt64(&failed, 1)
				metrics.InvitesTotal.WithLabelValues(metrics.ResultFailed).Inc()
			case joined:
				atomic.AddInt64(&skipped, 1)
				metrics.InvitesTotal.WithLabelValues(metrics.ResultSkipped).Inc()
			default:
				log.Printf("%s Sent invite link for channel %s", logPrefix, channel.ChannelID)
				atomic.AddInt64(&sent, 1)
				metrics.InvitesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	return Result{
		Channels: len(channels),
		Sent:     int(sent),
		Skipped:  int(skipped),
		Failed:   int(failed),
	}
}

// inviteToChannel returns true when the user already belongs to the channel.
func (i *Inviter) inviteToChannel(ctx context.Context, userID int64, channel models.Channel) (bool, error) {
	chatID := ChatID(channel.ChannelID)

	member, err := i.bot.GetChatMember(ctx, &telego.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}
	if IsJoined(member) {
		return true, nil
	}

	link, err := i.bot.CreateChatInviteLink(ctx, &telego.CreateChatInviteLinkParams{
		ChatID:      chatID,
		ExpireDate:  i.now().Add(LinkTTL).Unix(),
		MemberLimit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create invite link: %w", err)
	}

	name := channel.ChannelName
	if name == "" {
		name = models.DefaultChannelName
	}
	text := locales.Default("MsgInvite", map[string]interface{}{
		"Channel": name,
		"Link":    link.InviteLink,
	})
	_, err = i.bot.SendMessage(ctx, tu.Message(tu.ID(userID), text))
	metrics.Delivery(metrics.PathInvite, err)
	if err != nil {
		return false, fmt.Errorf("failed to deliver invite link: %w", err)
	}
	return false, nil
}

// IsJoined reports whether member already has access to the channel.
func IsJoined(member telego.ChatMember) bool {
	if member == nil {
		return false
	}
	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator, telego.MemberStatusMember:
		return true
	default:
		return false
	}
}

// NormalizeChannelID prefixes bare numeric ids with "-"; "@name" and "-100..." are kept as is.
func NormalizeChannelID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "@") {
		return raw
	}
	return "-" + raw
}

// ChatID converts a stored channel id into a Telegram chat reference.
func ChatID(channelID string) telego.ChatID {
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		return tu.ID(id)
	}
	return tu.Username(channelID)
}

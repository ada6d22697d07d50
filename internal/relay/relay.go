package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"time"

	"premium-bot/internal/auth"
	"premium-bot/internal/locales"
	"premium-bot/internal/media"
	"premium-bot/internal/metrics"
	"premium-bot/internal/scheduler"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// ReplyBanner is prepended to admin replies delivered to users.
const ReplyBanner = "💬 Admin Reply:\n\n"

// DefaultAckDelay is how long the "sent to admin" acknowledgement stays visible.
const DefaultAckDelay = 20 * time.Second

var (
	ErrNoReplyTarget    = errors.New("replied message carries no user id marker")
	ErrUnsupportedMedia = errors.New("unsupported message kind")
)

// idMarker must stay in sync with FormatSenderBanner.
var idMarker = regexp.MustCompile(`ID: (\d+)`)

// FormatSenderBanner builds the header of a message relayed to the admin.
func FormatSenderBanner(username string, userID int64) string {
	return fmt.Sprintf("💬 Message from User:\n👤 @%s (ID: %d)\n\n", username, userID)
}

// ParseReplyTarget extracts the user id from the first "ID: <digits>" marker in text.
func ParseReplyTarget(text string) (int64, bool) {
	match := idMarker.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Relay forwards messages between users and the admin.
type Relay struct {
	bot       telegoapi.BotAPI
	adminID   int64
	scheduler *scheduler.Scheduler
	ackDelay  time.Duration
}

// New creates a new Relay. ackDelay <= 0 selects DefaultAckDelay.
func New(bot telegoapi.BotAPI, adminID int64, sched *scheduler.Scheduler, ackDelay time.Duration) *Relay {
	if ackDelay <= 0 {
		ackDelay = DefaultAckDelay
	}
	return &Relay{
		bot:       bot,
		adminID:   adminID,
		scheduler: sched,
		ackDelay:  ackDelay,
	}
}

// ToAdmin acknowledges msg to its sender and forwards it to the admin with a banner
// naming the sender. Messages from the admin itself are ignored.
func (r *Relay) ToAdmin(ctx context.Context, msg telego.Message) error {
	if msg.From == nil || msg.From.ID == r.adminID {
		return nil
	}
	userID := msg.From.ID
	localizer := locales.NewLocalizer(msg.From.LanguageCode)

	content, ok := media.FromTelego(msg)
	if !ok {
		log.Printf("[Relay User:%d] Unsupported message kind, not forwarded", userID)
		notice := locales.GetMessage(localizer, "MsgUnsupportedMedia", nil, nil)
		if _, err := r.bot.SendMessage(ctx, tu.Message(tu.ID(msg.Chat.ID), notice)); err != nil {
			log.Printf("[Relay User:%d] Failed to send unsupported media notice: %v", userID, err)
		}
		return nil
	}

	r.sendAck(ctx, msg.Chat.ID, userID, locales.GetMessage(localizer, "MsgRelayAck", nil, nil))

	username := msg.From.Username
	if username == "" {
		username = auth.NoUsername
	}
	_, err := media.Send(ctx, r.bot, tu.ID(r.adminID), content, FormatSenderBanner(username, userID))
	metrics.Delivery(metrics.PathRelay, err)
	if err != nil {
		return fmt.Errorf("failed to forward message from user %d to admin: %w", userID, err)
	}
	log.Printf("[Relay User:%d] Forwarded %s message to admin", userID, content.Kind())
	return nil
}

// sendAck posts the acknowledgement and schedules its deletion. Failures are only logged.
func (r *Relay) sendAck(ctx context.Context, chatID, userID int64, text string) {
	ack, err := r.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		log.Printf("[Relay User:%d] Error sending wait message: %v", userID, err)
		return
	}

	messageID := ack.MessageID
	key := fmt.Sprintf("ack:%d:%d", chatID, messageID)
	r.scheduler.After(key, r.ackDelay, func(ctx context.Context) {
		err := r.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{ChatID: tu.ID(chatID), MessageID: messageID})
		if err != nil {
			log.Printf("[Relay User:%d] Error deleting wait message %d: %v", userID, messageID, err)
			return
		}
		log.Printf("[Relay User:%d] Auto-deleted wait message %d", userID, messageID)
	})
}

// AdminReply delivers the admin's msg to the user named in the message it replies to.
// It returns the target user id.
func (r *Relay) AdminReply(ctx context.Context, msg telego.Message) (int64, error) {
	replied := msg.ReplyToMessage
	if replied == nil {
		return 0, ErrNoReplyTarget
	}
	text := replied.Text
	if text == "" {
		text = replied.Caption
	}
	targetID, ok := ParseReplyTarget(text)
	if !ok {
		return 0, ErrNoReplyTarget
	}

	content, ok := media.FromTelego(msg)
	if !ok {
		return targetID, ErrUnsupportedMedia
	}

	_, err := media.Send(ctx, r.bot, tu.ID(targetID), content, ReplyBanner)
	metrics.Delivery(metrics.PathReply, err)
	if err != nil {
		return targetID, fmt.Errorf("failed to deliver admin reply to user %d: %w", targetID, err)
	}
	log.Printf("[Relay Admin:%d] Replied to user %d", r.adminID, targetID)
	return targetID, nil
}

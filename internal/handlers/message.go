package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"premium-bot/internal/broadcast"
	"premium-bot/internal/media"
	"premium-bot/internal/relay"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleMessage routes every non-command message. Admin messages are replies to users,
// broadcast session input or premium broadcasts. Everybody else is relayed to the admin.
func (h *MessageHandler) HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	userID := message.From.ID

	h.access.SaveUser(ctx, message.From)
	if h.access.IsBanned(ctx, userID) {
		log.Printf("[Message User:%d] Banned user rejected", userID)
		return h.reply(ctx, bot, message, "MsgBanned", nil)
	}

	if !h.access.IsAdmin(userID) {
		return h.relay.ToAdmin(ctx, message)
	}

	switch {
	case message.ReplyToMessage != nil:
		return h.handleAdminReply(ctx, bot, message)
	case h.broadcaster.IsCollecting(userID):
		return h.handleCollect(ctx, bot, message)
	default:
		return h.handlePremiumBroadcast(ctx, bot, message)
	}
}

func (h *MessageHandler) handleAdminReply(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	targetID, err := h.relay.AdminReply(ctx, message)
	switch {
	case errors.Is(err, relay.ErrNoReplyTarget):
		log.Printf("[AdminReply User:%d] Could not extract user ID from replied message", message.From.ID)
		return nil
	case errors.Is(err, relay.ErrUnsupportedMedia):
		return h.reply(ctx, bot, message, "MsgUnsupportedMedia", nil)
	case err != nil:
		log.Printf("[AdminReply User:%d] Failed to reply to user %d: %v", message.From.ID, targetID, err)
		return err
	}
	return nil
}

func (h *MessageHandler) handleCollect(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	adminID := message.From.ID
	content, ok := media.FromTelego(message)
	if !ok {
		return h.reply(ctx, bot, message, "MsgUnsupportedMedia", nil)
	}
	count, ok := h.broadcaster.Collect(adminID, content)
	if !ok {
		// The session was flushed between the state check and the append.
		return h.handlePremiumBroadcast(ctx, bot, message)
	}
	return h.reply(ctx, bot, message, "MsgBroadcastCollected", map[string]interface{}{"Count": count})
}

func (h *MessageHandler) handlePremiumBroadcast(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	adminID := message.From.ID
	content, ok := media.FromTelego(message)
	if !ok {
		return h.reply(ctx, bot, message, "MsgUnsupportedMedia", nil)
	}
	summary, err := h.broadcaster.PremiumBroadcast(ctx, adminID, content)
	switch {
	case errors.Is(err, broadcast.ErrNoRecipients):
		log.Printf("[PremiumBroadcast User:%d] No premium members, nothing sent", adminID)
		return nil
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("premium broadcast: %w", err))
	}
	log.Printf("[PremiumBroadcast User:%d] Delivered to %d of %d premium members", adminID, summary.Successful, summary.Total)
	return nil
}

// LongRunning reports whether handling message fans out to many users and needs the
// broadcast timeout instead of the regular per-update timeout.
func (h *MessageHandler) LongRunning(message telego.Message) bool {
	if message.From == nil || !h.access.IsAdmin(message.From.ID) {
		return false
	}
	if name, _ := parseCommand(message.Text); name != "" {
		return name == "done"
	}
	return message.ReplyToMessage == nil && !h.broadcaster.IsCollecting(message.From.ID)
}

package handlers

import (
	"context"
	"errors"
	"log"

	"premium-bot/internal/broadcast"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleAllBroadcast opens a collecting session for the admin. An open session is reset.
func (h *MessageHandler) HandleAllBroadcast(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	adminID := message.From.ID
	if restarted := h.broadcaster.Begin(adminID); restarted {
		log.Printf("[Cmd:allbroadcast User:%d] Broadcast session restarted", adminID)
		return h.reply(ctx, bot, message, "MsgBroadcastRestarted", nil)
	}
	log.Printf("[Cmd:allbroadcast User:%d] Broadcast session started", adminID)
	return h.reply(ctx, bot, message, "MsgBroadcastStarted", nil)
}

// HandleDone delivers the collected messages to every non-banned user and reports the outcome.
func (h *MessageHandler) HandleDone(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	adminID := message.From.ID
	summary, err := h.broadcaster.Flush(ctx, adminID)
	switch {
	case errors.Is(err, broadcast.ErrNoSession):
		return h.reply(ctx, bot, message, "MsgBroadcastNoSession", nil)
	case errors.Is(err, broadcast.ErrEmptySession):
		return h.reply(ctx, bot, message, "MsgBroadcastEmpty", nil)
	case errors.Is(err, broadcast.ErrNoRecipients):
		return h.reply(ctx, bot, message, "MsgBroadcastNoRecipients", nil)
	case err != nil:
		_ = h.reply(ctx, bot, message, "MsgBroadcastFailed", nil)
		return err
	}

	log.Printf("[Cmd:done User:%d] Broadcast finished: %+v", adminID, summary)
	return h.reply(ctx, bot, message, "MsgBroadcastSummary", map[string]interface{}{
		"Successful": summary.Successful,
		"Failed":     summary.Failed,
		"Total":      summary.Total,
		"Messages":   summary.Messages,
	})
}

package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"premium-bot/internal/locales"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// HandleCallbackQuery answers inline button presses.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	userID := query.From.ID
	localizer := h.getLocalizer(&query.From)
	logPrefix := fmt.Sprintf("[Callback:%s User:%d]", query.Data, userID)

	h.access.SaveUser(ctx, &query.From)
	if h.access.IsBanned(ctx, userID) {
		log.Printf("%s Banned user rejected", logPrefix)
		return bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            locales.GetMessage(localizer, "MsgBanned", nil, nil),
			ShowAlert:       true,
		})
	}

	if err := bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}); err != nil {
		log.Printf("%s Failed to answer callback query: %v", logPrefix, err)
	}

	var text string
	switch query.Data {
	case CallbackBuyPremium:
		if h.access.IsPremium(ctx, userID) {
			text = locales.GetMessage(localizer, "MsgAlreadyPremium", nil, nil)
		} else {
			text = locales.GetMessage(localizer, "MsgPurchaseInfo", map[string]interface{}{"Contact": h.contact()}, nil)
		}
	default:
		log.Printf("%s Unknown callback data", logPrefix)
		text = locales.GetMessage(localizer, "MsgCallbackNotHandled", nil, nil)
	}

	if query.Message == nil {
		return h.sendSuccess(ctx, bot, userID, text)
	}
	_, err := bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    tu.ID(query.Message.GetChat().ID),
		MessageID: query.Message.GetMessageID(),
		Text:      text,
	})
	if err != nil {
		log.Printf("%s Failed to edit message: %v", logPrefix, err)
	}
	return nil
}

// contact is the admin handle shown in purchase info, or a deep link to the admin when unset.
func (h *MessageHandler) contact() string {
	if handle := strings.TrimPrefix(strings.TrimSpace(h.adminContact), "@"); handle != "" {
		return "@" + handle
	}
	return fmt.Sprintf("tg://user?id=%d", h.access.AdminID())
}

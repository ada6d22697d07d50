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

// CallbackBuyPremium is the callback data of the purchase button.
const CallbackBuyPremium = "buy_premium"

// HandleCommand records the sender, rejects banned users and non-admins using admin
// commands, and dispatches to the command's handler.
func (h *MessageHandler) HandleCommand(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	name, _ := parseCommand(message.Text)
	userID := message.From.ID
	logPrefix := fmt.Sprintf("[Cmd:%s User:%d]", name, userID)

	h.access.SaveUser(ctx, message.From)
	if h.access.IsBanned(ctx, userID) {
		log.Printf("%s Banned user rejected", logPrefix)
		return h.reply(ctx, bot, message, "MsgBanned", nil)
	}

	cmd := h.GetCommand(name)
	if cmd == nil {
		log.Printf("%s No handler found", logPrefix)
		return h.reply(ctx, bot, message, "MsgErrorUnknownCommand", nil)
	}
	if cmd.AdminOnly && !h.access.IsAdmin(userID) {
		log.Printf("%s Non-admin user attempted to use an admin command.", logPrefix)
		return h.reply(ctx, bot, message, "MsgErrorRequiresAdmin", nil)
	}
	return cmd.Handler(ctx, bot, message)
}

// HandleStart greets the user. Premium members get their channel invites, everybody else
// gets the purchase button.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	userID := message.From.ID
	localizer := h.getLocalizer(message.From)
	isPremium := h.access.IsPremium(ctx, userID)
	log.Printf("[Cmd:start User:%d] User @%s started the bot - Premium: %t", userID, message.From.Username, isPremium)

	if isPremium {
		res := h.inviter.InviteIfEligible(ctx, userID)
		log.Printf("[Cmd:start User:%d] Channel invites: %+v", userID, res)
		return h.sendSuccess(ctx, bot, message.Chat.ID, locales.GetMessage(localizer, "MsgWelcomePremium", nil, nil))
	}

	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnBuyPremium", nil, nil)).WithCallbackData(CallbackBuyPremium),
		),
	)
	msg := tu.Message(tu.ID(message.Chat.ID), locales.GetMessage(localizer, "MsgWelcomeRegular", nil, nil)).
		WithReplyMarkup(keyboard)
	if _, err := bot.SendMessage(ctx, msg); err != nil {
		log.Printf("[Cmd:start User:%d] Error sending welcome message: %v", userID, err)
	}
	return nil
}

// HandleHelp lists the commands available to the sender.
func (h *MessageHandler) HandleHelp(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	isAdmin := h.access.IsAdmin(message.From.ID)
	localizer := h.getLocalizer(message.From)

	var helpText strings.Builder
	helpText.WriteString(locales.GetMessage(localizer, "MsgHelpHeader", nil, nil) + "\n")
	for _, cmd := range h.commands {
		if cmd.AdminOnly && !isAdmin {
			continue
		}
		helpText.WriteString(fmt.Sprintf("/%s - %s\n", cmd.Command, locales.GetMessage(localizer, cmd.Description, nil, nil)))
	}

	footerKey := "MsgHelpFooterUser"
	if isAdmin {
		footerKey = "MsgHelpFooterAdmin"
	}
	helpText.WriteString(locales.GetMessage(localizer, footerKey, nil, nil))

	return h.sendLongText(ctx, bot, message.Chat.ID, helpText.String())
}

// SetupCommands registers the command menu: public commands for everyone and
// the full list in the admin's private chat.
func (h *MessageHandler) SetupCommands(ctx context.Context, bot telegoapi.BotAPI) error {
	localizer := locales.NewLocalizer()

	var public, all []telego.BotCommand
	for _, cmd := range h.commands {
		botCmd := telego.BotCommand{
			Command:     cmd.Command,
			Description: locales.GetMessage(localizer, cmd.Description, nil, nil),
		}
		all = append(all, botCmd)
		if !cmd.AdminOnly {
			public = append(public, botCmd)
		}
	}

	err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: public,
		Scope:    &telego.BotCommandScopeDefault{Type: telego.ScopeTypeDefault},
	})
	if err != nil {
		return fmt.Errorf("failed to set default bot commands: %w", err)
	}

	err = bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: all,
		Scope:    &telego.BotCommandScopeChat{Type: telego.ScopeTypeChat, ChatID: tu.ID(h.access.AdminID())},
	})
	if err != nil {
		return fmt.Errorf("failed to set admin bot commands: %w", err)
	}
	log.Printf("Successfully set %d public and %d admin bot commands.", len(public), len(all))
	return nil
}

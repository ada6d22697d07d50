package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"premium-bot/internal/database"
	"premium-bot/internal/database/models"
	"premium-bot/internal/invites"
	"premium-bot/internal/locales"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

const listDateLayout = "2006-01-02 15:04"

// userIDArg parses the first argument as a user id, replying with usage or a validation error.
func (h *MessageHandler) userIDArg(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) (int64, bool) {
	name, args := parseCommand(message.Text)
	if len(args) == 0 {
		_ = h.usage(ctx, bot, message, name, "<user_id>")
		return 0, false
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		log.Printf("[Cmd:%s User:%d] %v", name, message.From.ID, err)
		_ = h.reply(ctx, bot, message, "MsgErrorInvalidUserID", nil)
		return 0, false
	}
	return userID, true
}

// HandleAddPremium grants premium membership and sends the member's channel invites.
func (h *MessageHandler) HandleAddPremium(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	userID, ok := h.userIDArg(ctx, bot, message)
	if !ok {
		return nil
	}
	data := map[string]interface{}{"UserID": userID}

	err := h.premium.AddPremium(ctx, models.PremiumMember{
		UserID:    userID,
		AddedDate: time.Now(),
		AddedBy:   message.From.ID,
	})
	switch {
	case errors.Is(err, database.ErrAlreadyExists):
		return h.reply(ctx, bot, message, "MsgPremiumExists", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("add premium %d: %w", userID, err))
	}

	log.Printf("[Cmd:addpremium User:%d] Admin added user %d to premium members", message.From.ID, userID)
	_ = h.reply(ctx, bot, message, "MsgPremiumAdded", data)

	res := h.inviter.InviteIfEligible(ctx, userID)
	if res.Channels > 0 {
		return h.reply(ctx, bot, message, "MsgInviteReport", map[string]interface{}{
			"UserID":  userID,
			"Sent":    res.Sent,
			"Skipped": res.Skipped,
			"Failed":  res.Failed,
		})
	}
	return nil
}

// HandleRemovePremium revokes premium membership.
func (h *MessageHandler) HandleRemovePremium(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	userID, ok := h.userIDArg(ctx, bot, message)
	if !ok {
		return nil
	}
	data := map[string]interface{}{"UserID": userID}

	err := h.premium.RemovePremium(ctx, userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return h.reply(ctx, bot, message, "MsgPremiumNotFound", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("remove premium %d: %w", userID, err))
	}
	log.Printf("[Cmd:removepremium User:%d] Admin removed user %d from premium members", message.From.ID, userID)
	return h.reply(ctx, bot, message, "MsgPremiumRemoved", data)
}

// HandleBanUser adds a ban record. The admin cannot ban itself.
func (h *MessageHandler) HandleBanUser(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	userID, ok := h.userIDArg(ctx, bot, message)
	if !ok {
		return nil
	}
	if h.access.IsAdmin(userID) {
		return h.reply(ctx, bot, message, "MsgBanAdminRefused", nil)
	}
	data := map[string]interface{}{"UserID": userID}

	err := h.bans.Ban(ctx, models.Ban{
		UserID:     userID,
		BannedDate: time.Now(),
		BannedBy:   message.From.ID,
	})
	switch {
	case errors.Is(err, database.ErrAlreadyExists):
		return h.reply(ctx, bot, message, "MsgBanExists", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("ban %d: %w", userID, err))
	}
	log.Printf("[Cmd:banuser User:%d] Admin banned user %d", message.From.ID, userID)
	return h.reply(ctx, bot, message, "MsgBanAdded", data)
}

// HandleUnbanUser removes a ban record.
func (h *MessageHandler) HandleUnbanUser(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	userID, ok := h.userIDArg(ctx, bot, message)
	if !ok {
		return nil
	}
	data := map[string]interface{}{"UserID": userID}

	err := h.bans.Unban(ctx, userID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return h.reply(ctx, bot, message, "MsgBanNotFound", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("unban %d: %w", userID, err))
	}
	log.Printf("[Cmd:unbanuser User:%d] Admin unbanned user %d", message.From.ID, userID)
	return h.reply(ctx, bot, message, "MsgBanRemoved", data)
}

// HandleListPremium lists premium members.
func (h *MessageHandler) HandleListPremium(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	members, err := h.premium.ListPremium(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("list premium: %w", err))
	}
	if len(members) == 0 {
		return h.reply(ctx, bot, message, "MsgListPremiumEmpty", nil)
	}

	localizer := h.getLocalizer(message.From)
	lines := []string{locales.GetMessage(localizer, "MsgListPremiumHeader", nil, nil)}
	for i, member := range members {
		lines = append(lines, locales.GetMessage(localizer, "MsgListPremiumItem", map[string]interface{}{
			"Index":  i + 1,
			"UserID": member.UserID,
			"Date":   member.AddedDate.Local().Format(listDateLayout),
		}, nil))
	}
	return h.sendLongText(ctx, bot, message.Chat.ID, strings.Join(lines, "\n"))
}

// HandleListBanned lists banned users.
func (h *MessageHandler) HandleListBanned(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	bans, err := h.bans.ListBans(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("list bans: %w", err))
	}
	if len(bans) == 0 {
		return h.reply(ctx, bot, message, "MsgListBannedEmpty", nil)
	}

	localizer := h.getLocalizer(message.From)
	lines := []string{locales.GetMessage(localizer, "MsgListBannedHeader", nil, nil)}
	for i, ban := range bans {
		lines = append(lines, locales.GetMessage(localizer, "MsgListBannedItem", map[string]interface{}{
			"Index":  i + 1,
			"UserID": ban.UserID,
			"Date":   ban.BannedDate.Local().Format(listDateLayout),
		}, nil))
	}
	return h.sendLongText(ctx, bot, message.Chat.ID, strings.Join(lines, "\n"))
}

// HandleAddChannel registers a premium channel. The title is taken from Telegram when
// the bot can see the chat, otherwise from the arguments.
func (h *MessageHandler) HandleAddChannel(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	_, args := parseCommand(message.Text)
	if len(args) == 0 {
		return h.usage(ctx, bot, message, "addchannel", "<channel_id> [channel_name]")
	}

	channelID := invites.NormalizeChannelID(args[0])
	name := models.DefaultChannelName
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}

	chat, err := bot.GetChat(ctx, &telego.GetChatParams{ChatID: invites.ChatID(channelID)})
	if err != nil {
		log.Printf("[Cmd:addchannel User:%d] Could not get chat info for %s: %v", message.From.ID, channelID, err)
	} else if chat != nil && chat.Title != "" {
		name = chat.Title
	}

	data := map[string]interface{}{"ChannelID": channelID, "Name": name}
	err = h.channels.AddChannel(ctx, models.Channel{
		ChannelID:   channelID,
		ChannelName: name,
		AddedDate:   time.Now(),
		AddedBy:     message.From.ID,
	})
	switch {
	case errors.Is(err, database.ErrAlreadyExists):
		return h.reply(ctx, bot, message, "MsgChannelExists", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("add channel %s: %w", channelID, err))
	}
	log.Printf("[Cmd:addchannel User:%d] Admin added channel %s (%s) to premium channels", message.From.ID, channelID, name)
	return h.reply(ctx, bot, message, "MsgChannelAdded", data)
}

// HandleListChannels lists premium channels.
func (h *MessageHandler) HandleListChannels(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	channels, err := h.channels.ListChannels(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("list channels: %w", err))
	}
	if len(channels) == 0 {
		return h.reply(ctx, bot, message, "MsgListChannelsEmpty", nil)
	}

	localizer := h.getLocalizer(message.From)
	lines := []string{locales.GetMessage(localizer, "MsgListChannelsHeader", nil, nil)}
	for i, channel := range channels {
		lines = append(lines, locales.GetMessage(localizer, "MsgListChannelsItem", map[string]interface{}{
			"Index":     i + 1,
			"Name":      channel.ChannelName,
			"ChannelID": channel.ChannelID,
			"Date":      channel.AddedDate.Local().Format(listDateLayout),
		}, nil))
	}
	return h.sendLongText(ctx, bot, message.Chat.ID, strings.Join(lines, "\n"))
}

// HandleRemoveChannel deregisters a premium channel.
func (h *MessageHandler) HandleRemoveChannel(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	_, args := parseCommand(message.Text)
	if len(args) == 0 {
		return h.usage(ctx, bot, message, "removechannel", "<channel_id>")
	}
	channelID := invites.NormalizeChannelID(args[0])
	data := map[string]interface{}{"ChannelID": channelID}

	err := h.channels.RemoveChannel(ctx, channelID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return h.reply(ctx, bot, message, "MsgChannelNotFound", data)
	case err != nil:
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("remove channel %s: %w", channelID, err))
	}
	log.Printf("[Cmd:removechannel User:%d] Admin removed channel %s from premium channels", message.From.ID, channelID)
	return h.reply(ctx, bot, message, "MsgChannelRemoved", data)
}

type userCounts struct {
	total, premium, banned int64
}

func (h *MessageHandler) countUsers(ctx context.Context) (userCounts, error) {
	var c userCounts
	var err error
	if c.total, err = h.users.CountUsers(ctx); err != nil {
		return c, err
	}
	if c.premium, err = h.premium.CountPremium(ctx); err != nil {
		return c, err
	}
	if c.banned, err = h.bans.CountBans(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// HandleTotalUsers reports total, premium, banned and regular user counts.
func (h *MessageHandler) HandleTotalUsers(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	c, err := h.countUsers(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("count users: %w", err))
	}
	// Premium or banned ids never seen by the bot can push this below zero.
	regular := max(c.total-c.premium-c.banned, 0)
	return h.reply(ctx, bot, message, "MsgTotalUsers", map[string]interface{}{
		"Total":   c.total,
		"Premium": c.premium,
		"Banned":  c.banned,
		"Regular": regular,
	})
}

// HandleStats reports user counts, channel count and today's premium broadcasts.
func (h *MessageHandler) HandleStats(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	c, err := h.countUsers(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("count users: %w", err))
	}
	channels, err := h.channels.CountChannels(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("count channels: %w", err))
	}
	broadcasts, err := h.logs.CountBroadcastsSince(ctx, startOfDay(time.Now()))
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, fmt.Errorf("count broadcasts: %w", err))
	}
	return h.reply(ctx, bot, message, "MsgStats", map[string]interface{}{
		"Total":      c.total,
		"Premium":    c.premium,
		"Banned":     c.banned,
		"Channels":   channels,
		"Broadcasts": broadcasts,
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package handlers

import (
	"context"
	"log"

	"premium-bot/internal/database"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// Command represents a bot command, mapping the command string to its description and handler function.
type Command struct {
	Command     string                                                        // The command string (e.g., "start").
	Description string                                                        // Message ID of the description shown in /help and the command menu.
	AdminOnly   bool                                                          // Non-admins get an authorization error.
	Handler     func(context.Context, telegoapi.BotAPI, telego.Message) error // The function to execute when the command is received.
}

// HandlerDeps holds the dependencies required by the MessageHandler.
type HandlerDeps struct {
	Access      AccessChecker
	Users       database.UserRepository
	Premium     database.PremiumRepository
	Bans        database.BanRepository
	Channels    database.ChannelRepository
	Logs        database.BroadcastLogRepository
	Inviter     ChannelInviter
	Broadcaster Broadcaster
	Relay       Relayer
	// AdminContact is the Telegram handle shown in purchase info.
	AdminContact string
}

// MessageHandler handles incoming Telegram commands, messages and callbacks.
type MessageHandler struct {
	access      AccessChecker
	users       database.UserRepository
	premium     database.PremiumRepository
	bans        database.BanRepository
	channels    database.ChannelRepository
	logs        database.BroadcastLogRepository
	inviter     ChannelInviter
	broadcaster Broadcaster
	relay       Relayer

	adminContact string

	// commands holds the list of available bot commands.
	commands []Command
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
// It sets up dependencies and defines the available bot commands.
func NewMessageHandler(deps HandlerDeps) *MessageHandler {
	if deps.Access == nil || deps.Broadcaster == nil || deps.Relay == nil || deps.Inviter == nil {
		log.Fatal("MessageHandler: access checker, broadcaster, relay and inviter are required")
	}
	h := &MessageHandler{
		access:       deps.Access,
		users:        deps.Users,
		premium:      deps.Premium,
		bans:         deps.Bans,
		channels:     deps.Channels,
		logs:         deps.Logs,
		inviter:      deps.Inviter,
		broadcaster:  deps.Broadcaster,
		relay:        deps.Relay,
		adminContact: deps.AdminContact,
	}
	// Descriptions are message IDs, localized on demand.
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDesc", Handler: h.HandleStart},
		{Command: "help", Description: "CmdHelpDesc", Handler: h.HandleHelp},
		{Command: "addpremium", Description: "CmdAddPremiumDesc", AdminOnly: true, Handler: h.HandleAddPremium},
		{Command: "removepremium", Description: "CmdRemovePremiumDesc", AdminOnly: true, Handler: h.HandleRemovePremium},
		{Command: "listpremium", Description: "CmdListPremiumDesc", AdminOnly: true, Handler: h.HandleListPremium},
		{Command: "addchannel", Description: "CmdAddChannelDesc", AdminOnly: true, Handler: h.HandleAddChannel},
		{Command: "listchannels", Description: "CmdListChannelsDesc", AdminOnly: true, Handler: h.HandleListChannels},
		{Command: "removechannel", Description: "CmdRemoveChannelDesc", AdminOnly: true, Handler: h.HandleRemoveChannel},
		{Command: "banuser", Description: "CmdBanUserDesc", AdminOnly: true, Handler: h.HandleBanUser},
		{Command: "unbanuser", Description: "CmdUnbanUserDesc", AdminOnly: true, Handler: h.HandleUnbanUser},
		{Command: "listbanned", Description: "CmdListBannedDesc", AdminOnly: true, Handler: h.HandleListBanned},
		{Command: "totalusers", Description: "CmdTotalUsersDesc", AdminOnly: true, Handler: h.HandleTotalUsers},
		{Command: "allbroadcast", Description: "CmdAllBroadcastDesc", AdminOnly: true, Handler: h.HandleAllBroadcast},
		{Command: "done", Description: "CmdDoneDesc", AdminOnly: true, Handler: h.HandleDone},
		{Command: "stats", Description: "CmdStatsDesc", AdminOnly: true, Handler: h.HandleStats},
	}
	return h
}

// GetCommand retrieves the command registered under name (e.g., "start").
// It returns nil if the command is not found.
func (h *MessageHandler) GetCommand(name string) *Command {
	for i := range h.commands {
		if h.commands[i].Command == name {
			return &h.commands[i]
		}
	}
	return nil
}

// Commands returns the registered commands in menu order.
func (h *MessageHandler) Commands() []Command {
	return h.commands
}

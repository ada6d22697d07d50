package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"premium-bot/internal/broadcast"
	"premium-bot/internal/database"
	"premium-bot/internal/database/models"
	"premium-bot/internal/invites"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
	}{
		{"/start", "start", []string{}},
		{"/AddPremium 42", "addpremium", []string{"42"}},
		{"/addchannel@premium_bot -100123 My Channel", "addchannel", []string{"-100123", "My", "Channel"}},
		{"hello", "", nil},
		{"", "", nil},
	}
	for _, tt := range tests {
		name, args := parseCommand(tt.text)
		assert.Equal(t, tt.name, name, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	text := "aaaa\nbbbb\ncccc\n"
	chunks := splitMessage(text, 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, chunks)
	assert.Equal(t, text, strings.Join(chunks, ""))

	long := strings.Repeat("ж", 25)
	chunks = splitMessage(long, 10)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestHandleCommand_AdminOnlyDenied(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testUserID)
	f.expectReply(testUserID, "❌ Only admin can use this command!")

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/addpremium 5"))

	assert.NoError(t, err)
	f.assertExpectations(t)
	f.premium.AssertNotCalled(t, "AddPremium", mock.Anything, mock.Anything)
}

func TestHandleCommand_Banned(t *testing.T) {
	f := newFixture(t)
	f.bans.On("IsBanned", mock.Anything, testUserID).Return(true, nil)
	f.expectReply(testUserID, "❌ You are banned from using this bot.")

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/start"))

	assert.NoError(t, err)
	f.assertExpectations(t)
	f.users.AssertCalled(t, "SaveUser", mock.Anything, testUserID, "someone")
}

func TestHandleCommand_Unknown(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testUserID)
	f.expectReply(testUserID, "❓ Unknown command. Send /help to see the available commands.")

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/nope"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestHandleStart(t *testing.T) {
	t.Run("premium member gets invites", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testUserID)
		f.premium.On("IsPremium", mock.Anything, testUserID).Return(true, nil)
		f.inviter.On("InviteIfEligible", mock.Anything, testUserID).Return(invites.Result{Channels: 1, Sent: 1})
		f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			return strings.HasPrefix(p.Text, "🎉 Welcome Premium Member!") && p.ReplyMarkup == nil
		})).Return(&telego.Message{}, nil).Once()

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/start"))

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("regular user gets purchase button", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testUserID)
		f.premium.On("IsPremium", mock.Anything, testUserID).Return(false, nil)
		f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			kb, ok := p.ReplyMarkup.(*telego.InlineKeyboardMarkup)
			return ok && len(kb.InlineKeyboard) == 1 &&
				kb.InlineKeyboard[0][0].CallbackData == CallbackBuyPremium
		})).Return(&telego.Message{}, nil).Once()

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/start"))

		assert.NoError(t, err)
		f.assertExpectations(t)
		f.inviter.AssertNotCalled(t, "InviteIfEligible", mock.Anything, mock.Anything)
	})
}

func TestHandleHelp_HidesAdminCommands(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testUserID)
	var sent string
	f.bot.On("SendMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*telego.SendMessageParams).Text }).
		Return(&telego.Message{}, nil).Once()

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testUserID, "/help"))

	assert.NoError(t, err)
	assert.Contains(t, sent, "/start")
	assert.NotContains(t, sent, "/addpremium")
}

func TestHandleAddPremium(t *testing.T) {
	t.Run("added and invited", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.premium.On("AddPremium", mock.Anything, mock.MatchedBy(func(m models.PremiumMember) bool {
			return m.UserID == 42 && m.AddedBy == testAdminID && !m.AddedDate.IsZero()
		})).Return(nil).Once()
		f.inviter.On("InviteIfEligible", mock.Anything, int64(42)).Return(invites.Result{Channels: 2, Sent: 1, Skipped: 1})
		f.expectReply(testAdminID, "✅ User 42 has been added to premium members!")
		f.expectReply(testAdminID, "📨 Channel invites for 42: 1 sent, 1 already joined, 0 failed.")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addpremium 42"))

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("already premium", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.premium.On("AddPremium", mock.Anything, mock.Anything).Return(database.ErrAlreadyExists).Once()
		f.expectReply(testAdminID, "User 42 is already a premium member!")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addpremium 42"))

		assert.NoError(t, err)
		f.assertExpectations(t)
		f.inviter.AssertNotCalled(t, "InviteIfEligible", mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.expectReply(testAdminID, "❌ Invalid user ID! Please provide a valid number.")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addpremium abc"))

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("missing argument", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.expectReply(testAdminID, "Usage: /addpremium <user_id>")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addpremium"))

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.premium.On("AddPremium", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		f.expectReply(testAdminID, "❌ Something went wrong. Please try again later.")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addpremium 42"))

		assert.Error(t, err)
		f.assertExpectations(t)
	})
}

func TestHandleRemovePremium_NotFound(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testAdminID)
	f.premium.On("RemovePremium", mock.Anything, int64(42)).Return(database.ErrNotFound).Once()
	f.expectReply(testAdminID, "❌ User 42 is not a premium member!")

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/removepremium 42"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestHandleBanUser(t *testing.T) {
	t.Run("bans user", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.bans.On("Ban", mock.Anything, mock.MatchedBy(func(b models.Ban) bool {
			return b.UserID == 42 && b.BannedBy == testAdminID
		})).Return(nil).Once()
		f.expectReply(testAdminID, "✅ User 42 has been banned!")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/banuser 42"))

		assert.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("refuses admin", func(t *testing.T) {
		f := newFixture(t)
		f.notBanned(testAdminID)
		f.expectReply(testAdminID, "❌ The admin account cannot be banned.")

		err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/banuser 100"))

		assert.NoError(t, err)
		f.assertExpectations(t)
		f.bans.AssertNotCalled(t, "Ban", mock.Anything, mock.Anything)
	})
}

func TestHandleAddChannel(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testAdminID)
	f.bot.On("GetChat", mock.Anything, mock.MatchedBy(func(p *telego.GetChatParams) bool {
		return p.ChatID.ID == -100123
	})).Return(&telego.ChatFullInfo{Title: "VIP Lounge"}, nil).Once()
	f.channels.On("AddChannel", mock.Anything, mock.MatchedBy(func(c models.Channel) bool {
		return c.ChannelID == "-100123" && c.ChannelName == "VIP Lounge" && c.AddedBy == testAdminID
	})).Return(nil).Once()
	f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return strings.Contains(p.Text, "VIP Lounge") && strings.Contains(p.Text, "-100123")
	})).Return(&telego.Message{}, nil).Once()

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/addchannel 100123 Fallback"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestHandleListPremium_Empty(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testAdminID)
	f.premium.On("ListPremium", mock.Anything).Return([]models.PremiumMember{}, nil).Once()
	f.expectReply(testAdminID, "📋 No premium users found!")

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/listpremium"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestHandleTotalUsers_RegularNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testAdminID)
	f.users.On("CountUsers", mock.Anything).Return(int64(3), nil)
	f.premium.On("CountPremium", mock.Anything).Return(int64(3), nil)
	f.bans.On("CountBans", mock.Anything).Return(int64(2), nil)
	f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return strings.Contains(p.Text, "👤 Regular Users: 0")
	})).Return(&telego.Message{}, nil).Once()

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/totalusers"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestHandleDone(t *testing.T) {
	tests := []struct {
		name    string
		summary broadcast.Summary
		err     error
		reply   string
		wantErr bool
	}{
		{name: "no session", err: broadcast.ErrNoSession, reply: "❌ No active broadcast session! Use /allbroadcast first."},
		{name: "empty", err: broadcast.ErrEmptySession, reply: "❌ No messages to broadcast! Send some messages first."},
		{name: "no recipients", err: broadcast.ErrNoRecipients, reply: "❌ No active users to broadcast to!"},
		{name: "failure", err: errors.New("db down"), reply: "❌ All broadcast failed. The session has been reset.", wantErr: true},
		{
			name:    "summary",
			summary: broadcast.Summary{Successful: 2, Failed: 1, Total: 3, Messages: 2},
			reply:   "📊 All Broadcast Summary:\n✅ Successful: 2\n❌ Failed: 1\n📋 Total: 3\n📩 Messages sent: 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.notBanned(testAdminID)
			f.broadcaster.On("Flush", mock.Anything, testAdminID).Return(tt.summary, tt.err).Once()
			f.expectReply(testAdminID, tt.reply)

			err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/done"))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestHandleAllBroadcast_Restart(t *testing.T) {
	f := newFixture(t)
	f.notBanned(testAdminID)
	f.broadcaster.On("Begin", testAdminID).Return(true).Once()
	f.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return strings.HasPrefix(p.Text, "⚠️ Previously collected messages were discarded.")
	})).Return(&telego.Message{}, nil).Once()

	err := f.handler.HandleCommand(context.Background(), f.bot, commandMessage(testAdminID, "/allbroadcast"))

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestSetupCommands(t *testing.T) {
	f := newFixture(t)
	f.bot.On("SetMyCommands", mock.Anything, mock.MatchedBy(func(p *telego.SetMyCommandsParams) bool {
		_, ok := p.Scope.(*telego.BotCommandScopeDefault)
		return ok && len(p.Commands) == 2
	})).Return(nil).Once()
	f.bot.On("SetMyCommands", mock.Anything, mock.MatchedBy(func(p *telego.SetMyCommandsParams) bool {
		scope, ok := p.Scope.(*telego.BotCommandScopeChat)
		return ok && scope.ChatID.ID == testAdminID && len(p.Commands) == len(f.handler.Commands())
	})).Return(nil).Once()

	assert.NoError(t, f.handler.SetupCommands(context.Background(), f.bot))
	f.bot.AssertExpectations(t)
}

package relay

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"premium-bot/internal/locales"
	"premium-bot/internal/scheduler"
	"premium-bot/pkg/telegoapi/telegoapitest"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminID = int64(1)

func TestMain(m *testing.M) {
	locales.Init("en")
	os.Exit(m.Run())
}

func TestParseReplyTarget(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantID int64
		wantOK bool
	}{
		{"Banner", FormatSenderBanner("alice", 12345) + "hello", 12345, true},
		{"FirstMarkerWins", "ID: 1 and ID: 2", 1, true},
		{"NoMarker", "💬 Message from User:\n👤 @alice\n\nhello", 0, false},
		{"MarkerWithoutDigits", "ID: abc", 0, false},
		{"Overflow", "ID: 99999999999999999999999", 0, false},
		{"Empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseReplyTarget(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestFormatSenderBanner(t *testing.T) {
	assert.Equal(t, "💬 Message from User:\n👤 @alice (ID: 42)\n\n", FormatSenderBanner("alice", 42))
}

func TestToAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("ForwardsAndSchedulesAckDeletion", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		sched := scheduler.New(time.Second)
		r := New(bot, adminID, sched, 10*time.Millisecond)

		bot.On("SendMessage", ctx, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			return p.ChatID.ID == 42 && p.Text == "🚀 Message sent to admin, wait for reply!"
		})).Return(&telego.Message{MessageID: 77}, nil).Once()
		bot.On("SendMessage", ctx, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			return p.ChatID.ID == adminID && p.Text == "💬 Message from User:\n👤 @No username (ID: 42)\n\nneed help"
		})).Return(&telego.Message{}, nil).Once()

		deleted := make(chan struct{})
		bot.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(p *telego.DeleteMessageParams) bool {
			return p.ChatID.ID == 42 && p.MessageID == 77
		})).Run(func(mock.Arguments) { close(deleted) }).Return(nil)

		err := r.ToAdmin(ctx, telego.Message{
			Chat: telego.Chat{ID: 42},
			From: &telego.User{ID: 42},
			Text: "need help",
		})
		require.NoError(t, err)

		select {
		case <-deleted:
		case <-time.After(time.Second):
			t.Fatal("ack was not deleted")
		}
		bot.AssertExpectations(t)
	})

	t.Run("AdminToSelfIsNoop", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)

		err := r.ToAdmin(ctx, telego.Message{Chat: telego.Chat{ID: adminID}, From: &telego.User{ID: adminID}, Text: "hi"})
		assert.NoError(t, err)
		bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})

	t.Run("UnsupportedKindGetsNotice", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)
		bot.On("SendMessage", ctx, telegoapitest.TextTo(42)).Return(&telego.Message{}, nil).Once()

		err := r.ToAdmin(ctx, telego.Message{
			Chat:    telego.Chat{ID: 42},
			From:    &telego.User{ID: 42},
			Sticker: &telego.Sticker{FileID: "st"},
		})
		assert.NoError(t, err)
		bot.AssertNotCalled(t, "SendMessage", ctx, telegoapitest.TextTo(adminID))
		bot.AssertExpectations(t)
	})

	t.Run("ForwardFailureIsReturned", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		sched := scheduler.New(0)
		defer sched.Shutdown()
		r := New(bot, adminID, sched, time.Hour)
		bot.On("SendMessage", ctx, telegoapitest.TextTo(42)).Return(&telego.Message{MessageID: 5}, nil)
		bot.On("SendPhoto", ctx, telegoapitest.PhotoTo(adminID)).Return(nil, errors.New("chat not found"))

		err := r.ToAdmin(ctx, telego.Message{
			Chat:  telego.Chat{ID: 42},
			From:  &telego.User{ID: 42, Username: "bob"},
			Photo: []telego.PhotoSize{{FileID: "p"}},
		})
		assert.Error(t, err)
		assert.Equal(t, 1, sched.Pending())
	})
}

func TestAdminReply(t *testing.T) {
	ctx := context.Background()
	relayed := &telego.Message{Text: FormatSenderBanner("alice", 12345) + "question"}

	t.Run("DeliversToMarkedUser", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)
		bot.On("SendMessage", ctx, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
			return p.ChatID.ID == 12345 && p.Text == "💬 Admin Reply:\n\nanswer"
		})).Return(&telego.Message{}, nil)

		target, err := r.AdminReply(ctx, telego.Message{Text: "answer", ReplyToMessage: relayed})
		require.NoError(t, err)
		assert.Equal(t, int64(12345), target)
		bot.AssertExpectations(t)
	})

	t.Run("FallsBackToCaption", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)
		bot.On("SendDocument", ctx, mock.MatchedBy(func(p *telego.SendDocumentParams) bool {
			return p.ChatID.ID == 777 && p.Caption == "💬 Admin Reply:\n\nhere"
		})).Return(&telego.Message{}, nil)

		replied := &telego.Message{Caption: FormatSenderBanner("bob", 777), Photo: []telego.PhotoSize{{FileID: "x"}}}
		target, err := r.AdminReply(ctx, telego.Message{
			Document:       &telego.Document{FileID: "doc"},
			Caption:        "here",
			ReplyToMessage: replied,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(777), target)
	})

	t.Run("NoMarkerIsDropped", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)

		_, err := r.AdminReply(ctx, telego.Message{Text: "answer", ReplyToMessage: &telego.Message{Text: "just a note"}})
		assert.ErrorIs(t, err, ErrNoReplyTarget)
		bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	})

	t.Run("DeliveryFailure", func(t *testing.T) {
		bot := new(telegoapitest.MockBot)
		r := New(bot, adminID, scheduler.New(0), 0)
		bot.On("SendMessage", ctx, telegoapitest.TextTo(12345)).Return(nil, errors.New("blocked"))

		target, err := r.AdminReply(ctx, telego.Message{Text: "answer", ReplyToMessage: relayed})
		assert.Error(t, err)
		assert.Equal(t, int64(12345), target)
	})
}

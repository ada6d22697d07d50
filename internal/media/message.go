// Package media models the message kinds the bot can relay and broadcast.
package media

import (
	"context"
	"fmt"

	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Kind names a supported message kind.
type Kind string

const (
	KindText     Kind = "text"
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// Message is one of Text, Photo, Video or Document.
type Message interface {
	Kind() Kind
	isMessage()
}

// Text is a plain text message.
type Text struct {
	Body string
}

// Photo references an uploaded photo by file id.
type Photo struct {
	FileID  string
	Caption string
}

// Video references an uploaded video by file id.
type Video struct {
	FileID  string
	Caption string
}

// Document references an uploaded file by file id.
type Document struct {
	FileID  string
	Caption string
}

func (Text) Kind() Kind     { return KindText }
func (Photo) Kind() Kind    { return KindPhoto }
func (Video) Kind() Kind    { return KindVideo }
func (Document) Kind() Kind { return KindDocument }

func (Text) isMessage()     {}
func (Photo) isMessage()    {}
func (Video) isMessage()    {}
func (Document) isMessage() {}

// FromTelego extracts the relayable content of msg.
// It returns false for kinds the bot does not relay (stickers, voice, polls...).
func FromTelego(msg telego.Message) (Message, bool) {
	switch {
	case msg.Text != "":
		return Text{Body: msg.Text}, true
	case len(msg.Photo) > 0:
		// Telegram lists sizes ascending; the last one is the original.
		return Photo{FileID: msg.Photo[len(msg.Photo)-1].FileID, Caption: msg.Caption}, true
	case msg.Document != nil:
		return Document{FileID: msg.Document.FileID, Caption: msg.Caption}, true
	case msg.Video != nil:
		return Video{FileID: msg.Video.FileID, Caption: msg.Caption}, true
	default:
		return nil, false
	}
}

// Summary returns the text recorded in audit logs for m.
func Summary(m Message) string {
	if t, ok := m.(Text); ok {
		return t.Body
	}
	return "Media message"
}

// Send delivers m to chatID with prefix prepended to its text or caption.
func Send(ctx context.Context, bot telegoapi.BotAPI, chatID telego.ChatID, m Message, prefix string) (*telego.Message, error) {
	switch v := m.(type) {
	case Text:
		return bot.SendMessage(ctx, tu.Message(chatID, prefix+v.Body))
	case Photo:
		return bot.SendPhoto(ctx, tu.Photo(chatID, tu.FileFromID(v.FileID)).WithCaption(prefix+v.Caption))
	case Video:
		return bot.SendVideo(ctx, tu.Video(chatID, tu.FileFromID(v.FileID)).WithCaption(prefix+v.Caption))
	case Document:
		return bot.SendDocument(ctx, tu.Document(chatID, tu.FileFromID(v.FileID)).WithCaption(prefix+v.Caption))
	default:
		return nil, fmt.Errorf("unsupported message type %T", m)
	}
}

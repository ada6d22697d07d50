package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"premium-bot/internal/locales"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// MaxMessageLength is Telegram's limit for one text message.
const MaxMessageLength = 4096

// sendSuccess sends a message to the chat. Delivery failures are only logged.
func (h *MessageHandler) sendSuccess(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	_, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
	return nil
}

// sendError sends a generic, localized error message to the user and returns the original error
// so the update loop can report it.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, chatID int64, originalErr error) error {
	log.Printf("Error for user in chat %d: %v", chatID, originalErr)

	errMsg := locales.Default("MsgErrorGeneral", nil)
	if _, sendErr := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), errMsg)); sendErr != nil {
		log.Printf("Error sending generic error message to chat %d: %v", chatID, sendErr)
	}
	return originalErr
}

// sendLongText sends text split on line boundaries into chunks Telegram accepts.
func (h *MessageHandler) sendLongText(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, MaxMessageLength) {
		if _, err := bot.SendMessage(ctx, tu.Message(tu.ID(chatID), chunk)); err != nil {
			log.Printf("Error sending message chunk to chat %d: %v", chatID, err)
			return nil
		}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen > limit {
			flush()
		}
		for lineLen > limit {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen -= limit
		}
		current.WriteString(line)
		currentLen += lineLen
	}
	flush()
	return chunks
}

// getLocalizer determines the best localizer for a given user.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	if user != nil && user.LanguageCode != "" {
		return locales.NewLocalizer(user.LanguageCode)
	}
	return locales.NewLocalizer()
}

// parseCommand splits "/cmd@bot arg1 arg2" into "cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), fields[1:]
}

// parseUserID parses a Telegram user id argument.
func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", arg, err)
	}
	return id, nil
}

// usage replies with the usage line of command.
func (h *MessageHandler) usage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, command, args string) error {
	text := locales.GetMessage(h.getLocalizer(message.From), "MsgUsage", map[string]interface{}{
		"Command": command,
		"Args":    args,
	}, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, text)
}

// reply sends the localized message msgID to the chat of message.
func (h *MessageHandler) reply(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, msgID string, data map[string]interface{}) error {
	text := locales.GetMessage(h.getLocalizer(message.From), msgID, data, nil)
	return h.sendSuccess(ctx, bot, message.Chat.ID, text)
}

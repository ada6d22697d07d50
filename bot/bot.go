package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"premium-bot/internal/metrics"
	telegoapi "premium-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"go.uber.org/ratelimit"
)

const (
	// DefaultUpdateTimeout bounds the handling of one regular update.
	DefaultUpdateTimeout = 30 * time.Second
	// DefaultBroadcastTimeout bounds updates that fan out to many users.
	DefaultBroadcastTimeout = 10 * time.Minute
)

// UpdateHandler is implemented by handlers.MessageHandler.
type UpdateHandler interface {
	HandleCommand(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error
	HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error
	HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error
	SetupCommands(ctx context.Context, bot telegoapi.BotAPI) error
	LongRunning(message telego.Message) bool
}

// Bot runs the update loop. Updates of one chat are handled strictly in arrival
// order by a per-chat worker; different chats are handled concurrently.
type Bot struct {
	bot              telegoapi.BotAPI
	updatesChan      <-chan telego.Update
	debug            bool
	handler          UpdateHandler
	ratelimiter      ratelimit.Limiter
	broadcastTimeout time.Duration

	mu     sync.Mutex
	queues map[int64][]telego.Update
	wg     sync.WaitGroup
}

// BotDeps holds the dependencies required by the Bot.
type BotDeps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Debug       bool
	Handler     UpdateHandler
	// BroadcastTimeout replaces the regular timeout for long-running updates.
	BroadcastTimeout time.Duration
	// Limiter throttles update processing. Defaults to 20 updates per second.
	Limiter ratelimit.Limiter
}

// New creates a new Bot instance from its dependencies.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.BroadcastTimeout <= 0 {
		deps.BroadcastTimeout = DefaultBroadcastTimeout
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(20)
	}

	return &Bot{
		bot:              deps.Bot,
		updatesChan:      deps.UpdatesChan,
		debug:            deps.Debug,
		handler:          deps.Handler,
		ratelimiter:      deps.Limiter,
		broadcastTimeout: deps.BroadcastTimeout,
		queues:           make(map[int64][]telego.Update),
	}, nil
}

// Start registers the command menu and processes updates until ctx is done or the
// updates channel closes. It returns after every queued update has been handled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.handler.SetupCommands(ctx, b.bot); err != nil {
		log.Printf("Error setting up bot commands: %v", err)
		sentry.CaptureException(err)
	}
	log.Println("Listening for updates...")

	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			b.wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				b.wg.Wait()
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch appends update to its chat's queue, starting a worker when the chat has none.
func (b *Bot) dispatch(ctx context.Context, update telego.Update) {
	chatID, ok := chatOf(update)
	if !ok {
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		if b.debug {
			log.Printf("Ignoring unhandled update type (ID: %d)", update.UpdateID)
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	pending, running := b.queues[chatID]
	b.queues[chatID] = append(pending, update)
	if !running {
		b.wg.Add(1)
		go b.worker(ctx, chatID)
	}
}

// worker drains one chat's queue and exits once it is empty.
func (b *Bot) worker(ctx context.Context, chatID int64) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		pending := b.queues[chatID]
		if len(pending) == 0 {
			delete(b.queues, chatID)
			b.mu.Unlock()
			return
		}
		update := pending[0]
		b.queues[chatID] = pending[1:]
		b.mu.Unlock()

		b.processUpdate(ctx, update)
	}
}

// processUpdate routes one update to its handler.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			metrics.HandlerErrors.Inc()
			sentry.CurrentHub().Recover(r)
			sentry.Flush(time.Second * 2)
		}
	}()

	// In-flight updates finish on shutdown; only their own timeout stops them.
	timeout := DefaultUpdateTimeout
	if update.Message != nil && b.handler.LongRunning(*update.Message) {
		timeout = b.broadcastTimeout
	}
	processingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var kind string
	var err error
	switch {
	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			log.Printf("Ignoring message %d from chat %d without sender", message.MessageID, message.Chat.ID)
			return
		}
		if strings.HasPrefix(message.Text, "/") {
			kind = "command"
			err = b.handler.HandleCommand(processingCtx, b.bot, message)
		} else {
			kind = "message"
			err = b.handler.HandleMessage(processingCtx, b.bot, message)
		}
	case update.CallbackQuery != nil:
		kind = "callback"
		if b.debug {
			log.Printf("[Callback User:%d] Received callback query with data: %q", update.CallbackQuery.From.ID, update.CallbackQuery.Data)
		}
		err = b.handler.HandleCallbackQuery(processingCtx, b.bot, *update.CallbackQuery)
	}

	metrics.UpdatesTotal.WithLabelValues(kind).Inc()
	if err != nil {
		log.Printf("[Update:%d %s] Handler error: %v", update.UpdateID, kind, err)
		metrics.HandlerErrors.Inc()
		sentry.CaptureException(fmt.Errorf("%s handler error: %w", kind, err))
	} else if b.debug {
		log.Printf("[Update:%d %s] Handler finished successfully", update.UpdateID, kind)
	}
}

// chatOf returns the chat whose queue an update belongs to.
func chatOf(update telego.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil:
		if msg := update.CallbackQuery.Message; msg != nil {
			return msg.GetChat().ID, true
		}
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

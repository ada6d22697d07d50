package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	telegoBot "premium-bot/bot"
	"premium-bot/internal/auth"
	"premium-bot/internal/broadcast"
	"premium-bot/internal/config"
	"premium-bot/internal/database"
	"premium-bot/internal/handlers"
	"premium-bot/internal/httpserver"
	"premium-bot/internal/invites"
	"premium-bot/internal/locales"
	"premium-bot/internal/relay"
	"premium-bot/internal/scheduler"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"
	"go.uber.org/ratelimit"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to MongoDB
	client, db, err := database.ConnectDB(cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		sentry.CaptureException(err)
		log.Printf("Warning: could not ensure MongoDB indexes: %v", err)
	}
	cancelIndexes()

	users := database.NewMongoUserRepository(db)
	premium := database.NewMongoPremiumRepository(db)
	bans := database.NewMongoBanRepository(db)
	channels := database.NewMongoChannelRepository(db)
	broadcastLogs := database.NewMongoBroadcastLogRepository(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	me, err := bot.GetMe(ctx)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to get bot info: %v", err)
	}
	log.Printf("Authorized as @%s (admin: %d)", me.Username, cfg.AdminID)

	sched := scheduler.New(scheduler.DefaultTaskTimeout)
	defer sched.Shutdown()

	checker, err := auth.NewChecker(cfg.AdminID, users, premium, bans)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create access checker: %v", err)
	}

	broadcaster := broadcast.NewManager(bot, users, premium, bans, broadcastLogs, broadcast.Options{
		Concurrency: cfg.BroadcastConcurrency,
		Limiter:     ratelimit.New(cfg.BroadcastRate),
	})

	messageHandler := handlers.NewMessageHandler(handlers.HandlerDeps{
		Access:       checker,
		Users:        users,
		Premium:      premium,
		Bans:         bans,
		Channels:     channels,
		Logs:         broadcastLogs,
		Inviter:      invites.NewInviter(bot, channels, invites.DefaultConcurrency),
		Broadcaster:  broadcaster,
		Relay:        relay.New(bot, cfg.AdminID, sched, cfg.AckDeleteDelay),
		AdminContact: cfg.AdminContact,
	})

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	appBot, err := telegoBot.New(telegoBot.BotDeps{
		Bot:              bot,
		UpdatesChan:      updates,
		Debug:            cfg.Debug,
		Handler:          messageHandler,
		BroadcastTimeout: cfg.BroadcastTimeout,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	var metricsServer *httpserver.Server
	if cfg.MetricsAddr != "" {
		metricsServer = httpserver.New(cfg.MetricsAddr)
		metricsServer.Start()
	}

	// Blocks until shutdown is requested and in-flight updates are done.
	appBot.Start(ctx)

	log.Println("Shutting down bot...")
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down metrics server: %v", err)
		}
		cancel()
	}
	log.Println("Bot shutdown complete.")
}

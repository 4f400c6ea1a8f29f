package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"

	appbot "heartua-bot/bot"
	"heartua-bot/internal/auth"
	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/dialog"
	"heartua-bot/internal/handlers"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/moderation"
	"heartua-bot/internal/publish"
	"heartua-bot/internal/scheduler"
	"heartua-bot/internal/session"
	"heartua-bot/internal/subscription"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	locales.Init()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := database.NewPostgresUserRepository(pool)
	announcementRepo := database.NewPostgresAnnouncementRepository(pool)
	premiumRepo := database.NewPostgresPremiumRepository(pool)
	autopostRepo := database.NewPostgresAutopostRepository(pool)
	pinnedRepo := database.NewPostgresPinnedRepository(pool)
	shopRepo := database.NewPostgresShopRepository(pool)
	channelRepo := database.NewPostgresChannelRepository(pool)

	var tgBot *telego.Bot
	if cfg.Debug {
		tgBot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		tgBot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	adminChecker, err := auth.NewAdminChecker(cfg.AdminIDs)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create admin checker: %v", err)
	}

	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	store := session.NewMemoryStore()
	gate := subscription.NewGate(tgBot, channelRepo)
	publisher := publish.NewPublisher(tgBot, cfg.AnnouncementsChannel)
	notifier := moderation.NewNotifier(tgBot, cfg.AdminIDs, announcementRepo, premiumRepo, shopRepo, localizer)

	engine := dialog.NewEngine(dialog.Deps{
		Bot:           tgBot,
		Store:         store,
		Gate:          gate,
		Publisher:     publisher,
		Users:         userRepo,
		Announcements: announcementRepo,
		Premium:       premiumRepo,
		Autopost:      autopostRepo,
		Pins:          pinnedRepo,
		Shop:          shopRepo,
		Channels:      channelRepo,
		Notifier:      notifier,
		Localizer:     localizer,
		MaxPinned:     cfg.MaxPinnedPosts,
	})

	workflow := moderation.NewWorkflow(moderation.WorkflowDeps{
		Bot:           tgBot,
		Publisher:     publisher,
		Store:         store,
		Announcements: announcementRepo,
		Premium:       premiumRepo,
		Autopost:      autopostRepo,
		Pins:          pinnedRepo,
		Shop:          shopRepo,
		Channels:      channelRepo,
		Localizer:     localizer,
	})

	messageHandler := handlers.NewMessageHandler(handlers.Deps{
		Bot:          tgBot,
		Engine:       engine,
		Workflow:     workflow,
		AdminChecker: adminChecker,
		Users:        userRepo,
		Pins:         pinnedRepo,
		Channels:     channelRepo,
		Localizer:    localizer,
		AdminIDs:     cfg.AdminIDs,
		MaxPinned:    cfg.MaxPinnedPosts,
	})

	jobs := scheduler.New(tgBot, publisher, autopostRepo, pinnedRepo, localizer)
	jobs.Start(ctx)
	defer jobs.Stop()

	updates, err := tgBot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	appBot, err := appbot.New(appbot.Deps{
		Bot:         tgBot,
		UpdatesChan: updates,
		Handler:     messageHandler,
		Debug:       cfg.Debug,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	go appBot.Start(ctx)

	<-ctx.Done()

	log.Println("Shutting down bot...")
	appBot.Stop()
	log.Println("Bot shutdown complete.")
}

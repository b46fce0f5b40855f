package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asu_schedule_bot/internal/config"
	"asu_schedule_bot/internal/feature/group"
	"asu_schedule_bot/internal/feature/importer"
	"asu_schedule_bot/internal/feature/owner"
	"asu_schedule_bot/internal/feature/subscription"
	"asu_schedule_bot/internal/feature/user"
	"asu_schedule_bot/internal/health"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/notify"
	"asu_schedule_bot/internal/parity"
	"asu_schedule_bot/internal/render"
	"asu_schedule_bot/internal/schedule"
	"asu_schedule_bot/internal/store"
	"asu_schedule_bot/internal/telegram"
	"asu_schedule_bot/internal/timetable"
)

const (
	storeOpenTimeout        = 15 * time.Second
	storeCloseTimeout       = 5 * time.Second
	ownerBootstrapTimeout   = 5 * time.Second
	telegramShutdownTimeout = 10 * time.Second
	schedulerStopTimeout    = 30 * time.Second
	healthShutdownTimeout   = 5 * time.Second
)

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	logger.WithFields(logging.Fields{
		"event":    "startup",
		"timezone": cfg.Timezone,
	}).Info("configuration loaded")

	openCtx, cancelOpen := context.WithTimeout(context.Background(), storeOpenTimeout)
	db, err := store.Open(openCtx, cfg, logger)
	cancelOpen()
	if err != nil {
		logger.WithError(err).Error("store setup error")
		fmt.Fprintf(os.Stderr, "store setup error: %v\n", err)
		os.Exit(1)
	}

	ownerRegistrar := owner.NewRegistrar(db, logger)
	ownerCtx, cancelOwner := context.WithTimeout(context.Background(), ownerBootstrapTimeout)
	if err := ownerRegistrar.EnsureOwner(ownerCtx, cfg.BotOwnerID); err != nil {
		cancelOwner()
		logger.WithError(err).Error("owner bootstrap error")
		fmt.Fprintf(os.Stderr, "owner bootstrap error: %v\n", err)
		os.Exit(1)
	}
	cancelOwner()

	times := timetable.Select(cfg.AlternateLessonTimes)
	renderer := render.New(times)
	resolver := schedule.NewResolver(db, parity.New(cfg.InvertWeekParity), cfg.Location, logger)

	svc := telegram.Services{
		Users:         user.NewRegistrar(db, logger),
		Groups:        group.NewCatalogue(db, logger),
		Schedule:      resolver,
		Renderer:      renderer,
		Subscriptions: subscription.NewService(db, logger),
		Importer:      importer.New(db, nil, logger),
		Directory:     db,
	}

	sender := &lateSender{}
	broadcaster := notify.NewBroadcaster(db, resolver, renderer, sender, notify.Settings{
		SendTimeout: cfg.SendTimeout,
		Location:    cfg.Location,
	}, logger)
	svc.Announcer = broadcaster

	tgClient, err := telegram.NewClient(cfg, svc, logger)
	if err != nil {
		logger.WithError(err).Error("telegram client setup error")
		fmt.Fprintf(os.Stderr, "telegram client setup error: %v\n", err)
		os.Exit(1)
	}
	sender.Sender = tgClient

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	triggers, err := notify.Triggers(times)
	if err != nil {
		logger.WithError(err).Error("trigger setup error")
		fmt.Fprintf(os.Stderr, "trigger setup error: %v\n", err)
		os.Exit(1)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := notify.NewCronScheduler(cfg.Location, logger)
	if err := notify.Register(signalCtx, scheduler, triggers, broadcaster, logger); err != nil {
		logger.WithError(err).Error("trigger registration error")
		fmt.Fprintf(os.Stderr, "trigger registration error: %v\n", err)
		os.Exit(1)
	}
	scheduler.Start()

	healthServer := health.NewServer(cfg.HTTPPort, db, cfg.StoreDriver, logger)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("health server error")
		}
	}()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram polling")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), schedulerStopTimeout)
	if err := scheduler.Stop(stopCtx); err != nil {
		logger.WithError(err).Warn("scheduler stop error")
	}
	cancelStop()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), healthShutdownTimeout)
	if err := healthServer.Shutdown(healthCtx); err != nil {
		logger.WithError(err).Warn("health server shutdown error")
	}
	cancelHealth()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), storeCloseTimeout)
	if err := db.Close(closeCtx); err != nil {
		logger.WithError(err).Error("store close error")
	} else {
		logger.WithField("event", "store_closed").Info("store closed")
	}
	cancelClose()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}

// lateSender forwards to a Sender assigned after construction, letting the
// broadcaster and the telegram client reference each other.
type lateSender struct {
	notify.Sender
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/config"
	"github.com/example/kaskroutek/internal/database"
	"github.com/example/kaskroutek/internal/handlers"
	"github.com/example/kaskroutek/internal/i18n"
	"github.com/example/kaskroutek/internal/notify"
	"github.com/example/kaskroutek/internal/routes"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/store"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := i18n.Validate(); err != nil {
		log.Fatal(err)
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg)

	authService := services.NewAuthService(st, cfg.JWTSecret, cfg.TokenExpires)
	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, cfg.Location).
		WithBaseURL(cfg.TelegramBaseURL)
	if !telegram.Configured() {
		log.Printf("[Telegram] Bot token or chat id missing, notifications will fail")
	}

	dispatcher := notify.NewDispatcher(notificationSender(ctx, cfg, telegram), notify.Options{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
		Backoff:     cfg.NotifyBackoff,
	})
	dispatcher.Start()

	ledger := services.NewLedger(st, dispatcher, cfg.Location)
	resolver := services.NewTimerResolver(st, cfg.Location, cfg.PickupCutoff, cfg.ShippingCutoff)
	if _, err := resolver.RecomputeAll(ctx); err != nil {
		log.Printf("[Timers] Initial recompute failed: %v", err)
	}
	go resolver.Run(ctx, cfg.TimerRecomputeInterval)

	app := fiber.New(fiber.Config{
		AppName:      "Kaskroutek Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
	}))

	routes.Register(app, routes.Dependencies{
		Config:   cfg,
		Store:    st,
		Ledger:   ledger,
		Timers:   resolver,
		Auth:     authService,
		Telegram: telegram,
	})

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("fiber shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Printf("[Notify] Queue not drained: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) store.Store {
	var st store.Store
	seed := cfg.SeedCatalog

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Printf("Using in-memory storage")
		st = store.NewMemoryStore()
		seed = true
	default:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		st = store.NewGormStore(db)
	}

	if seed {
		if err := store.SeedDemoCatalog(ctx, st); err != nil {
			log.Fatalf("seed catalog: %v", err)
		}
	}
	return st
}

// notificationSender publishes to SQS when a queue is configured, otherwise talks to Telegram directly.
func notificationSender(ctx context.Context, cfg *config.Config, telegram *services.TelegramService) notify.Sender {
	if cfg.NotifyQueueURL == "" {
		return telegram
	}
	awsCfg, err := notify.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	log.Printf("[Notify] Publishing order notifications to %s", cfg.NotifyQueueURL)
	return notify.NewSQSPublisher(notify.NewSQSClient(awsCfg, cfg.AWSEndpoint), cfg.NotifyQueueURL)
}

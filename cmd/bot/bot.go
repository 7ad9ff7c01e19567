package main

import (
	"context"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/abelzeko/plant-bot/internal/api"
	"github.com/abelzeko/plant-bot/internal/config"
	"github.com/abelzeko/plant-bot/internal/integration"
	"github.com/abelzeko/plant-bot/internal/integration/openai"
	"github.com/abelzeko/plant-bot/internal/repository"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Plant Care Bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// The backend is fixed for the lifetime of the process
	var store repository.Store
	switch cfg.Backend {
	case config.BackendRemote:
		store = integration.NewRemoteStore(cfg.RemoteURL, cfg.RemoteTimeout)
		log.Printf("Using remote store at %s", cfg.RemoteURL)
	default:
		sqlStore, err := repository.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
		store = sqlStore
		log.Printf("Using offline store at %s", sqlStore.DBPath)
	}
	defer store.Close()

	gateway := repository.NewGateway(store, nil)

	// The interpreter is optional; without it free text gets a pointer to /help
	var interpreter openai.CareInterpreter
	if svc, err := openai.NewOpenAIService(cfg.OpenAIKey); err != nil {
		log.Printf("Natural language replies disabled: %v", err)
	} else {
		interpreter = svc
	}

	useCase := usecases.NewCareUseCase(gateway, interpreter, usecases.Options{
		UpcomingDays: cfg.UpcomingDays,
		CalendarDays: cfg.CalendarDays,
	})

	if err := useCase.RefreshViews(context.Background()); err != nil {
		log.Printf("Initial view refresh failed: %v", err)
	}

	// Due buckets roll over at local midnight
	c := cron.New()
	_, err = c.AddFunc("0 0 * * *", func() {
		if err := useCase.RefreshViews(context.Background()); err != nil {
			log.Printf("Scheduled view refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}
	c.Start()
	defer c.Stop()

	telegramBot, err := api.NewTelegramBot(cfg.TelegramToken, useCase)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	telegramBot.Start()
}

package main

import (
	"log"
	"os"

	"github.com/abelzeko/plant-bot/internal/api"
	"github.com/abelzeko/plant-bot/internal/config"
	"github.com/abelzeko/plant-bot/internal/repository"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Starting Plant Care Server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store *repository.SQLStore
	if cfg.ServerDBDriver == repository.DriverSQLite {
		store, err = repository.NewSQLiteStore(cfg.ServerDBDSN)
	} else {
		store, err = repository.NewSQLStore(cfg.ServerDBDriver, cfg.ServerDBDSN)
	}
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	gateway := repository.NewGateway(store, nil)
	useCase := usecases.NewCareUseCase(gateway, nil, usecases.Options{
		UpcomingDays: cfg.UpcomingDays,
		CalendarDays: cfg.CalendarDays,
	})

	server := api.NewServer(gateway, useCase)
	log.Printf("Listening on %s (%s store)", cfg.ServerAddr, cfg.ServerDBDriver)
	if err := server.Router().Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// Package config reads the boot-time settings of both binaries
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects the storage variant for the whole process
type Backend string

const (
	BackendOffline Backend = "offline"
	BackendRemote  Backend = "remote"
)

// Config holds every setting; it is read once at startup
type Config struct {
	Backend       Backend
	DBPath        string
	RemoteURL     string
	RemoteTimeout time.Duration

	UpcomingDays int
	CalendarDays int

	TelegramToken string
	OpenAIKey     string

	ServerAddr     string
	ServerDBDriver string
	ServerDBDSN    string
}

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	} else if err != nil {
		log.Printf("No .env file found, using environment only")
	}

	cfg := &Config{
		Backend:        Backend(getenv("PLANTCARE_BACKEND", string(BackendOffline))),
		DBPath:         os.Getenv("PLANTCARE_DB_PATH"),
		RemoteURL:      os.Getenv("PLANTCARE_REMOTE_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ServerAddr:     getenv("SERVER_ADDR", ":8080"),
		ServerDBDriver: getenv("SERVER_DB_DRIVER", "sqlite3"),
		ServerDBDSN:    getenv("SERVER_DB_DSN", "data/plantcare-server.db"),
	}

	var err error
	if cfg.RemoteTimeout, err = time.ParseDuration(getenv("PLANTCARE_REMOTE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid PLANTCARE_REMOTE_TIMEOUT: %w", err)
	}
	if cfg.UpcomingDays, err = positiveInt("PLANTCARE_UPCOMING_DAYS", 3); err != nil {
		return nil, err
	}
	if cfg.CalendarDays, err = positiveInt("PLANTCARE_CALENDAR_DAYS", 7); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendOffline:
	case BackendRemote:
		if cfg.RemoteURL == "" {
			return nil, errors.New("PLANTCARE_REMOTE_URL is required for the remote backend")
		}
	default:
		return nil, fmt.Errorf("unknown PLANTCARE_BACKEND %q (want offline or remote)", cfg.Backend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

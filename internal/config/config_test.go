package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLANTCARE_BACKEND", "")
	t.Setenv("PLANTCARE_REMOTE_TIMEOUT", "")
	t.Setenv("PLANTCARE_UPCOMING_DAYS", "")
	t.Setenv("PLANTCARE_CALENDAR_DAYS", "")
	t.Setenv("SERVER_ADDR", "")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Backend != BackendOffline {
		t.Errorf("Expected offline backend by default, got %s", cfg.Backend)
	}
	if cfg.RemoteTimeout != 10*time.Second || cfg.UpcomingDays != 3 || cfg.CalendarDays != 7 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.ServerAddr)
	}
}

func TestLoadRemoteRequiresURL(t *testing.T) {
	t.Setenv("PLANTCARE_BACKEND", "remote")
	t.Setenv("PLANTCARE_REMOTE_URL", "")
	if _, err := Load(missingEnvFile(t)); err == nil {
		t.Error("Expected an error without PLANTCARE_REMOTE_URL")
	}

	t.Setenv("PLANTCARE_REMOTE_URL", "http://plants.local:8080")
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Backend != BackendRemote || cfg.RemoteURL != "http://plants.local:8080" {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"PLANTCARE_BACKEND":        "cloud",
		"PLANTCARE_REMOTE_TIMEOUT": "soon",
		"PLANTCARE_UPCOMING_DAYS":  "0",
		"PLANTCARE_CALENDAR_DAYS":  "week",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("PLANTCARE_BACKEND", "offline")
			t.Setenv(key, value)
			if _, err := Load(missingEnvFile(t)); err == nil {
				t.Errorf("Expected an error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("PLANTCARE_BACKEND", "offline")
	t.Setenv("PLANTCARE_CALENDAR_DAYS", "")
	os.Unsetenv("PLANTCARE_CALENDAR_DAYS")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("PLANTCARE_CALENDAR_DAYS=14\n"), 0o644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.CalendarDays != 14 {
		t.Errorf("Expected 14 calendar days from the env file, got %d", cfg.CalendarDays)
	}
}

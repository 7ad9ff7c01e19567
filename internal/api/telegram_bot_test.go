package api

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abelzeko/plant-bot/internal/repository"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

func newTestBot(t *testing.T) *TelegramBot {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "test-bot.db"))
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gateway := repository.NewGateway(store, serverClock)
	return &TelegramBot{
		useCase: usecases.NewCareUseCase(gateway, nil, usecases.Options{Clock: serverClock}),
	}
}

// commandMessage builds a message the way Telegram delivers a command
func commandMessage(text string) *tgbotapi.Message {
	command := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: 42, UserName: "gardener"},
		Chat: &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(command)},
		},
	}
}

func runCommand(t *testing.T, bot *TelegramBot, text string) string {
	t.Helper()
	msg := tgbotapi.NewMessage(42, "")
	bot.handleCommand(context.Background(), commandMessage(text), &msg)
	return msg.Text
}

func TestBotCareFlow(t *testing.T) {
	bot := newTestBot(t)

	if reply := runCommand(t, bot, "/plants"); !strings.Contains(reply, "No plants yet") {
		t.Errorf("Unexpected /plants reply %q", reply)
	}

	reply := runCommand(t, bot, "/addplant Snake Plant 10 21")
	if !strings.Contains(reply, "Added Snake Plant: water every 10 days, feed every 21 days") {
		t.Fatalf("Unexpected /addplant reply %q", reply)
	}

	if reply := runCommand(t, bot, "/tasks"); !strings.Contains(reply, "Snake Plant") || !strings.Contains(reply, "Water today:") {
		t.Errorf("Expected the new plant to need watering, got %q", reply)
	}

	reply = runCommand(t, bot, "/water snake plant")
	if !strings.Contains(reply, "Logged watering for Snake Plant") {
		t.Errorf("Unexpected /water reply %q", reply)
	}

	if reply := runCommand(t, bot, "/history Snake Plant"); !strings.Contains(reply, "2025-04-18 09:00 watering") {
		t.Errorf("Expected the watering in the history, got %q", reply)
	}

	if reply := runCommand(t, bot, "/status Snake Plant"); !strings.Contains(reply, "Watering every 10 days") {
		t.Errorf("Unexpected /status reply %q", reply)
	}

	if reply := runCommand(t, bot, "/delete Snake Plant"); !strings.Contains(reply, "Deleted Snake Plant") {
		t.Errorf("Unexpected /delete reply %q", reply)
	}
	if reply := runCommand(t, bot, "/water Snake Plant"); !strings.Contains(reply, "couldn't find") {
		t.Errorf("Expected not-found after delete, got %q", reply)
	}
}

func TestBotArgumentErrors(t *testing.T) {
	bot := newTestBot(t)

	cases := []struct {
		command string
		want    string
	}{
		{"/water", "Please specify a plant. Example: /water"},
		{"/feed", "Please specify a plant. Example: /feed"},
		{"/status", "Please specify a plant"},
		{"/addplant", "Please specify a name"},
		{"/addplant Fern 0", "must be positive"},
		{"/addplant Fern 7 45", "doesn't look right"},
		{"/calendar tomorrow", "Please use a date"},
		{"/frobnicate", "Unknown command"},
	}
	for _, tc := range cases {
		if reply := runCommand(t, bot, tc.command); !strings.Contains(reply, tc.want) {
			t.Errorf("%s: expected %q, got %q", tc.command, tc.want, reply)
		}
	}
}

func TestBotCalendar(t *testing.T) {
	bot := newTestBot(t)
	runCommand(t, bot, "/addplant Ivy")

	reply := runCommand(t, bot, "/calendar 2025-04-18")
	lines := strings.Split(reply, "\n")
	if len(lines) != 7 {
		t.Fatalf("Expected 7 days, got %d:\n%s", len(lines), reply)
	}
	if !strings.HasPrefix(lines[0], "Fri 18 Apr") || !strings.Contains(lines[0], "💧 Ivy") {
		t.Errorf("Expected Ivy due on the first day, got %q", lines[0])
	}
}

func TestBotNonCommandWithoutInterpreter(t *testing.T) {
	bot := newTestBot(t)
	msg := tgbotapi.NewMessage(42, "")
	bot.handleNonCommand(context.Background(), &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 42}}, &msg)
	if !strings.Contains(msg.Text, "/help") {
		t.Errorf("Expected a pointer to /help, got %q", msg.Text)
	}
}

// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/entities"
	"github.com/abelzeko/plant-bot/internal/usecases"
)

const helpText = "Available commands:\n" +
	"/tasks - What needs care today\n" +
	"/calendar [YYYY-MM-DD] - Due dates for the coming week\n" +
	"/plants - List your plants\n" +
	"/status [plant] - Care status of a plant\n" +
	"/water [plant] - Log a watering now\n" +
	"/feed [plant] - Log a feeding now\n" +
	"/history [plant] - Care history of a plant\n" +
	"/addplant [name] [water days] [feed days] - Add a plant\n" +
	"/delete [plant] - Delete a plant and its history\n" +
	"/help - Show this help message"

// requestTimeout bounds the storage work behind one chat message
const requestTimeout = 30 * time.Second

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	useCase *usecases.CareUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.CareUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramBot{
		bot:     bot,
		useCase: useCase,
	}, nil
}

// Start begins listening for and handling Telegram messages
func (t *TelegramBot) Start() {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("Received message from %s (ID: %d): %s",
			update.Message.From.UserName,
			update.Message.From.ID,
			update.Message.Text)

		t.handleMessage(update)
	}
}

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch {
	case update.Message.IsCommand():
		t.handleCommand(ctx, update.Message, &msg)
	default:
		t.handleNonCommand(ctx, update.Message, &msg)
	}

	log.Printf("Sending response to user %s", update.Message.From.UserName)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		msg.Text = "Welcome to the Plant Care Bot! Add a plant with /addplant, then use /water and /feed whenever you care for it. /help lists everything."

	case "help":
		msg.Text = helpText

	case "tasks":
		t.handleTasksCommand(ctx, msg)

	case "calendar":
		t.handleCalendarCommand(ctx, args, msg)

	case "plants":
		plants, err := t.useCase.Plants(ctx)
		if err != nil {
			msg.Text = usecases.FormatError(err)
			log.Printf("Error fetching plants: %v", err)
			return
		}
		msg.Text = usecases.FormatPlants(plants, t.useCase.Now())

	case "status":
		t.handleStatusCommand(ctx, args, msg)

	case "water":
		t.handleLogCommand(ctx, args, entities.Watering, msg)

	case "feed":
		t.handleLogCommand(ctx, args, entities.Feeding, msg)

	case "history":
		t.handleHistoryCommand(ctx, args, msg)

	case "addplant":
		t.handleAddPlantCommand(ctx, args, msg)

	case "delete":
		if args == "" {
			msg.Text = "Please specify a plant. Example: /delete Monstera"
			return
		}
		p, err := t.useCase.DeletePlant(ctx, args)
		if err != nil {
			msg.Text = usecases.FormatError(err)
			return
		}
		msg.Text = fmt.Sprintf("Deleted %s and its care history.", p.Name)

	default:
		log.Printf("Received unknown command /%s from user %s", message.Command(), userName(message))
		msg.Text = "Unknown command. Use /help to see available commands."
	}
}

// handleTasksCommand processes the /tasks command
func (t *TelegramBot) handleTasksCommand(ctx context.Context, msg *tgbotapi.MessageConfig) {
	board, err := t.useCase.Tasks(ctx)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		log.Printf("Error building task list: %v", err)
		return
	}
	msg.Text = usecases.FormatTasks(board)
}

// handleCalendarCommand processes the /calendar [date] command
func (t *TelegramBot) handleCalendarCommand(ctx context.Context, args string, msg *tgbotapi.MessageConfig) {
	start := care.DateOf(t.useCase.Now())
	if args != "" {
		d, err := care.ParseDate(args)
		if err != nil {
			msg.Text = "Please use a date like 2025-04-18."
			return
		}
		start = d
	}

	view, err := t.useCase.Calendar(ctx, start, 0)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		log.Printf("Error building calendar: %v", err)
		return
	}
	msg.Text = usecases.FormatCalendar(view)
}

// handleStatusCommand processes the /status [plant] command
func (t *TelegramBot) handleStatusCommand(ctx context.Context, args string, msg *tgbotapi.MessageConfig) {
	if args == "" {
		msg.Text = "Please specify a plant. Example: /status Monstera"
		return
	}
	report, err := t.useCase.Status(ctx, args)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		return
	}
	msg.Text = usecases.FormatStatus(report, t.useCase.Now())
}

// handleLogCommand processes /water and /feed
func (t *TelegramBot) handleLogCommand(ctx context.Context, args string, kind entities.CareKind, msg *tgbotapi.MessageConfig) {
	if args == "" {
		msg.Text = fmt.Sprintf("Please specify a plant. Example: /%s Monstera", commandFor(kind))
		return
	}
	updated, err := t.useCase.QuickLog(ctx, args, kind)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		return
	}
	msg.Text = usecases.FormatLogged(updated, kind, t.useCase.Now())
}

// handleHistoryCommand processes the /history [plant] command
func (t *TelegramBot) handleHistoryCommand(ctx context.Context, args string, msg *tgbotapi.MessageConfig) {
	if args == "" {
		msg.Text = "Please specify a plant. Example: /history Monstera"
		return
	}
	p, events, err := t.useCase.History(ctx, args)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		return
	}
	msg.Text = usecases.FormatHistory(p, events)
}

// handleAddPlantCommand processes /addplant name [water days] [feed days].
// Trailing numbers are frequencies, everything before them is the name.
func (t *TelegramBot) handleAddPlantCommand(ctx context.Context, args string, msg *tgbotapi.MessageConfig) {
	fields := strings.Fields(args)
	var freqs []int
	for len(fields) > 1 && len(freqs) < 2 {
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			break
		}
		freqs = append([]int{n}, freqs...)
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		msg.Text = "Please specify a name. Example: /addplant Monstera 7 14"
		return
	}

	var watering, feeding int
	if len(freqs) > 0 {
		watering = freqs[0]
		if watering <= 0 {
			msg.Text = "Frequencies must be positive numbers of days."
			return
		}
	}
	if len(freqs) > 1 {
		feeding = freqs[1]
		if feeding <= 0 {
			msg.Text = "Frequencies must be positive numbers of days."
			return
		}
	}

	p, err := t.useCase.AddPlant(ctx, strings.Join(fields, " "), watering, feeding)
	if err != nil {
		msg.Text = usecases.FormatError(err)
		return
	}
	msg.Text = fmt.Sprintf("Added %s: water every %d days, feed every %d days.",
		p.Name, p.WateringFrequencyDays, p.FeedingFrequencyDays)
}

// handleNonCommand processes regular messages
func (t *TelegramBot) handleNonCommand(ctx context.Context, message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	log.Printf("Received non-command message from user %s: %s", userName(message), message.Text)

	reply, err := t.useCase.HandleNaturalLanguageQuery(ctx, message.Text)
	if err != nil {
		log.Printf("Error handling message: %v", err)
		msg.Text = "I don't understand. Use /help to see available commands."
		return
	}
	msg.Text = reply
}

func commandFor(kind entities.CareKind) string {
	if kind == entities.Feeding {
		return "feed"
	}
	return "water"
}

func userName(message *tgbotapi.Message) string {
	if message.From == nil {
		return ""
	}
	return message.From.UserName
}

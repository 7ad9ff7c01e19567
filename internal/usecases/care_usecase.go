// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/entities"
	"github.com/abelzeko/plant-bot/internal/integration/openai"
)

// ErrQuickLogInFlight is returned when the same plant and care kind is already being logged
var ErrQuickLogInFlight = errors.New("a care log for this plant is already in progress")

// viewCacheTTL bounds how long a cached plant list is trusted; the remote
// store may be written by other devices.
const viewCacheTTL = 5 * time.Minute

// CareGateway is the storage capability the use case depends on
type CareGateway interface {
	Plants(ctx context.Context) ([]entities.Plant, error)
	Events(ctx context.Context, plantID string) ([]entities.CareEvent, error)
	AddPlant(ctx context.Context, p entities.Plant) (entities.Plant, error)
	DeletePlant(ctx context.Context, id string) error
	AppendCareEvent(ctx context.Context, plantID string, kind entities.CareKind, event entities.CareEvent) (entities.Plant, entities.CareEvent, error)
	OnChange(fn func())
}

// Options tune the views
type Options struct {
	UpcomingDays int
	CalendarDays int
	Clock        func() time.Time
}

// viewCache holds the plant list and the task board derived from it
type viewCache struct {
	plants     []entities.Plant
	board      *care.TaskBoard
	boardDay   care.Date
	lastUpdate time.Time
	// generation is bumped on every invalidation; a read that started
	// before the bump must not store its result
	generation uint64
	mutex      sync.RWMutex
}

// CareUseCase handles business logic related to plant care
type CareUseCase struct {
	gateway     CareGateway
	interpreter openai.CareInterpreter
	opts        Options

	cache viewCache

	inflightMu sync.Mutex
	inflight   map[string]bool
}

// NewCareUseCase creates a new care use case. interpreter may be nil.
func NewCareUseCase(gateway CareGateway, interpreter openai.CareInterpreter, opts Options) *CareUseCase {
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = care.DefaultUpcomingHorizonDays
	}
	if opts.CalendarDays <= 0 {
		opts.CalendarDays = 7
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	uc := &CareUseCase{
		gateway:     gateway,
		interpreter: interpreter,
		opts:        opts,
		inflight:    make(map[string]bool),
	}
	gateway.OnChange(uc.InvalidateViews)
	return uc
}

// Now returns the use case clock reading
func (uc *CareUseCase) Now() time.Time {
	return uc.opts.Clock()
}

// InvalidateViews drops every cached view
func (uc *CareUseCase) InvalidateViews() {
	uc.cache.mutex.Lock()
	uc.cache.plants = nil
	uc.cache.board = nil
	uc.cache.lastUpdate = time.Time{}
	uc.cache.generation++
	uc.cache.mutex.Unlock()
}

// RefreshViews rebuilds the cached task board, e.g. after midnight when buckets roll over
func (uc *CareUseCase) RefreshViews(ctx context.Context) error {
	uc.InvalidateViews()
	board, err := uc.Tasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh views: %w", err)
	}
	log.Printf("Views refreshed: %d to water, %d to feed, %d upcoming",
		len(board.OverdueOrDueTodayWatering), len(board.OverdueFeeding), len(board.UpcomingChecks))
	return nil
}

// Plants returns every plant, served from the cache when it is fresh
func (uc *CareUseCase) Plants(ctx context.Context) ([]entities.Plant, error) {
	plants, _, err := uc.loadPlants(ctx)
	return plants, err
}

// loadPlants returns the plant list and the cache generation it belongs to
func (uc *CareUseCase) loadPlants(ctx context.Context) ([]entities.Plant, uint64, error) {
	now := uc.Now()
	uc.cache.mutex.RLock()
	gen := uc.cache.generation
	if uc.cache.plants != nil && now.Sub(uc.cache.lastUpdate) < viewCacheTTL {
		plants := uc.cache.plants
		uc.cache.mutex.RUnlock()
		return plants, gen, nil
	}
	uc.cache.mutex.RUnlock()

	plants, err := uc.gateway.Plants(ctx)
	if err != nil {
		return nil, gen, err
	}

	uc.cache.mutex.Lock()
	if uc.cache.generation == gen {
		uc.cache.plants = plants
		uc.cache.board = nil
		uc.cache.lastUpdate = now
	}
	uc.cache.mutex.Unlock()
	return plants, gen, nil
}

// FindPlant looks a plant up by id or, case-insensitively, by name
func (uc *CareUseCase) FindPlant(ctx context.Context, ref string) (entities.Plant, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return entities.Plant{}, entities.NewValidationError("plant name is required")
	}
	plants, err := uc.Plants(ctx)
	if err != nil {
		return entities.Plant{}, err
	}
	for _, p := range plants {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return entities.Plant{}, entities.NewNotFoundError("no plant named %q", ref)
}

// QuickLog records a care action that happened now
func (uc *CareUseCase) QuickLog(ctx context.Context, ref string, kind entities.CareKind) (entities.Plant, error) {
	return uc.LogCare(ctx, ref, kind, entities.CareEvent{OccurredAt: uc.Now()})
}

// LogCare records a care action with optional amount, notes and time. Only one
// log per plant and kind may be in flight; a repeated request while the first
// is pending fails with ErrQuickLogInFlight instead of creating a duplicate.
func (uc *CareUseCase) LogCare(ctx context.Context, ref string, kind entities.CareKind, event entities.CareEvent) (entities.Plant, error) {
	plant, err := uc.FindPlant(ctx, ref)
	if err != nil {
		return entities.Plant{}, err
	}

	key := plant.ID + "/" + string(kind)
	uc.inflightMu.Lock()
	if uc.inflight[key] {
		uc.inflightMu.Unlock()
		return entities.Plant{}, ErrQuickLogInFlight
	}
	uc.inflight[key] = true
	uc.inflightMu.Unlock()
	defer func() {
		uc.inflightMu.Lock()
		delete(uc.inflight, key)
		uc.inflightMu.Unlock()
	}()

	updated, _, err := uc.gateway.AppendCareEvent(ctx, plant.ID, kind, event)
	if err != nil {
		log.Printf("Failed to log %s for %s: %v", kind, plant.Name, err)
		return entities.Plant{}, err
	}
	return updated, nil
}

// Tasks returns today's task board
func (uc *CareUseCase) Tasks(ctx context.Context) (care.TaskBoard, error) {
	now := uc.Now()
	today := care.DateOf(now)

	uc.cache.mutex.RLock()
	if uc.cache.board != nil && uc.cache.boardDay == today && now.Sub(uc.cache.lastUpdate) < viewCacheTTL {
		board := *uc.cache.board
		uc.cache.mutex.RUnlock()
		return board, nil
	}
	uc.cache.mutex.RUnlock()

	plants, gen, err := uc.loadPlants(ctx)
	if err != nil {
		return care.TaskBoard{}, err
	}
	board := care.BuildTasks(plants, now, uc.opts.UpcomingDays)

	uc.cache.mutex.Lock()
	if uc.cache.generation == gen {
		uc.cache.board = &board
		uc.cache.boardDay = today
	}
	uc.cache.mutex.Unlock()
	return board, nil
}

// CalendarView is the projection of due dates onto a range of days
type CalendarView struct {
	Days    []care.Date
	Buckets map[care.Date]care.DayBuckets
	Names   map[string]string // plant id -> name
}

// Calendar projects due dates for days starting at start
func (uc *CareUseCase) Calendar(ctx context.Context, start care.Date, days int) (CalendarView, error) {
	if days <= 0 {
		days = uc.opts.CalendarDays
	}
	plants, err := uc.Plants(ctx)
	if err != nil {
		return CalendarView{}, err
	}
	end := start.AddDays(days - 1)

	names := make(map[string]string, len(plants))
	for _, p := range plants {
		names[p.ID] = p.Name
	}
	return CalendarView{
		Days:    care.DaysBetween(start, end),
		Buckets: care.ProjectRange(plants, start, end, uc.Now()),
		Names:   names,
	}, nil
}

// PlantReport is the status of one plant at a point in time
type PlantReport struct {
	Plant          entities.Plant
	Classification care.Classification
	WateringDue    time.Time
	FeedingDue     time.Time
	NextCheck      time.Time
}

// Status reports the urgency of one plant, recomputed from its timestamps
func (uc *CareUseCase) Status(ctx context.Context, ref string) (PlantReport, error) {
	p, err := uc.FindPlant(ctx, ref)
	if err != nil {
		return PlantReport{}, err
	}
	now := uc.Now()
	return PlantReport{
		Plant:          p,
		Classification: care.Classify(p, now),
		WateringDue:    care.DueDate(entities.Watering, p, now),
		FeedingDue:     care.DueDate(entities.Feeding, p, now),
		NextCheck:      care.NextCheckFor(p, now, nil),
	}, nil
}

// History returns the care events of a plant, newest first
func (uc *CareUseCase) History(ctx context.Context, ref string) (entities.Plant, []entities.CareEvent, error) {
	p, err := uc.FindPlant(ctx, ref)
	if err != nil {
		return entities.Plant{}, nil, err
	}
	events, err := uc.gateway.Events(ctx, p.ID)
	if err != nil {
		return entities.Plant{}, nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
	return p, events, nil
}

// AddPlant creates a plant; zero frequencies take the defaults
func (uc *CareUseCase) AddPlant(ctx context.Context, name string, wateringDays, feedingDays int) (entities.Plant, error) {
	return uc.gateway.AddPlant(ctx, entities.Plant{
		Name:                  name,
		WateringFrequencyDays: wateringDays,
		FeedingFrequencyDays:  feedingDays,
	})
}

// DeletePlant removes a plant and its care history
func (uc *CareUseCase) DeletePlant(ctx context.Context, ref string) (entities.Plant, error) {
	p, err := uc.FindPlant(ctx, ref)
	if err != nil {
		return entities.Plant{}, err
	}
	if err := uc.gateway.DeletePlant(ctx, p.ID); err != nil {
		return entities.Plant{}, err
	}
	return p, nil
}

// HandleNaturalLanguageQuery interprets a user's free-text message using the AI service
// and returns an appropriate response string.
func (uc *CareUseCase) HandleNaturalLanguageQuery(ctx context.Context, query string) (string, error) {
	if uc.interpreter == nil {
		return "I don't understand. Use /help to see available commands.", nil
	}
	log.Printf("Interpreting natural language query: %s", query)

	plants, err := uc.Plants(ctx)
	if err != nil {
		log.Printf("Error fetching plants: %v", err)
		return "Sorry, I couldn't load your plants right now.", nil
	}
	names := make([]string, 0, len(plants))
	for _, p := range plants {
		names = append(names, p.Name)
	}

	agentResp, err := uc.interpreter.InterpretUserMessage(ctx, query, names)
	if err != nil {
		log.Printf("Error interpreting user query via OpenAI: %v", err)
		return "Sorry, I'm having trouble understanding right now. Please try again later or use /help.", nil
	}

	log.Printf("Agent response: Command='%s', Plant='%s', Kind='%s'",
		agentResp.CommandName, agentResp.PlantName, agentResp.CareKind)

	switch agentResp.CommandName {
	case openai.CommandLogCare:
		kind, err := entities.ParseCareKind(agentResp.CareKind)
		if err != nil || agentResp.PlantName == "" {
			return "Which plant, and was it watering or feeding? You can also use /water or /feed.", nil
		}
		updated, err := uc.QuickLog(ctx, agentResp.PlantName, kind)
		if err != nil {
			return FormatError(err), nil
		}
		msg := agentResp.UserMessage
		if msg != "" {
			msg += "\n\n"
		}
		return msg + FormatLogged(updated, kind, uc.Now()), nil
	case openai.CommandShowTasks:
		board, err := uc.Tasks(ctx)
		if err != nil {
			return FormatError(err), nil
		}
		return FormatTasks(board), nil
	case openai.CommandGeneralQuery:
		return agentResp.UserMessage, nil
	default:
		log.Printf("Agent returned unexpected command: %s", agentResp.CommandName)
		return "I'm not sure how to respond to that. You can use /help for commands.", nil
	}
}

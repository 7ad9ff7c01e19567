package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/entities"
)

const (
	eventIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	eventIDLength   = 21
)

// Gateway is the only path to persisted plants and care events. It validates
// records at the boundary and keeps derived plant fields in step with the
// event log. The backend behind it is chosen once at startup.
type Gateway struct {
	store Store
	now   func() time.Time

	// serializes read-modify-write cycles so events apply in submission order
	mu sync.Mutex

	hooksMu sync.Mutex
	hooks   []func()
}

// NewGateway creates a gateway over store. A nil clock means time.Now.
func NewGateway(store Store, clock func() time.Time) *Gateway {
	if clock == nil {
		clock = time.Now
	}
	return &Gateway{store: store, now: clock}
}

// OnChange registers fn to run after every committed write
func (g *Gateway) OnChange(fn func()) {
	g.hooksMu.Lock()
	defer g.hooksMu.Unlock()
	g.hooks = append(g.hooks, fn)
}

func (g *Gateway) changed() {
	g.hooksMu.Lock()
	hooks := append([]func(){}, g.hooks...)
	g.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// GetCollection returns the records of a collection in stored order. A
// collection that was never written yields an empty list.
func (g *Gateway) GetCollection(ctx context.Context, name string) ([]json.RawMessage, error) {
	raw, err := g.store.Get(ctx, name)
	if err != nil {
		return nil, entities.NewStorageError("read collection "+name, err)
	}
	records := []json.RawMessage{}
	if len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, entities.NewValidationError("collection %s is not a JSON array: %v", name, err)
	}
	if err := validateRecords(name, records); err != nil {
		return nil, err
	}
	return records, nil
}

// SetCollection replaces a collection wholesale
func (g *Gateway) SetCollection(ctx context.Context, name string, records []json.RawMessage) error {
	return g.SetCollections(ctx, map[string][]json.RawMessage{name: records})
}

// SetCollections replaces several collections in one atomic write
func (g *Gateway) SetCollections(ctx context.Context, batch map[string][]json.RawMessage) error {
	encoded := make(map[string]json.RawMessage, len(batch))
	for name, records := range batch {
		if strings.TrimSpace(name) == "" {
			return entities.NewValidationError("collection name is required")
		}
		if records == nil {
			records = []json.RawMessage{}
		}
		if err := validateWrite(name, records); err != nil {
			return err
		}
		data, err := json.Marshal(records)
		if err != nil {
			return entities.NewValidationError("collection %s: %v", name, err)
		}
		encoded[name] = data
	}

	g.mu.Lock()
	err := g.store.SetMany(ctx, encoded)
	g.mu.Unlock()
	if err != nil {
		return entities.NewStorageError("write collections", err)
	}
	g.changed()
	return nil
}

// Plants returns every plant in stored order
func (g *Gateway) Plants(ctx context.Context) ([]entities.Plant, error) {
	return readCollection(ctx, g, entities.PlantsCollection, checkPlant)
}

// Plant returns a single plant by id
func (g *Gateway) Plant(ctx context.Context, id string) (entities.Plant, error) {
	plants, err := g.Plants(ctx)
	if err != nil {
		return entities.Plant{}, err
	}
	for _, p := range plants {
		if p.ID == id {
			return p, nil
		}
	}
	return entities.Plant{}, entities.NewNotFoundError("plant %s", id)
}

// Events returns the care events of one plant, or of all plants when plantID is empty
func (g *Gateway) Events(ctx context.Context, plantID string) ([]entities.CareEvent, error) {
	events, err := readCollection(ctx, g, entities.EventsCollection, checkEvent)
	if err != nil || plantID == "" {
		return events, err
	}
	var out []entities.CareEvent
	for _, e := range events {
		if e.PlantID == plantID {
			out = append(out, e)
		}
	}
	return out, nil
}

// AddPlant stores a new plant with a fresh id, default frequencies and a computed next check
func (g *Gateway) AddPlant(ctx context.Context, p entities.Plant) (entities.Plant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	p.ID = uuid.New().String()
	p.Name = strings.TrimSpace(p.Name)
	p.ApplyDefaults()
	p.CreatedAt = now
	p.UpdatedAt = now
	next := care.NextCheckFor(p, now, nil)
	p.NextCheck = &next
	if err := p.Validate(); err != nil {
		return entities.Plant{}, err
	}
	if err := p.ValidateCadence(); err != nil {
		return entities.Plant{}, err
	}

	plants, err := g.Plants(ctx)
	if err != nil {
		return entities.Plant{}, err
	}
	for _, existing := range plants {
		if strings.EqualFold(existing.Name, p.Name) {
			return entities.Plant{}, entities.NewValidationError("a plant named %q already exists", p.Name)
		}
	}

	plants = append(plants, p)
	if err := g.write(ctx, map[string]any{entities.PlantsCollection: plants}); err != nil {
		return entities.Plant{}, err
	}
	log.Printf("Added plant %s (%s)", p.Name, p.ID)
	return p, nil
}

// DeletePlant removes a plant together with its care events
func (g *Gateway) DeletePlant(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	plants, err := g.Plants(ctx)
	if err != nil {
		return err
	}
	idx := indexOfPlant(plants, id)
	if idx < 0 {
		return entities.NewNotFoundError("plant %s", id)
	}
	events, err := g.Events(ctx, "")
	if err != nil {
		return err
	}

	remaining := make([]entities.CareEvent, 0, len(events))
	for _, e := range events {
		if e.PlantID != id {
			remaining = append(remaining, e)
		}
	}
	plants = append(plants[:idx], plants[idx+1:]...)

	if err := g.write(ctx, map[string]any{
		entities.PlantsCollection: plants,
		entities.EventsCollection: remaining,
	}); err != nil {
		return err
	}
	log.Printf("Deleted plant %s and %d care events", id, len(events)-len(remaining))
	return nil
}

// AppendCareEvent records a care action and updates the plant's last-cared
// timestamp and next check in the same atomic write. Nothing is persisted
// when any step fails.
func (g *Gateway) AppendCareEvent(ctx context.Context, plantID string, kind entities.CareKind, event entities.CareEvent) (entities.Plant, entities.CareEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	}
	if event.OccurredAt.After(now) {
		return entities.Plant{}, entities.CareEvent{}, entities.NewValidationError("care event occurs in the future: %s",
			event.OccurredAt.Format(time.RFC3339))
	}

	id, err := gonanoid.Generate(eventIDAlphabet, eventIDLength)
	if err != nil {
		return entities.Plant{}, entities.CareEvent{}, fmt.Errorf("failed to allocate event id: %w", err)
	}
	event.ID = id
	event.PlantID = plantID
	event.Kind = kind
	if err := event.Validate(); err != nil {
		return entities.Plant{}, entities.CareEvent{}, err
	}

	plants, err := g.Plants(ctx)
	if err != nil {
		return entities.Plant{}, entities.CareEvent{}, err
	}
	idx := indexOfPlant(plants, plantID)
	if idx < 0 {
		return entities.Plant{}, entities.CareEvent{}, entities.NewNotFoundError("plant %s", plantID)
	}
	events, err := g.Events(ctx, "")
	if err != nil {
		return entities.Plant{}, entities.CareEvent{}, err
	}

	plant := plants[idx]
	// a back-dated event is kept in the log but never moves the timestamp backwards
	latest := plant.LastCared(kind)
	if latest == nil || event.OccurredAt.After(*latest) {
		ts := event.OccurredAt
		latest = &ts
	}
	ov := &care.Overrides{}
	if kind == entities.Feeding {
		ov.LastFed = latest
	} else {
		ov.LastWatered = latest
	}
	next := care.NextCheckFor(plant, now, ov)

	plant.LastWatered, plant.LastFed = firstNonNil(ov.LastWatered, plant.LastWatered), firstNonNil(ov.LastFed, plant.LastFed)
	plant.NextCheck = &next
	plant.UpdatedAt = now
	if err := care.VerifyNextCheck(plant); err != nil {
		log.Printf("Refusing to persist care event for plant %s: %v", plantID, err)
		return entities.Plant{}, entities.CareEvent{}, err
	}
	if err := plant.Validate(); err != nil {
		return entities.Plant{}, entities.CareEvent{}, err
	}

	plants[idx] = plant
	events = append(events, event)
	if err := g.write(ctx, map[string]any{
		entities.PlantsCollection: plants,
		entities.EventsCollection: events,
	}); err != nil {
		return entities.Plant{}, entities.CareEvent{}, err
	}

	log.Printf("Recorded %s for plant %s, next check %s", kind, plant.Name, next.Format(time.RFC3339))
	return plant, event, nil
}

// write encodes and persists typed collections. Callers hold g.mu.
func (g *Gateway) write(ctx context.Context, collections map[string]any) error {
	batch := make(map[string]json.RawMessage, len(collections))
	for name, records := range collections {
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode collection %s: %w", name, err)
		}
		batch[name] = data
	}
	if err := g.store.SetMany(ctx, batch); err != nil {
		return entities.NewStorageError("write collections", err)
	}
	g.changed()
	return nil
}

func readCollection[T any](ctx context.Context, g *Gateway, name string, check func(*T) error) ([]T, error) {
	raw, err := g.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodeRecords(name, raw, check)
}

func decodeRecords[T any](name string, raw []json.RawMessage, check func(*T) error) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, entities.NewValidationError("%s record %d: %v", name, i, err)
		}
		if err := check(&rec); err != nil {
			return nil, fmt.Errorf("%s record %d: %w", name, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func validateRecords(name string, raw []json.RawMessage) error {
	var err error
	switch name {
	case entities.PlantsCollection:
		_, err = decodeRecords(name, raw, checkPlant)
	case entities.EventsCollection:
		_, err = decodeRecords(name, raw, checkEvent)
	}
	return err
}

// validateWrite applies the read checks plus the rules only new data must meet
func validateWrite(name string, raw []json.RawMessage) error {
	if name != entities.PlantsCollection {
		return validateRecords(name, raw)
	}
	_, err := decodeRecords(name, raw, func(p *entities.Plant) error {
		if err := checkPlant(p); err != nil {
			return err
		}
		return p.ValidateCadence()
	})
	return err
}

func checkPlant(p *entities.Plant) error {
	p.ApplyDefaults()
	return p.Validate()
}

func checkEvent(e *entities.CareEvent) error {
	return e.Validate()
}

func indexOfPlant(plants []entities.Plant, id string) int {
	for i, p := range plants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func firstNonNil(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

// IsStorageError reports whether err came from the backend rather than from validation
func IsStorageError(err error) bool {
	return errors.Is(err, entities.ErrStorage)
}

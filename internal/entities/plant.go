// Package entities contains the core domain objects for the plant-care tracker
package entities

import (
	"fmt"
	"strings"
	"time"
)

// Default care cadences applied when a plant is created without explicit frequencies.
const (
	DefaultWateringFrequencyDays = 7
	DefaultFeedingFrequencyDays  = 14
)

// FeedingStalenessDays is the system-wide bound on how long a plant may go without
// feeding. Per-plant feeding cadences are validated against it, so every view that
// asks "does this plant need feeding" gets the same answer.
const FeedingStalenessDays = 30

// Collection names understood by the storage gateway.
const (
	PlantsCollection = "plants"
	EventsCollection = "care_events"
)

// PlantStatus is the user-assigned health state of a plant
type PlantStatus string

const (
	StatusHealthy        PlantStatus = "healthy"
	StatusNeedsAttention PlantStatus = "needs_attention"
	StatusSick           PlantStatus = "sick"
	StatusRecovering     PlantStatus = "recovering"
)

// Valid reports whether s is one of the known statuses
func (s PlantStatus) Valid() bool {
	switch s {
	case StatusHealthy, StatusNeedsAttention, StatusSick, StatusRecovering:
		return true
	}
	return false
}

// Plant represents a single cared-for plant
type Plant struct {
	ID                    string      `json:"id"`
	Name                  string      `json:"name"`
	Species               string      `json:"species,omitempty"`
	Location              string      `json:"location,omitempty"`
	LastWatered           *time.Time  `json:"lastWatered,omitempty"`
	LastFed               *time.Time  `json:"lastFed,omitempty"`
	WateringFrequencyDays int         `json:"wateringFrequencyDays"`
	FeedingFrequencyDays  int         `json:"feedingFrequencyDays"`
	NextCheck             *time.Time  `json:"nextCheck,omitempty"` // cache for display, recomputed on every append
	Status                PlantStatus `json:"status"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// LastCared returns the last-event timestamp for the given care kind
func (p Plant) LastCared(kind CareKind) *time.Time {
	if kind == Feeding {
		return p.LastFed
	}
	return p.LastWatered
}

// Frequency returns the effective cadence in days for the given care kind.
// Feeding never stretches past FeedingStalenessDays, even for records stored
// before the bound was enforced on writes.
func (p Plant) Frequency(kind CareKind) int {
	if kind == Feeding {
		return min(p.FeedingFrequencyDays, FeedingStalenessDays)
	}
	return p.WateringFrequencyDays
}

// ApplyDefaults fills zero frequencies and status with their defaults.
// Negative frequencies are left alone so Validate can reject them.
func (p *Plant) ApplyDefaults() {
	if p.WateringFrequencyDays == 0 {
		p.WateringFrequencyDays = DefaultWateringFrequencyDays
	}
	if p.FeedingFrequencyDays == 0 {
		p.FeedingFrequencyDays = DefaultFeedingFrequencyDays
	}
	if p.Status == "" {
		p.Status = StatusHealthy
	}
}

// Validate checks the plant record against the schema
func (p Plant) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return NewValidationError("plant id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("plant %s: name is required", p.ID)
	}
	if err := ValidateFrequency(p.WateringFrequencyDays); err != nil {
		return fmt.Errorf("plant %s: watering frequency: %w", p.ID, err)
	}
	if err := ValidateFrequency(p.FeedingFrequencyDays); err != nil {
		return fmt.Errorf("plant %s: feeding frequency: %w", p.ID, err)
	}
	if !p.Status.Valid() {
		return NewValidationError("plant %s: unknown status %q", p.ID, p.Status)
	}
	for _, ts := range []*time.Time{p.LastWatered, p.LastFed, p.NextCheck} {
		if ts != nil && ts.IsZero() {
			return NewValidationError("plant %s: malformed timestamp", p.ID)
		}
	}
	return nil
}

// ValidateCadence rejects a feeding frequency beyond FeedingStalenessDays. It
// guards writes only; stored records are read with the cadence clamped.
func (p Plant) ValidateCadence() error {
	if p.FeedingFrequencyDays > FeedingStalenessDays {
		return NewValidationError("plant %s: feeding frequency %d exceeds the %d-day staleness bound",
			p.ID, p.FeedingFrequencyDays, FeedingStalenessDays)
	}
	return nil
}

// ValidateFrequency rejects non-positive care frequencies
func ValidateFrequency(days int) error {
	if days <= 0 {
		return NewValidationError("frequency must be a positive number of days, got %d", days)
	}
	return nil
}

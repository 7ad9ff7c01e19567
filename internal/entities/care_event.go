package entities

import (
	"strings"
	"time"
)

// CareKind identifies the type of care action
type CareKind string

const (
	Watering CareKind = "watering"
	Feeding  CareKind = "feeding"
)

// CareKinds lists every kind in display order
var CareKinds = []CareKind{Watering, Feeding}

// ParseCareKind accepts the canonical names plus the verbs used in chat commands
func ParseCareKind(s string) (CareKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "watering", "water", "watered":
		return Watering, nil
	case "feeding", "feed", "fed", "fertilize", "fertilized":
		return Feeding, nil
	}
	return "", NewValidationError("unknown care kind %q", s)
}

// CareEvent is an immutable record of one care action
type CareEvent struct {
	ID         string    `json:"id"`
	PlantID    string    `json:"plantId"`
	Kind       CareKind  `json:"kind"`
	OccurredAt time.Time `json:"occurredAt"`
	Amount     string    `json:"amount,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// Validate checks the event record against the schema
func (e CareEvent) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return NewValidationError("care event id is required")
	}
	if strings.TrimSpace(e.PlantID) == "" {
		return NewValidationError("care event %s: plant id is required", e.ID)
	}
	if e.Kind != Watering && e.Kind != Feeding {
		return NewValidationError("care event %s: unknown kind %q", e.ID, e.Kind)
	}
	if e.OccurredAt.IsZero() {
		return NewValidationError("care event %s: malformed occurredAt", e.ID)
	}
	return nil
}

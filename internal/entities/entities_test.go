package entities

import (
	"errors"
	"testing"
	"time"
)

func validPlant() Plant {
	return Plant{
		ID:                    "p1",
		Name:                  "Monstera",
		WateringFrequencyDays: 7,
		FeedingFrequencyDays:  14,
		Status:                StatusHealthy,
	}
}

func TestPlantValidate(t *testing.T) {
	if err := validPlant().Validate(); err != nil {
		t.Fatalf("Expected a valid plant, got %v", err)
	}

	var zero time.Time
	cases := map[string]func(p *Plant){
		"missing id":         func(p *Plant) { p.ID = " " },
		"missing name":       func(p *Plant) { p.Name = "" },
		"zero watering":      func(p *Plant) { p.WateringFrequencyDays = 0 },
		"negative feeding":   func(p *Plant) { p.FeedingFrequencyDays = -1 },
		"unknown status":     func(p *Plant) { p.Status = "thriving" },
		"malformed watering": func(p *Plant) { p.LastWatered = &zero },
	}
	for name, mutate := range cases {
		p := validPlant()
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestFeedingCadenceBound(t *testing.T) {
	p := validPlant()
	p.FeedingFrequencyDays = FeedingStalenessDays
	if err := p.ValidateCadence(); err != nil {
		t.Errorf("Expected the staleness bound itself to be allowed, got %v", err)
	}

	p.FeedingFrequencyDays = FeedingStalenessDays + 15
	if err := p.Validate(); err != nil {
		t.Errorf("Expected a stored record beyond the bound to stay readable, got %v", err)
	}
	if err := p.ValidateCadence(); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for a new cadence beyond the bound, got %v", err)
	}
	if got := p.Frequency(Feeding); got != FeedingStalenessDays {
		t.Errorf("Expected the effective cadence clamped to %d, got %d", FeedingStalenessDays, got)
	}
	if got := p.Frequency(Watering); got != 7 {
		t.Errorf("Expected watering cadence untouched, got %d", got)
	}
}

func TestApplyDefaults(t *testing.T) {
	p := Plant{ID: "p1", Name: "Fern", WateringFrequencyDays: 3, FeedingFrequencyDays: -2}
	p.ApplyDefaults()

	if p.WateringFrequencyDays != 3 {
		t.Errorf("Expected an explicit frequency to be kept, got %d", p.WateringFrequencyDays)
	}
	if p.FeedingFrequencyDays != -2 {
		t.Errorf("Expected a negative frequency to be left for Validate, got %d", p.FeedingFrequencyDays)
	}
	if p.Status != StatusHealthy {
		t.Errorf("Expected default status, got %q", p.Status)
	}

	var empty Plant
	empty.ApplyDefaults()
	if empty.WateringFrequencyDays != DefaultWateringFrequencyDays || empty.FeedingFrequencyDays != DefaultFeedingFrequencyDays {
		t.Errorf("Expected default frequencies, got %d/%d", empty.WateringFrequencyDays, empty.FeedingFrequencyDays)
	}
}

func TestParseCareKind(t *testing.T) {
	for input, want := range map[string]CareKind{
		"watering":  Watering,
		" Water ":   Watering,
		"watered":   Watering,
		"FEED":      Feeding,
		"fed":       Feeding,
		"fertilize": Feeding,
	} {
		got, err := ParseCareKind(input)
		if err != nil || got != want {
			t.Errorf("ParseCareKind(%q): expected %s, got %s (%v)", input, want, got, err)
		}
	}
	if _, err := ParseCareKind("prune"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for an unknown kind, got %v", err)
	}
}

func TestCareEventValidate(t *testing.T) {
	ok := CareEvent{ID: "e1", PlantID: "p1", Kind: Watering, OccurredAt: time.Now()}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Expected a valid event, got %v", err)
	}

	bad := []CareEvent{
		{PlantID: "p1", Kind: Watering, OccurredAt: time.Now()},
		{ID: "e1", Kind: Watering, OccurredAt: time.Now()},
		{ID: "e1", PlantID: "p1", Kind: "pruning", OccurredAt: time.Now()},
		{ID: "e1", PlantID: "p1", Kind: Feeding},
	}
	for i, e := range bad {
		if err := e.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestErrorCategories(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write plants", cause)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Errorf("Expected both the category and the cause to be reachable, got %v", err)
	}
	if errors.Is(NewNotFoundError("plant %s", "p1"), ErrValidation) {
		t.Error("Categories must not overlap")
	}
}

package care

import (
	"time"

	"github.com/abelzeko/plant-bot/internal/entities"
)

// NoHistoryCheckDays is how far ahead the next check is placed for a plant
// that has neither been watered nor fed yet.
const NoHistoryCheckDays = 2

// Urgency is the state of one care axis
type Urgency string

const (
	OK  Urgency = "ok"
	Due Urgency = "due"
)

// Classification holds the urgency of each care axis of a plant
type Classification struct {
	Watering Urgency
	Feeding  Urgency
}

// Overall is Due when any axis is due
func (c Classification) Overall() Urgency {
	if c.Watering == Due || c.Feeding == Due {
		return Due
	}
	return OK
}

// For returns the urgency of the given axis
func (c Classification) For(kind entities.CareKind) Urgency {
	if kind == entities.Feeding {
		return c.Feeding
	}
	return c.Watering
}

// DueDate returns when the given care kind is next due for the plant
func DueDate(kind entities.CareKind, p entities.Plant, now time.Time) time.Time {
	return ComputeNextDue(p.LastCared(kind), p.Frequency(kind), now)
}

// IsDue reports whether the plant needs the given care now
func IsDue(kind entities.CareKind, p entities.Plant, now time.Time) bool {
	last := p.LastCared(kind)
	if last == nil {
		return true
	}
	return DaysSince(*last, now) >= p.Frequency(kind)
}

// Classify returns the per-axis urgency of a plant
func Classify(p entities.Plant, now time.Time) Classification {
	c := Classification{Watering: OK, Feeding: OK}
	if IsDue(entities.Watering, p, now) {
		c.Watering = Due
	}
	if IsDue(entities.Feeding, p, now) {
		c.Feeding = Due
	}
	return c
}

// Overrides carries timestamps that were just recorded but are not yet on the plant
type Overrides struct {
	LastWatered *time.Time
	LastFed     *time.Time
}

// NextCheckFor computes the value Plant.NextCheck must hold: the earlier of
// the watering and feeding due dates, or now+NoHistoryCheckDays when the plant
// has no care history at all.
func NextCheckFor(p entities.Plant, now time.Time, ov *Overrides) time.Time {
	if ov != nil {
		if ov.LastWatered != nil {
			p.LastWatered = ov.LastWatered
		}
		if ov.LastFed != nil {
			p.LastFed = ov.LastFed
		}
	}
	if p.LastWatered == nil && p.LastFed == nil {
		return now.AddDate(0, 0, NoHistoryCheckDays)
	}

	watering := DueDate(entities.Watering, p, now)
	feeding := DueDate(entities.Feeding, p, now)
	if feeding.Before(watering) {
		return feeding
	}
	return watering
}

// NextCheckKind returns the care kind that determines the plant's next check
func NextCheckKind(p entities.Plant, now time.Time) entities.CareKind {
	if DueDate(entities.Feeding, p, now).Before(DueDate(entities.Watering, p, now)) {
		return entities.Feeding
	}
	return entities.Watering
}

// VerifyNextCheck fails when the cached next check precedes the earliest care
// timestamp it was derived from. That can only come from a computation bug or
// a corrupted record, so it is reported rather than repaired.
func VerifyNextCheck(p entities.Plant) error {
	if p.NextCheck == nil {
		return nil
	}
	var earliest *time.Time
	for _, ts := range []*time.Time{p.LastWatered, p.LastFed} {
		if ts != nil && (earliest == nil || ts.Before(*earliest)) {
			earliest = ts
		}
	}
	if earliest != nil && p.NextCheck.Before(*earliest) {
		return entities.NewInconsistentStateError("plant %s: next check %s precedes care timestamp %s",
			p.ID, p.NextCheck.Format(time.RFC3339), earliest.Format(time.RFC3339))
	}
	return nil
}

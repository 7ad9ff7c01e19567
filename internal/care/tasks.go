package care

import (
	"time"

	"github.com/abelzeko/plant-bot/internal/entities"
)

// DefaultUpcomingHorizonDays is how far ahead the task view looks for upcoming checks
const DefaultUpcomingHorizonDays = 3

// Task is one entry of the task list
type Task struct {
	Plant        entities.Plant
	Kind         entities.CareKind
	DueAt        time.Time
	DaysUntilDue int // signed, negative when overdue
}

// TaskBoard groups a plant collection into urgency buckets. A plant can show
// up in more than one bucket, but only once per axis.
type TaskBoard struct {
	OverdueOrDueTodayWatering []Task
	OverdueFeeding            []Task
	UpcomingChecks            []Task
}

// Empty reports whether nothing needs attention
func (b TaskBoard) Empty() bool {
	return len(b.OverdueOrDueTodayWatering) == 0 && len(b.OverdueFeeding) == 0 && len(b.UpcomingChecks) == 0
}

// BuildTasks buckets plants for the task view. Due dates are recomputed from
// the stored care timestamps rather than read from the cached NextCheck. An
// axis whose due date falls today or earlier puts the plant in that axis's
// bucket, so every plant whose next check is today shows up somewhere.
func BuildTasks(plants []entities.Plant, now time.Time, upcomingHorizonDays int) TaskBoard {
	var board TaskBoard
	today := DateOf(now)
	dueBy := func(t time.Time) bool {
		return !DateOf(t.In(now.Location())).After(today)
	}

	for _, p := range plants {
		listed := false
		wateringDue := DueDate(entities.Watering, p, now)
		if dueBy(wateringDue) {
			board.OverdueOrDueTodayWatering = append(board.OverdueOrDueTodayWatering, newTask(p, entities.Watering, wateringDue, now))
			listed = true
		}

		feedingDue := DueDate(entities.Feeding, p, now)
		if dueBy(feedingDue) {
			board.OverdueFeeding = append(board.OverdueFeeding, newTask(p, entities.Feeding, feedingDue, now))
			listed = true
		}

		next := NextCheckFor(p, now, nil)
		if listed || dueBy(next) {
			continue
		}
		if today.DaysUntil(DateOf(next.In(now.Location()))) <= upcomingHorizonDays {
			board.UpcomingChecks = append(board.UpcomingChecks, newTask(p, NextCheckKind(p, now), next, now))
		}
	}
	return board
}

func newTask(p entities.Plant, kind entities.CareKind, due, now time.Time) Task {
	return Task{
		Plant:        p,
		Kind:         kind,
		DueAt:        due,
		DaysUntilDue: DaysUntilDue(due, now),
	}
}

package usecases

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/plant-bot/internal/care"
	"github.com/abelzeko/plant-bot/internal/entities"
)

const dateLayout = "Mon 02 Jan"

// DisplayDays clamps a signed day count for display; overdue shows as zero days left
func DisplayDays(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// dueText renders a signed day count the way the task list shows it
func dueText(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%d days overdue", -days)
	case days == -1:
		return "1 day overdue"
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func kindIcon(kind entities.CareKind) string {
	if kind == entities.Feeding {
		return "🌱"
	}
	return "💧"
}

// FormatTasks formats the task board for display
func FormatTasks(board care.TaskBoard) string {
	if board.Empty() {
		return "All plants are happy. Nothing to do right now 🌿"
	}

	var result strings.Builder
	section := func(title string, tasks []care.Task) {
		if len(tasks) == 0 {
			return
		}
		result.WriteString(title + "\n")
		for _, task := range tasks {
			result.WriteString(fmt.Sprintf("%s %s: %s\n", kindIcon(task.Kind), task.Plant.Name, dueText(task.DaysUntilDue)))
		}
		result.WriteString("\n")
	}
	section("Water today:", board.OverdueOrDueTodayWatering)
	section("Needs feeding:", board.OverdueFeeding)
	section("Coming up:", board.UpcomingChecks)
	return strings.TrimRight(result.String(), "\n")
}

// FormatCalendar formats a calendar projection, one line per day
func FormatCalendar(view CalendarView) string {
	var result strings.Builder
	for _, d := range view.Days {
		result.WriteString(d.In(time.UTC).Format(dateLayout) + ": ")
		b := view.Buckets[d]
		var parts []string
		for _, id := range b.WateringDue {
			parts = append(parts, "💧 "+view.Names[id])
		}
		for _, id := range b.FeedingDue {
			parts = append(parts, "🌱 "+view.Names[id])
		}
		if len(parts) == 0 {
			result.WriteString("—")
		} else {
			result.WriteString(strings.Join(parts, ", "))
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatPlants lists plants with the days left until their next check
func FormatPlants(plants []entities.Plant, now time.Time) string {
	if len(plants) == 0 {
		return "No plants yet. Add one with /addplant [name]."
	}
	var result strings.Builder
	result.WriteString("Your plants:\n\n")
	for _, p := range plants {
		next := care.NextCheckFor(p, now, nil)
		result.WriteString(fmt.Sprintf("• %s — next check in %d days\n", p.Name, DisplayDays(care.DaysUntilDue(next, now))))
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatStatus formats a single plant report
func FormatStatus(r PlantReport, now time.Time) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("🪴 %s", r.Plant.Name))
	if r.Plant.Species != "" {
		result.WriteString(fmt.Sprintf(" (%s)", r.Plant.Species))
	}
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("Status: %s\n", r.Plant.Status))
	result.WriteString(fmt.Sprintf("💧 Watering every %d days, last %s, %s\n",
		r.Plant.WateringFrequencyDays, lastText(r.Plant.LastWatered), dueText(care.DaysUntilDue(r.WateringDue, now))))
	result.WriteString(fmt.Sprintf("🌱 Feeding every %d days, last %s, %s\n",
		r.Plant.FeedingFrequencyDays, lastText(r.Plant.LastFed), dueText(care.DaysUntilDue(r.FeedingDue, now))))
	result.WriteString(fmt.Sprintf("🕒 Next check: %s", r.NextCheck.Format("2006-01-02 15:04")))
	return result.String()
}

// FormatHistory lists care events newest first
func FormatHistory(p entities.Plant, events []entities.CareEvent) string {
	if len(events) == 0 {
		return fmt.Sprintf("No care logged for %s yet.", p.Name)
	}
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Care history for %s:\n\n", p.Name))
	for _, e := range events {
		result.WriteString(fmt.Sprintf("%s %s %s", kindIcon(e.Kind), e.OccurredAt.Format("2006-01-02 15:04"), e.Kind))
		if e.Amount != "" {
			result.WriteString(" " + e.Amount)
		}
		if e.Notes != "" {
			result.WriteString(" — " + e.Notes)
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// FormatLogged confirms a quick-log action
func FormatLogged(p entities.Plant, kind entities.CareKind, now time.Time) string {
	next := now
	if p.NextCheck != nil {
		next = *p.NextCheck
	}
	return fmt.Sprintf("%s Logged %s for %s. Next check in %d days (%s).",
		kindIcon(kind), kind, p.Name, DisplayDays(care.DaysUntilDue(next, now)), next.Format(dateLayout))
}

// FormatError maps an engine error to a user-facing message
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrQuickLogInFlight):
		return "Hang on, I'm still saving the previous log for that plant."
	case errors.Is(err, entities.ErrNotFound):
		return "I couldn't find that plant. Use /plants to see your plants."
	case errors.Is(err, entities.ErrValidation):
		return "That doesn't look right: " + err.Error()
	case errors.Is(err, entities.ErrStorage):
		return "Couldn't save that right now. Nothing was changed, please try again."
	case errors.Is(err, entities.ErrInconsistentState):
		return "Something is off with this plant's schedule, so nothing was saved. Please report this."
	default:
		return "Something went wrong. Please try again later."
	}
}

func lastText(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02")
}

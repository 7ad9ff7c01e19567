package care

import (
	"time"

	"github.com/abelzeko/plant-bot/internal/entities"
)

// DayBuckets lists the plants due on one calendar date, in input order
type DayBuckets struct {
	WateringDue []string
	FeedingDue  []string
}

// ProjectRange places each plant's single next watering and feeding due date
// onto the calendar between start and end inclusive. Dates are taken in now's
// location. Only dates with at least one due plant appear in the result.
func ProjectRange(plants []entities.Plant, start, end Date, now time.Time) map[Date]DayBuckets {
	out := make(map[Date]DayBuckets)
	if end.Before(start) {
		return out
	}

	loc := now.Location()
	for _, p := range plants {
		for _, kind := range entities.CareKinds {
			d := DateOf(DueDate(kind, p, now).In(loc))
			if d.Before(start) || d.After(end) {
				continue
			}
			b := out[d]
			if kind == entities.Watering {
				b.WateringDue = append(b.WateringDue, p.ID)
			} else {
				b.FeedingDue = append(b.FeedingDue, p.ID)
			}
			out[d] = b
		}
	}
	return out
}

// DaysBetween returns every date from start to end inclusive
func DaysBetween(start, end Date) []Date {
	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

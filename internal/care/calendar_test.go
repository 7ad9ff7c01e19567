package care

import (
	"reflect"
	"testing"

	"github.com/abelzeko/plant-bot/internal/entities"
)

func TestProjectRangeSingleOccurrence(t *testing.T) {
	p := testPlant("fern")
	p.LastWatered = daysAgo(4) // watering due in 3 days
	p.LastFed = daysAgo(1)     // feeding due in 13 days, outside the window

	start := DateOf(testNow)
	end := start.AddDays(6)
	cal := ProjectRange([]entities.Plant{p}, start, end, testNow)

	dueDay := start.AddDays(3)
	for _, d := range DaysBetween(start, end) {
		b := cal[d]
		if d == dueDay {
			if !reflect.DeepEqual(b.WateringDue, []string{"fern"}) {
				t.Errorf("Expected fern on %s, got %v", d, b.WateringDue)
			}
			continue
		}
		if len(b.WateringDue) != 0 {
			t.Errorf("Did not expect watering on %s, got %v", d, b.WateringDue)
		}
		if len(b.FeedingDue) != 0 {
			t.Errorf("Did not expect feeding on %s, got %v", d, b.FeedingDue)
		}
	}
	if len(cal) != 1 {
		t.Errorf("Expected exactly one populated day, got %d", len(cal))
	}
}

func TestProjectRangeStableOrder(t *testing.T) {
	a, b, c := testPlant("a"), testPlant("b"), testPlant("c")
	a.LastWatered = daysAgo(5)
	b.LastWatered = daysAgo(5)
	c.LastWatered = daysAgo(5)
	for _, p := range []*entities.Plant{&a, &b, &c} {
		p.LastFed = daysAgo(0)
	}

	start := DateOf(testNow)
	cal := ProjectRange([]entities.Plant{c, a, b}, start, start.AddDays(6), testNow)
	got := cal[start.AddDays(2)].WateringDue
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("Expected input order [c a b], got %v", got)
	}
}

func TestProjectRangeNeverCaredIsToday(t *testing.T) {
	p := testPlant("new")
	start := DateOf(testNow)
	cal := ProjectRange([]entities.Plant{p}, start, start.AddDays(6), testNow)

	today := cal[start]
	if len(today.WateringDue) != 1 || len(today.FeedingDue) != 1 {
		t.Errorf("Expected a new plant due today on both axes, got %+v", today)
	}
}

func TestProjectRangeOmitsPastDueOutsideWindow(t *testing.T) {
	p := testPlant("old")
	p.LastWatered = daysAgo(20)
	p.LastFed = daysAgo(20)

	start := DateOf(testNow)
	cal := ProjectRange([]entities.Plant{p}, start, start.AddDays(6), testNow)
	if len(cal) != 0 {
		t.Errorf("Expected no entries for a plant overdue before the window, got %v", cal)
	}

	// the same plant shows on its due dates when the window covers them
	cal = ProjectRange([]entities.Plant{p}, start.AddDays(-30), start, testNow)
	if len(cal[start.AddDays(-13)].WateringDue) != 1 || len(cal[start.AddDays(-6)].FeedingDue) != 1 {
		t.Errorf("Expected past due dates inside the window, got %v", cal)
	}
}

func TestProjectRangeInvertedRange(t *testing.T) {
	start := DateOf(testNow)
	if cal := ProjectRange([]entities.Plant{testPlant("x")}, start, start.AddDays(-1), testNow); len(cal) != 0 {
		t.Errorf("Expected empty calendar for an inverted range, got %v", cal)
	}
}

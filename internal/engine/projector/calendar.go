package projector

import (
	"sort"
	"time"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

const dayKeyLayout = "2006-01-02"

// DayMark summarises the events falling on one calendar day.
type DayMark struct {
	Date      time.Time              `json:"date"`
	HasEvent  bool                   `json:"has_event"`
	Overdue   bool                   `json:"overdue"`
	Soon      bool                   `json:"soon"`
	Farrows   []models.FarrowEvent   `json:"farrows,omitempty"`
	Saleables []models.SaleableEvent `json:"saleables,omitempty"`
}

// Calendar groups events by civil day for date-picker lookups.
type Calendar struct {
	days map[string]*DayMark
}

// BuildCalendar indexes farrow and saleable events by their target day. A day is Soon when
// at least one pending event on it is due within soonDays.
func BuildCalendar(farrows []models.FarrowEvent, saleables []models.SaleableEvent, soonDays int) Calendar {
	cal := Calendar{days: make(map[string]*DayMark)}

	for _, e := range farrows {
		mark := cal.mark(e.ExpectedDate)
		mark.Farrows = append(mark.Farrows, e)
		if e.IsOverdue {
			mark.Overdue = true
		}
		if !e.Resolved && e.DaysUntilFarrow >= 0 && e.DaysUntilFarrow <= soonDays {
			mark.Soon = true
		}
	}

	for _, e := range saleables {
		mark := cal.mark(e.SaleableDate)
		mark.Saleables = append(mark.Saleables, e)
		if e.IsPastDue {
			mark.Overdue = true
		}
		if !e.Sold() && e.DaysUntilSaleable >= 0 && e.DaysUntilSaleable <= soonDays {
			mark.Soon = true
		}
	}

	return cal
}

func (c Calendar) mark(t time.Time) *DayMark {
	day := lifecycle.StartOfDay(t)
	key := day.Format(dayKeyLayout)
	if m, ok := c.days[key]; ok {
		return m
	}
	m := &DayMark{Date: day, HasEvent: true}
	c.days[key] = m
	return m
}

// Day returns the mark for the civil day of t, ignoring time of day.
func (c Calendar) Day(t time.Time) (DayMark, bool) {
	m, ok := c.days[lifecycle.StartOfDay(t).Format(dayKeyLayout)]
	if !ok {
		return DayMark{Date: lifecycle.StartOfDay(t)}, false
	}
	return *m, true
}

// Month lists the marked days of a month in date order.
func (c Calendar) Month(year int, month time.Month) []DayMark {
	var out []DayMark
	for _, m := range c.days {
		if m.Date.Year() == year && m.Date.Month() == month {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Len is the number of marked days.
func (c Calendar) Len() int {
	return len(c.days)
}

// Package projector turns breeding and litter records into farrow and saleable events.
//
// Every function is pure: inputs are never mutated and the caller supplies "now",
// so projecting the same snapshot twice yields identical results.
package projector

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

// ErrMissingTargetDate indicates a record lacks the date its event is anchored on.
var ErrMissingTargetDate = errors.New("missing target date")

// RecordError reports a single record that could not be projected.
type RecordError struct {
	Kind string
	ID   string
	Err  error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// ProjectFarrowEvents builds one event per non-aborted breeding. Breedings that already
// farrowed are kept with Resolved set so historical views can show them.
func ProjectFarrowEvents(breedings []models.Breeding, now time.Time) ([]models.FarrowEvent, []RecordError) {
	today := lifecycle.StartOfDay(now)
	events := make([]models.FarrowEvent, 0, len(breedings))
	var errs []RecordError

	for _, b := range breedings {
		if b.Aborted {
			continue
		}
		if b.ExpectedFarrowDate.IsZero() {
			errs = append(errs, RecordError{Kind: "breeding", ID: b.ID, Err: fmt.Errorf("expected farrow date: %w", ErrMissingTargetDate)})
			continue
		}

		expected := lifecycle.StartOfDay(b.ExpectedFarrowDate)
		resolved := models.HasDate(b.ActualFarrowDate)
		events = append(events, models.FarrowEvent{
			BreedingID:       b.ID,
			SowID:            b.SowID,
			SowName:          b.SowName,
			BoarBreed:        b.BoarBreed,
			BreedDate:        b.BreedDate,
			ExpectedDate:     expected,
			ActualFarrowDate: copyTime(b.ActualFarrowDate),
			DaysUntilFarrow:  lifecycle.DaysBetween(today, expected),
			IsOverdue:        expected.Before(today) && !resolved,
			Resolved:         resolved,
		})
	}

	return events, errs
}

// ProjectSaleableEvents builds one event per litter with a saleable date. A litter whose
// fattening started but has no saleable date is reported instead of projected.
func ProjectSaleableEvents(litters []models.Litter, now time.Time) ([]models.SaleableEvent, []RecordError) {
	today := lifecycle.StartOfDay(now)
	events := make([]models.SaleableEvent, 0, len(litters))
	var errs []RecordError

	for _, l := range litters {
		if !models.HasDate(l.SaleableAt) {
			if models.HasDate(l.FatteningAt) {
				errs = append(errs, RecordError{Kind: "litter", ID: l.ID, Err: fmt.Errorf("saleable date: %w", ErrMissingTargetDate)})
			}
			continue
		}

		saleable := lifecycle.StartOfDay(*l.SaleableAt)
		events = append(events, models.SaleableEvent{
			LitterID:          l.ID,
			SowID:             l.SowID,
			SowName:           l.SowName,
			BoarBreed:         l.BoarBreed,
			FatteningDate:     copyTime(l.FatteningAt),
			SaleableDate:      saleable,
			SoldAt:            copyTime(l.SoldAt),
			DaysUntilSaleable: lifecycle.DaysBetween(today, saleable),
			IsPastDue:         saleable.Before(today) && !l.IsSold(),
			MaleCount:         l.MaleCount,
			FemaleCount:       l.FemaleCount,
		})
	}

	return events, errs
}

// UpcomingFarrows returns unresolved, not yet overdue events, soonest first.
func UpcomingFarrows(events []models.FarrowEvent) []models.FarrowEvent {
	out := filter(events, func(e models.FarrowEvent) bool { return !e.Resolved && !e.IsOverdue })
	sortFarrows(out)
	return out
}

// OverdueFarrows returns unresolved events whose expected date has passed, oldest first.
func OverdueFarrows(events []models.FarrowEvent) []models.FarrowEvent {
	out := filter(events, func(e models.FarrowEvent) bool { return !e.Resolved && e.IsOverdue })
	sortFarrows(out)
	return out
}

// UpcomingSaleable returns unsold, not yet past-due events, soonest first.
func UpcomingSaleable(events []models.SaleableEvent) []models.SaleableEvent {
	out := filter(events, func(e models.SaleableEvent) bool { return !e.Sold() && !e.IsPastDue })
	sortSaleable(out)
	return out
}

// PastDueSaleable returns unsold events whose saleable date has passed, oldest first.
func PastDueSaleable(events []models.SaleableEvent) []models.SaleableEvent {
	out := filter(events, func(e models.SaleableEvent) bool { return !e.Sold() && e.IsPastDue })
	sortSaleable(out)
	return out
}

// FarrowsWithin keeps events expected between today and n days from now, inclusive.
func FarrowsWithin(events []models.FarrowEvent, n int) []models.FarrowEvent {
	return filter(events, func(e models.FarrowEvent) bool {
		return e.DaysUntilFarrow >= 0 && e.DaysUntilFarrow <= n
	})
}

// SaleableWithin keeps events saleable between today and n days from now, inclusive.
func SaleableWithin(events []models.SaleableEvent, n int) []models.SaleableEvent {
	return filter(events, func(e models.SaleableEvent) bool {
		return e.DaysUntilSaleable >= 0 && e.DaysUntilSaleable <= n
	})
}

func sortFarrows(events []models.FarrowEvent) {
	slices.SortStableFunc(events, func(a, b models.FarrowEvent) int {
		return a.ExpectedDate.Compare(b.ExpectedDate)
	})
}

func sortSaleable(events []models.SaleableEvent) {
	slices.SortStableFunc(events, func(a, b models.SaleableEvent) int {
		return a.SaleableDate.Compare(b.SaleableDate)
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if !models.HasDate(t) {
		return nil
	}
	v := *t
	return &v
}

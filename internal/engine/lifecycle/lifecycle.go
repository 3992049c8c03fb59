// Package lifecycle computes breeding and fattening milestone dates on whole-day granularity.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	hoursInDay = 24

	DefaultPregnancyDays = 114
	DefaultFatteningDays = 145

	MinPregnancyDays = 100
	MaxPregnancyDays = 130
	MinFatteningDays = 120
	MaxFatteningDays = 180
)

// ErrInvalidDate is returned when a mandatory date is missing or unparseable.
var ErrInvalidDate = errors.New("invalid date")

// ErrDurationOutOfRange indicates a duration outside its admissible configuration range.
var ErrDurationOutOfRange = errors.New("duration out of range")

// Durations holds the configurable phase lengths, in days.
type Durations struct {
	PregnancyDays int `json:"pregnancy_days" yaml:"pregnancy_days"`
	FatteningDays int `json:"fattening_days" yaml:"fattening_days"`
}

// DefaultDurations returns the fallback configuration used when nothing is set.
func DefaultDurations() Durations {
	return Durations{PregnancyDays: DefaultPregnancyDays, FatteningDays: DefaultFatteningDays}
}

// WithDefaults fills unset (non-positive) values with the defaults.
func (d Durations) WithDefaults() Durations {
	if d.PregnancyDays <= 0 {
		d.PregnancyDays = DefaultPregnancyDays
	}
	if d.FatteningDays <= 0 {
		d.FatteningDays = DefaultFatteningDays
	}
	return d
}

// Validate checks both durations against their admissible ranges.
func (d Durations) Validate() error {
	if d.PregnancyDays < MinPregnancyDays || d.PregnancyDays > MaxPregnancyDays {
		return fmt.Errorf("pregnancy days %d not in [%d, %d]: %w", d.PregnancyDays, MinPregnancyDays, MaxPregnancyDays, ErrDurationOutOfRange)
	}
	if d.FatteningDays < MinFatteningDays || d.FatteningDays > MaxFatteningDays {
		return fmt.Errorf("fattening days %d not in [%d, %d]: %w", d.FatteningDays, MinFatteningDays, MaxFatteningDays, ErrDurationOutOfRange)
	}
	return nil
}

// StartOfDay truncates t to midnight UTC of its civil date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDuration returns base plus the given number of calendar days.
func AddDuration(base time.Time, days int) (time.Time, error) {
	if base.IsZero() {
		return time.Time{}, fmt.Errorf("add %d days: missing base date: %w", days, ErrInvalidDate)
	}
	return StartOfDay(base).AddDate(0, 0, days), nil
}

// ExpectedFarrowDate derives the expected farrowing date from a breed date.
func ExpectedFarrowDate(breedDate time.Time, d Durations) (time.Time, error) {
	return AddDuration(breedDate, d.WithDefaults().PregnancyDays)
}

// SaleableDate derives the saleable date from a fattening start date.
func SaleableDate(fatteningDate time.Time, d Durations) (time.Time, error) {
	return AddDuration(fatteningDate, d.WithDefaults().FatteningDays)
}

// DaysBetween returns the whole calendar-day difference to - from.
func DaysBetween(from, to time.Time) int {
	diff := StartOfDay(to).Sub(StartOfDay(from))
	return int(diff.Hours()) / hoursInDay
}

// AgeInDays is the number of days elapsed since birth. Missing birth dates are an error.
func AgeInDays(birth, now time.Time) (int, error) {
	if birth.IsZero() {
		return 0, fmt.Errorf("age: missing birth date: %w", ErrInvalidDate)
	}
	return DaysBetween(birth, now), nil
}

// ParseDate parses a calendar date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("parse date: empty value: %w", ErrInvalidDate)
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t), nil
	}

	return time.Time{}, fmt.Errorf("parse date %q: %w", value, ErrInvalidDate)
}

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

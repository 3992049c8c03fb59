package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrStageRegression indicates an update would move a litter back to an earlier lifecycle stage.
var ErrStageRegression = errors.New("litter stage cannot regress")

// Violations maps field names to validation failure codes.
type Violations map[string]string

// Empty reports whether no violation was recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// Err converts the violations into an error, or nil when empty.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

// ValidationError carries per-field violations.
type ValidationError struct {
	Fields Violations
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func nonNegative(field string, value int, v Violations) {
	if value < 0 {
		v[field] = "must_not_be_negative"
	}
}

func notBefore(field string, value *time.Time, floorField string, floor time.Time, v Violations) {
	if HasDate(value) && !floor.IsZero() && value.Before(floor) {
		v[field] = "before_" + floorField
	}
}

// SowPatch carries optional sow updates. Availability is not patchable: it follows the
// sow's breedings.
type SowPatch struct {
	Name       *string    `json:"name,omitempty"`
	IsActive   *bool      `json:"is_active,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	IntakeDate *time.Time `json:"intake_date,omitempty"`
	TeatCount  *int       `json:"teat_count,omitempty"`
	BreedIDs   *[]string  `json:"breed_ids,omitempty"`
}

// Validate checks the fields that are set.
func (p SowPatch) Validate() error {
	v := Violations{}
	if p.Name != nil {
		required("name", *p.Name, v)
	}
	if p.TeatCount != nil {
		nonNegative("teat_count", *p.TeatCount, v)
	}
	if p.BirthDate != nil && p.IntakeDate != nil && p.IntakeDate.Before(*p.BirthDate) {
		v["intake_date"] = "before_birth_date"
	}
	return v.Err()
}

// Apply merges the patch into a copy of s.
func (p SowPatch) Apply(s Sow) Sow {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.BirthDate != nil {
		s.BirthDate = p.BirthDate
	}
	if p.IntakeDate != nil {
		s.IntakeDate = p.IntakeDate
	}
	if p.TeatCount != nil {
		s.TeatCount = *p.TeatCount
	}
	if p.BreedIDs != nil {
		s.BreedIDs = append([]string(nil), (*p.BreedIDs)...)
	}
	return s
}

// BoarPatch carries boar updates. Only the description may change once a boar is referenced.
type BoarPatch struct {
	Description *string `json:"description,omitempty"`
}

// Validate checks the fields that are set.
func (p BoarPatch) Validate() error {
	if p.Description == nil {
		return Violations{"description": "required"}.Err()
	}
	return nil
}

// Apply merges the patch into a copy of b.
func (p BoarPatch) Apply(b Boar) Boar {
	if p.Description != nil {
		b.Description = *p.Description
	}
	return b
}

// BreedingPatch carries optional breeding updates.
type BreedingPatch struct {
	BoarID             *string    `json:"boar_id,omitempty"`
	ActualFarrowDate   *time.Time `json:"actual_farrow_date,omitempty"`
	Aborted            *bool      `json:"aborted,omitempty"`
	PigletsMaleAlive   *int       `json:"piglets_male_alive,omitempty"`
	PigletsFemaleAlive *int       `json:"piglets_female_alive,omitempty"`
	PigletsDead        *int       `json:"piglets_dead,omitempty"`
}

// Validate checks the fields that are set.
func (p BreedingPatch) Validate() error {
	v := Violations{}
	if p.PigletsMaleAlive != nil {
		nonNegative("piglets_male_alive", *p.PigletsMaleAlive, v)
	}
	if p.PigletsFemaleAlive != nil {
		nonNegative("piglets_female_alive", *p.PigletsFemaleAlive, v)
	}
	if p.PigletsDead != nil {
		nonNegative("piglets_dead", *p.PigletsDead, v)
	}
	return v.Err()
}

// Apply merges the patch into a copy of b and recomputes the born count.
func (p BreedingPatch) Apply(b Breeding) (Breeding, error) {
	v := Violations{}
	notBefore("actual_farrow_date", p.ActualFarrowDate, "breed_date", b.BreedDate, v)
	if err := v.Err(); err != nil {
		return b, err
	}

	if p.BoarID != nil {
		b.BoarID = p.BoarID
	}
	if p.ActualFarrowDate != nil {
		b.ActualFarrowDate = p.ActualFarrowDate
	}
	if p.Aborted != nil {
		b.Aborted = *p.Aborted
	}
	if p.PigletsMaleAlive != nil {
		b.PigletsMaleAlive = *p.PigletsMaleAlive
	}
	if p.PigletsFemaleAlive != nil {
		b.PigletsFemaleAlive = *p.PigletsFemaleAlive
	}
	if p.PigletsDead != nil {
		b.PigletsDead = *p.PigletsDead
	}
	b.PigletsBornCount = b.PigletsMaleAlive + b.PigletsFemaleAlive + b.PigletsDead
	return b, nil
}

// LitterPatch carries optional litter updates. Lifecycle timestamps can be set but never cleared.
// The saleable date is derived from FatteningAt by the caller and is not part of the patch.
type LitterPatch struct {
	MaleCount   *int       `json:"male_count,omitempty"`
	FemaleCount *int       `json:"female_count,omitempty"`
	AvgWeight   *float64   `json:"avg_weight,omitempty"`
	FatteningAt *time.Time `json:"fattening_at,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
}

// Validate checks the fields that are set.
func (p LitterPatch) Validate() error {
	v := Violations{}
	if p.MaleCount != nil {
		nonNegative("male_count", *p.MaleCount, v)
	}
	if p.FemaleCount != nil {
		nonNegative("female_count", *p.FemaleCount, v)
	}
	if p.AvgWeight != nil && *p.AvgWeight < 0 {
		v["avg_weight"] = "must_not_be_negative"
	}
	if p.FatteningAt != nil && p.FatteningAt.IsZero() {
		v["fattening_at"] = "required"
	}
	if p.SoldAt != nil && p.SoldAt.IsZero() {
		v["sold_at"] = "required"
	}
	return v.Err()
}

// Apply merges the patch into a copy of l. Backfilling a fattening date on a litter that
// was already sold yields ErrStageRegression.
func (p LitterPatch) Apply(l Litter) (Litter, error) {
	if l.IsSold() && HasDate(p.FatteningAt) && !HasDate(l.FatteningAt) {
		return l, fmt.Errorf("set fattening on sold litter %s: %w", l.ID, ErrStageRegression)
	}

	fattening := l.FatteningAt
	if HasDate(p.FatteningAt) {
		fattening = p.FatteningAt
	}
	v := Violations{}
	if HasDate(fattening) {
		notBefore("sold_at", p.SoldAt, "fattening_at", *fattening, v)
	}
	notBefore("fattening_at", p.FatteningAt, "birth_date", l.BirthDate, v)
	if err := v.Err(); err != nil {
		return l, err
	}

	if p.MaleCount != nil {
		l.MaleCount = *p.MaleCount
	}
	if p.FemaleCount != nil {
		l.FemaleCount = *p.FemaleCount
	}
	if p.AvgWeight != nil {
		l.AvgWeight = p.AvgWeight
	}
	if HasDate(p.FatteningAt) {
		l.FatteningAt = p.FatteningAt
	}
	if HasDate(p.SoldAt) {
		l.SoldAt = p.SoldAt
	}
	return l, nil
}

// MedicalRecordPatch carries optional medical record updates.
type MedicalRecordPatch struct {
	Symptoms *string    `json:"symptoms,omitempty"`
	Medicine *string    `json:"medicine,omitempty"`
	UsedAt   *time.Time `json:"used_at,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

// Validate checks the fields that are set.
func (p MedicalRecordPatch) Validate() error {
	v := Violations{}
	if p.Medicine != nil {
		required("medicine", *p.Medicine, v)
	}
	if p.UsedAt != nil && p.UsedAt.IsZero() {
		v["used_at"] = "required"
	}
	return v.Err()
}

// Apply merges the patch into a copy of m.
func (p MedicalRecordPatch) Apply(m MedicalRecord) MedicalRecord {
	if p.Symptoms != nil {
		m.Symptoms = *p.Symptoms
	}
	if p.Medicine != nil {
		m.Medicine = *p.Medicine
	}
	if p.UsedAt != nil {
		m.UsedAt = *p.UsedAt
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	return m
}

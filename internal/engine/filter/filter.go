// Package filter narrows record collections and computes dashboard aggregates.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

// ErrUnknownPreset is returned when a preset key or label is not registered.
var ErrUnknownPreset = errors.New("unknown filter preset")

// Fielder exposes record attributes by name for equality constraints.
type Fielder interface {
	Field(name string) (any, bool)
}

// Constraints is a set of field-equality requirements. A record matches when every
// constraint equals the record's field; an empty set matches everything.
type Constraints map[string]any

// Matches reports whether the record satisfies all constraints.
func (c Constraints) Matches(record Fielder) bool {
	for key, want := range c {
		got, ok := record.Field(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Search keeps items for which at least one field contains query, ignoring case.
// A blank query returns a copy of items in their original order.
func Search[T any](items []T, query string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Match keeps items that satisfy every constraint, preserving order.
func Match[T Fielder](items []T, constraints Constraints) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if constraints.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortStable returns a sorted copy; items comparing equal keep their relative order.
func SortStable[T any](items []T, cmp func(a, b T) int) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, cmp)
	return out
}

// Preset is a named categorical filter.
type Preset struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Constraints Constraints `json:"constraints"`
}

var sowPresets = []Preset{
	{Key: "all", Label: "ทั้งหมด", Constraints: Constraints{}},
	{Key: "pregnant", Label: "ตั้งท้อง", Constraints: Constraints{"is_available": false}},
	{Key: "available", Label: "พร้อมผสม", Constraints: Constraints{"is_available": true}},
	{Key: "active", Label: "ใช้งาน", Constraints: Constraints{"is_active": true}},
	{Key: "inactive", Label: "ไม่ใช้งาน", Constraints: Constraints{"is_active": false}},
}

// SowPresets lists the registered sow presets in display order.
func SowPresets() []Preset {
	out := make([]Preset, len(sowPresets))
	copy(out, sowPresets)
	return out
}

// LookupPreset resolves a preset by key or display label. A blank name resolves to "all".
func LookupPreset(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sowPresets[0], nil
	}
	for _, p := range sowPresets {
		if strings.EqualFold(p.Key, name) || p.Label == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
}

// SowSearchFields are the display fields searched for sows.
func SowSearchFields(s models.Sow) []string {
	return []string{s.Name}
}

// BreedingSearchFields are the display fields searched for breedings.
func BreedingSearchFields(b models.Breeding) []string {
	return []string{b.SowName, b.BoarBreed}
}

// LitterSearchFields are the display fields searched for litters.
func LitterSearchFields(l models.Litter) []string {
	return []string{l.SowName, l.BoarBreed}
}

// MedicalSearchFields are the display fields searched for medical records.
func MedicalSearchFields(m models.MedicalRecord) []string {
	return []string{m.SowName, m.Symptoms, m.Medicine}
}

// Sows applies a free-text query and a preset to a sow list.
func Sows(sows []models.Sow, query, preset string) ([]models.Sow, error) {
	p, err := LookupPreset(preset)
	if err != nil {
		return nil, err
	}
	return Match(Search(sows, query, SowSearchFields), p.Constraints), nil
}

// ByStage keeps litters currently in the given lifecycle stage.
func ByStage(litters []models.Litter, stage models.LitterStage, now time.Time) []models.Litter {
	out := make([]models.Litter, 0, len(litters))
	for _, l := range litters {
		if l.Stage(now) == stage {
			out = append(out, l)
		}
	}
	return out
}

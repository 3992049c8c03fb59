package models

import (
	"time"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

// HasDate reports whether an optional date is set. Nil and zero times both count as absent.
func HasDate(t *time.Time) bool {
	return t != nil && !t.IsZero()
}

// Sow is a breeding female registered by a farm operator.
type Sow struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Name        string     `bson:"name" json:"name"`
	IsActive    bool       `bson:"is_active" json:"is_active"`
	IsAvailable bool       `bson:"is_available" json:"is_available"`
	BirthDate   *time.Time `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	IntakeDate  *time.Time `bson:"intake_date,omitempty" json:"intake_date,omitempty"`
	TeatCount   int        `bson:"teat_count" json:"teat_count"`
	BreedIDs    []string   `bson:"breed_ids,omitempty" json:"breed_ids,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// Field exposes filterable attributes by their stored name.
func (s Sow) Field(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "name":
		return s.Name, true
	case "is_active":
		return s.IsActive, true
	case "is_available":
		return s.IsAvailable, true
	case "teat_count":
		return s.TeatCount, true
	}
	return nil, false
}

// Boar is a breed (lineage) record referenced by breedings and litters.
type Boar struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Breed       string    `bson:"breed" json:"breed"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Breeding is a mating event tracked until farrowing or abortion.
type Breeding struct {
	ID                 string     `bson:"_id" json:"id"`
	UserID             string     `bson:"user_id" json:"user_id"`
	SowID              string     `bson:"sow_id" json:"sow_id"`
	SowName            string     `bson:"-" json:"sow_name,omitempty"`
	BoarID             *string    `bson:"boar_id,omitempty" json:"boar_id,omitempty"`
	BoarBreed          string     `bson:"-" json:"boar_breed,omitempty"`
	BreedDate          time.Time  `bson:"breed_date" json:"breed_date"`
	ExpectedFarrowDate time.Time  `bson:"expected_farrow_date" json:"expected_farrow_date"`
	ActualFarrowDate   *time.Time `bson:"actual_farrow_date,omitempty" json:"actual_farrow_date,omitempty"`
	Aborted            bool       `bson:"aborted" json:"aborted"`
	PigletsMaleAlive   int        `bson:"piglets_male_alive" json:"piglets_male_alive"`
	PigletsFemaleAlive int        `bson:"piglets_female_alive" json:"piglets_female_alive"`
	PigletsDead        int        `bson:"piglets_dead" json:"piglets_dead"`
	PigletsBornCount   int        `bson:"piglets_born_count" json:"piglets_born_count"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
}

// IsOpen reports whether the breeding is still awaiting farrowing.
func (b Breeding) IsOpen() bool {
	return !HasDate(b.ActualFarrowDate) && !b.Aborted
}

// IsFarrowed reports whether farrowing is confirmed.
func (b Breeding) IsFarrowed() bool {
	return HasDate(b.ActualFarrowDate) && !b.Aborted
}

// Field exposes filterable attributes by their stored name.
func (b Breeding) Field(name string) (any, bool) {
	switch name {
	case "id":
		return b.ID, true
	case "sow_id":
		return b.SowID, true
	case "aborted":
		return b.Aborted, true
	case "farrowed":
		return b.IsFarrowed(), true
	case "open":
		return b.IsOpen(), true
	}
	return nil, false
}

// LitterStage enumerates the litter lifecycle states.
type LitterStage string

const (
	StageBorn      LitterStage = "born"
	StageFattening LitterStage = "fattening"
	StageSaleable  LitterStage = "saleable"
	StageSold      LitterStage = "sold"
)

func (s LitterStage) rank() int {
	switch s {
	case StageFattening:
		return 1
	case StageSaleable:
		return 2
	case StageSold:
		return 3
	}
	return 0
}

// Litter is the group of piglets born from one farrowing.
type Litter struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	SowID       string     `bson:"sow_id" json:"sow_id"`
	SowName     string     `bson:"-" json:"sow_name,omitempty"`
	BreedingID  string     `bson:"breeding_id,omitempty" json:"breeding_id,omitempty"`
	BoarID      *string    `bson:"boar_id,omitempty" json:"boar_id,omitempty"`
	BoarBreed   string     `bson:"-" json:"boar_breed,omitempty"`
	BirthDate   time.Time  `bson:"birth_date" json:"birth_date"`
	MaleCount   int        `bson:"male_count" json:"male_count"`
	FemaleCount int        `bson:"female_count" json:"female_count"`
	AvgWeight   *float64   `bson:"avg_weight,omitempty" json:"avg_weight,omitempty"`
	FatteningAt *time.Time `bson:"fattening_at,omitempty" json:"fattening_at,omitempty"`
	SaleableAt  *time.Time `bson:"saleable_at,omitempty" json:"saleable_at,omitempty"`
	SoldAt      *time.Time `bson:"sold_at,omitempty" json:"sold_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// PigletCount is the number of live piglets in the litter.
func (l Litter) PigletCount() int {
	return l.MaleCount + l.FemaleCount
}

// IsSold reports whether a sale date is recorded.
func (l Litter) IsSold() bool {
	return HasDate(l.SoldAt)
}

// Stage infers the most advanced lifecycle state consistent with the fields present.
// A sold litter is SOLD even when its fattening date was never recorded. The saleable
// date is compared on the calendar day of now, in now's location.
func (l Litter) Stage(now time.Time) LitterStage {
	switch {
	case l.IsSold():
		return StageSold
	case HasDate(l.SaleableAt) && !lifecycle.StartOfDay(now).Before(lifecycle.StartOfDay(*l.SaleableAt)):
		return StageSaleable
	case HasDate(l.FatteningAt) || HasDate(l.SaleableAt):
		return StageFattening
	}
	return StageBorn
}

// Anomalies lists field combinations that skip a lifecycle step.
func (l Litter) Anomalies() []string {
	var out []string
	if !HasDate(l.FatteningAt) && l.IsSold() {
		out = append(out, "sold without fattening date")
	}
	if !HasDate(l.FatteningAt) && HasDate(l.SaleableAt) {
		out = append(out, "saleable date without fattening date")
	}
	return out
}

// Field exposes filterable attributes by their stored name.
func (l Litter) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "sow_id":
		return l.SowID, true
	case "sold":
		return l.IsSold(), true
	case "fattening":
		return HasDate(l.FatteningAt), true
	}
	return nil, false
}

// MedicalRecord captures a treatment administered to a sow.
type MedicalRecord struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	SowID     string    `bson:"sow_id" json:"sow_id"`
	SowName   string    `bson:"-" json:"sow_name,omitempty"`
	Symptoms  string    `bson:"symptoms" json:"symptoms"`
	Medicine  string    `bson:"medicine" json:"medicine"`
	UsedAt    time.Time `bson:"used_at" json:"used_at"`
	Notes     string    `bson:"notes" json:"notes"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// HerdSnapshot is a fully materialized, joined view of one user's records.
type HerdSnapshot struct {
	Sows      []Sow           `json:"sows"`
	Boars     []Boar          `json:"boars"`
	Breedings []Breeding      `json:"breedings"`
	Litters   []Litter        `json:"litters"`
	Medical   []MedicalRecord `json:"medical"`
}

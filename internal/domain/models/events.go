package models

import "time"

// FarrowEvent is the derived view of a breeding's expected farrowing.
type FarrowEvent struct {
	BreedingID       string     `json:"breeding_id"`
	SowID            string     `json:"sow_id"`
	SowName          string     `json:"sow_name"`
	BoarBreed        string     `json:"boar_breed,omitempty"`
	BreedDate        time.Time  `json:"breed_date"`
	ExpectedDate     time.Time  `json:"expected_date"`
	ActualFarrowDate *time.Time `json:"actual_farrow_date,omitempty"`
	DaysUntilFarrow  int        `json:"days_until_farrow"`
	IsOverdue        bool       `json:"is_overdue"`
	Resolved         bool       `json:"resolved"`
}

// SaleableEvent is the derived view of a litter's saleable date.
type SaleableEvent struct {
	LitterID          string     `json:"litter_id"`
	SowID             string     `json:"sow_id"`
	SowName           string     `json:"sow_name"`
	BoarBreed         string     `json:"boar_breed,omitempty"`
	FatteningDate     *time.Time `json:"fattening_date,omitempty"`
	SaleableDate      time.Time  `json:"saleable_date"`
	SoldAt            *time.Time `json:"sold_at,omitempty"`
	DaysUntilSaleable int        `json:"days_until_saleable"`
	IsPastDue         bool       `json:"is_past_due"`
	MaleCount         int        `json:"male_count"`
	FemaleCount       int        `json:"female_count"`
}

// Sold reports whether the litter behind the event has been sold.
func (e SaleableEvent) Sold() bool {
	return HasDate(e.SoldAt)
}

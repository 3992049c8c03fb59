package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestHasDate(t *testing.T) {
	assert.False(t, HasDate(nil))
	assert.False(t, HasDate(&time.Time{}))
	assert.True(t, HasDate(date(2024, 4, 24)))
}

func TestBreedingStateIgnoresZeroFarrowDate(t *testing.T) {
	b := Breeding{ActualFarrowDate: &time.Time{}}
	assert.True(t, b.IsOpen())
	assert.False(t, b.IsFarrowed())

	b.ActualFarrowDate = date(2024, 4, 24)
	assert.False(t, b.IsOpen())
	assert.True(t, b.IsFarrowed())

	b.Aborted = true
	assert.False(t, b.IsFarrowed())
}

func TestLitterStage(t *testing.T) {
	saleable := date(2024, 9, 23)
	tests := []struct {
		name   string
		litter Litter
		now    time.Time
		want   LitterStage
	}{
		{"born", Litter{}, *saleable, StageBorn},
		{"zero dates are absent", Litter{FatteningAt: &time.Time{}, SoldAt: &time.Time{}}, *saleable, StageBorn},
		{"fattening", Litter{FatteningAt: date(2024, 5, 1), SaleableAt: saleable}, time.Date(2024, 9, 22, 23, 59, 0, 0, time.UTC), StageFattening},
		{"saleable on the day", Litter{FatteningAt: date(2024, 5, 1), SaleableAt: saleable}, time.Date(2024, 9, 23, 0, 1, 0, 0, time.UTC), StageSaleable},
		{"saleable in a zone ahead of UTC", Litter{FatteningAt: date(2024, 5, 1), SaleableAt: saleable}, time.Date(2024, 9, 23, 6, 0, 0, 0, time.FixedZone("ICT", 7*3600)), StageSaleable},
		{"sold without fattening", Litter{SoldAt: date(2024, 9, 1)}, *saleable, StageSold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.litter.Stage(tt.now))
		})
	}
}

func TestLitterAnomalies(t *testing.T) {
	assert.Empty(t, Litter{FatteningAt: date(2024, 5, 1), SoldAt: date(2024, 9, 30)}.Anomalies())
	assert.Equal(t, []string{"sold without fattening date"}, Litter{SoldAt: date(2024, 9, 30)}.Anomalies())
	assert.Equal(t, []string{"saleable date without fattening date"}, Litter{SaleableAt: date(2024, 9, 30)}.Anomalies())
}

package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

func TestAverageLitterSizeExcludesUnconfirmed(t *testing.T) {
	farrowed := ptr(time.Date(2024, 4, 24, 0, 0, 0, 0, time.UTC))
	breedings := []models.Breeding{
		{PigletsBornCount: 8, ActualFarrowDate: farrowed},
		{PigletsBornCount: 0},
		{PigletsBornCount: 12, ActualFarrowDate: farrowed},
		{PigletsBornCount: 10, ActualFarrowDate: farrowed},
		{PigletsBornCount: 30, ActualFarrowDate: farrowed, Aborted: true},
	}

	assert.Equal(t, 10, AverageLitterSize(breedings))
}

func TestZeroDatesDoNotCountAsRecorded(t *testing.T) {
	farrowed := ptr(time.Date(2024, 4, 24, 0, 0, 0, 0, time.UTC))
	breedings := []models.Breeding{
		{PigletsBornCount: 0, ActualFarrowDate: &time.Time{}},
		{PigletsBornCount: 10, ActualFarrowDate: farrowed},
	}
	assert.Equal(t, 10, AverageLitterSize(breedings))

	litters := []models.Litter{{MaleCount: 3, FemaleCount: 4, SoldAt: &time.Time{}}}
	assert.Equal(t, 7, TotalPiglets(litters))
}

func TestAverageLitterSizeFloors(t *testing.T) {
	farrowed := ptr(time.Now())
	breedings := []models.Breeding{
		{PigletsBornCount: 9, ActualFarrowDate: farrowed},
		{PigletsBornCount: 10, ActualFarrowDate: farrowed},
	}
	assert.Equal(t, 9, AverageLitterSize(breedings))
}

func TestAveragesOfEmptyCollectionsAreZero(t *testing.T) {
	assert.Equal(t, 0, AverageLitterSize(nil))
	assert.Equal(t, 0, AverageSaleWeight(nil))
	assert.Equal(t, 0, AverageSaleWeight([]models.Litter{{AvgWeight: ptr(0.0)}, {}}))
	assert.Equal(t, SowCounts{}, SowStats(nil))
	assert.Equal(t, 0, TotalPiglets(nil))
}

func TestAverageSaleWeight(t *testing.T) {
	litters := []models.Litter{
		{AvgWeight: ptr(101.5)},
		{AvgWeight: ptr(-3.0)},
		{},
		{AvgWeight: ptr(110.0)},
	}
	assert.Equal(t, 105, AverageSaleWeight(litters))
}

func TestSowStats(t *testing.T) {
	got := SowStats(tenSows())
	assert.Equal(t, SowCounts{Total: 10, Pregnant: 4, Available: 6, Active: 9, Inactive: 1}, got)
}

func TestTotalPigletsSkipsSold(t *testing.T) {
	sold := time.Now()
	litters := []models.Litter{
		{MaleCount: 5, FemaleCount: 4},
		{MaleCount: 6, FemaleCount: 6, SoldAt: &sold},
	}
	assert.Equal(t, 9, TotalPiglets(litters))
}

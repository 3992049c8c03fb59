package filter

import (
	"fmt"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

func ptr[T any](v T) *T { return &v }

func sowNames(sows []models.Sow) []string {
	out := make([]string, 0, len(sows))
	for _, s := range sows {
		out = append(out, s.Name)
	}
	return out
}

func tenSows() []models.Sow {
	available := []bool{true, false, true, true, false, true, false, true, false, true}
	sows := make([]models.Sow, 0, len(available))
	for i, a := range available {
		sows = append(sows, models.Sow{ID: fmt.Sprint(i), Name: fmt.Sprintf("sow-%d", i), IsAvailable: a, IsActive: i != 9})
	}
	return sows
}

func TestPresetAvailableByThaiLabel(t *testing.T) {
	sows := tenSows()

	p, err := LookupPreset("พร้อมผสม")
	require.NoError(t, err)
	got := Match(sows, p.Constraints)

	assert.Equal(t, []string{"sow-0", "sow-2", "sow-3", "sow-5", "sow-7", "sow-9"}, sowNames(got))
}

func TestPresets(t *testing.T) {
	sows := tenSows()

	cases := map[string]int{"all": 10, "pregnant": 4, "available": 6, "active": 9, "inactive": 1, "": 10}
	for name, want := range cases {
		got, err := Sows(sows, "", name)
		require.NoError(t, err, name)
		assert.Len(t, got, want, name)
	}

	_, err := Sows(sows, "", "retired")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Len(t, SowPresets(), 5)
}

func TestSearchEmptyQueryReturnsAllInOrder(t *testing.T) {
	sows := tenSows()
	got := Search(sows, "  ", SowSearchFields)
	assert.Equal(t, sows, got)

	got[0].Name = "changed"
	assert.Equal(t, "sow-0", sows[0].Name, "result is a copy")
}

func TestSearchCaseInsensitive(t *testing.T) {
	breedings := []models.Breeding{
		{ID: "1", SowName: "Daisy", BoarBreed: "Duroc"},
		{ID: "2", SowName: "Rosie", BoarBreed: "Large White"},
		{ID: "3", SowName: "Mabel", BoarBreed: "duroc x landrace"},
	}

	got := Search(breedings, "DUROC", BreedingSearchFields)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Len(t, Search(breedings, "rosie", BreedingSearchFields), 1)
	assert.Empty(t, Search(breedings, "hampshire", BreedingSearchFields))
}

func TestSearchAndPresetCombined(t *testing.T) {
	got, err := Sows(tenSows(), "SOW-1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sow-1"}, sowNames(got))

	got, err = Sows(tenSows(), "sow", "pregnant")
	require.NoError(t, err)
	assert.Equal(t, []string{"sow-1", "sow-4", "sow-6", "sow-8"}, sowNames(got))
}

func TestConstraintsUnknownFieldNeverMatches(t *testing.T) {
	assert.False(t, Constraints{"colour": "pink"}.Matches(models.Sow{}))
	assert.True(t, Constraints{}.Matches(models.Sow{}))
}

func TestSortStableKeepsTies(t *testing.T) {
	birth := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	sows := []models.Sow{
		{Name: "c", BirthDate: ptr(birth.AddDate(0, 0, 3))},
		{Name: "a", BirthDate: ptr(birth)},
		{Name: "b", BirthDate: ptr(birth)},
		{Name: "z", BirthDate: ptr(birth)},
	}

	got := SortStable(sows, func(x, y models.Sow) int { return x.BirthDate.Compare(*y.BirthDate) })
	assert.Equal(t, []string{"a", "b", "z", "c"}, sowNames(got))
	assert.Equal(t, "c", sows[0].Name, "input untouched")

	byName := SortStable(sows, func(x, y models.Sow) int { return strings.Compare(x.Name, y.Name) })
	assert.Equal(t, []string{"a", "b", "c", "z"}, sowNames(byName))
}

func TestByStage(t *testing.T) {
	now := time.Date(2024, 9, 25, 0, 0, 0, 0, time.UTC)
	fattening := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	saleable := time.Date(2024, 9, 23, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	sold := time.Date(2024, 9, 24, 0, 0, 0, 0, time.UTC)

	litters := []models.Litter{
		{ID: "born"},
		{ID: "fattening", FatteningAt: &fattening, SaleableAt: &future},
		{ID: "saleable", FatteningAt: &fattening, SaleableAt: &saleable},
		{ID: "sold", FatteningAt: &fattening, SaleableAt: &saleable, SoldAt: &sold},
		{ID: "sold-anomaly", SoldAt: &sold},
	}

	assert.Len(t, ByStage(litters, models.StageBorn, now), 1)
	assert.Len(t, ByStage(litters, models.StageFattening, now), 1)
	assert.Len(t, ByStage(litters, models.StageSaleable, now), 1)

	soldOnes := ByStage(litters, models.StageSold, now)
	require.Len(t, soldOnes, 2)
	assert.Equal(t, "sold-anomaly", soldOnes[1].ID)
	assert.Equal(t, []string{"sold without fattening date"}, soldOnes[1].Anomalies())
}

func TestByStageUsesFarmLocalDay(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	fattening := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	saleable := time.Date(2024, 9, 23, 0, 0, 0, 0, time.UTC)
	litters := []models.Litter{{ID: "l1", FatteningAt: &fattening, SaleableAt: &saleable}}

	morning := time.Date(2024, 9, 23, 6, 0, 0, 0, bangkok)
	ready := ByStage(litters, models.StageSaleable, morning)
	require.Len(t, ready, 1)
	assert.Empty(t, ByStage(litters, models.StageFattening, morning))

	eve := time.Date(2024, 9, 22, 23, 30, 0, 0, bangkok)
	assert.Empty(t, ByStage(litters, models.StageSaleable, eve))
}

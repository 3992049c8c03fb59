package projector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

func TestBuildCalendarMarksDays(t *testing.T) {
	now := day(t, "2024-04-20")
	breedings := []models.Breeding{
		{ID: "overdue", ExpectedFarrowDate: day(t, "2024-04-18")},
		{ID: "soon", ExpectedFarrowDate: day(t, "2024-04-22")},
		{ID: "later", ExpectedFarrowDate: day(t, "2024-05-30")},
	}
	farrows, errs := ProjectFarrowEvents(breedings, now)
	require.Empty(t, errs)

	litters := []models.Litter{{ID: "l1", SaleableAt: ptr(day(t, "2024-04-22"))}}
	saleables, _ := ProjectSaleableEvents(litters, now)
	cal := BuildCalendar(farrows, saleables, 3)

	mark, ok := cal.Day(day(t, "2024-04-18"))
	require.True(t, ok)
	assert.True(t, mark.HasEvent)
	assert.True(t, mark.Overdue)
	assert.False(t, mark.Soon)

	mark, ok = cal.Day(time.Date(2024, 4, 22, 17, 45, 0, 0, time.UTC))
	require.True(t, ok, "lookup ignores time of day")
	assert.True(t, mark.Soon)
	assert.Len(t, mark.Farrows, 1)
	assert.Len(t, mark.Saleables, 1)

	mark, ok = cal.Day(day(t, "2024-05-30"))
	require.True(t, ok)
	assert.False(t, mark.Soon)
	assert.False(t, mark.Overdue)

	_, ok = cal.Day(day(t, "2024-04-21"))
	assert.False(t, ok)

	april := cal.Month(2024, time.April)
	require.Len(t, april, 2)
	assert.Equal(t, "2024-04-18", april[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-04-22", april[1].Date.Format("2006-01-02"))
	assert.Equal(t, 3, cal.Len())
}

func TestBuildCalendarEmpty(t *testing.T) {
	cal := BuildCalendar(nil, nil, 7)
	assert.Equal(t, 0, cal.Len())
	assert.Empty(t, cal.Month(2024, time.January))
}

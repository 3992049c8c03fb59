package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/filter"
	"github.com/mamadbah2/piggery/internal/service/dashboard"
)

type fakeDashboard struct {
	d       dashboard.Dashboard
	userIDs []string
}

func (f *fakeDashboard) Build(_ context.Context, userID string, _ time.Time, _ string) (dashboard.Dashboard, error) {
	f.userIDs = append(f.userIDs, userID)
	return f.d, nil
}

func (f *fakeDashboard) SoonDays() int { return 7 }

type fakeHerd struct {
	sows []models.Sow
}

func (f fakeHerd) Snapshot(context.Context, string) (models.HerdSnapshot, error) {
	return models.HerdSnapshot{Sows: f.sows}, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestDispatcher(t *testing.T) (*Service, *fakeDashboard) {
	t.Helper()
	dash := &fakeDashboard{d: dashboard.Dashboard{
		Sows:          filter.SowCounts{Total: 3, Pregnant: 2, Available: 1, Active: 3},
		AvgLitterSize: 11,
		AvgSaleWeight: 98,
		PigletsOnHand: 19,
		OverdueFarrows: []models.FarrowEvent{
			{SowName: "Rosie", ExpectedDate: date(2024, 4, 10), DaysUntilFarrow: -10, IsOverdue: true},
		},
		UpcomingFarrows: []models.FarrowEvent{
			{SowName: "Daisy", ExpectedDate: date(2024, 4, 24), DaysUntilFarrow: 4},
			{SowName: "Mabel", ExpectedDate: date(2024, 5, 20), DaysUntilFarrow: 30},
		},
		UpcomingSaleable: []models.SaleableEvent{
			{SowName: "Mabel", SaleableDate: date(2024, 4, 25), DaysUntilSaleable: 5, MaleCount: 5, FemaleCount: 6},
		},
	}}
	herd := fakeHerd{sows: []models.Sow{
		{ID: "s1", Name: "Daisy", IsActive: true},
		{ID: "s2", Name: "Rosie", IsActive: true},
		{ID: "s3", Name: "Mabel", IsActive: true, IsAvailable: true},
		{ID: "s4", Name: "Old Dot", IsActive: false, IsAvailable: true},
	}}
	svc := NewService("owner-1", dash, herd, zaptest.NewLogger(t))
	svc.now = func() time.Time { return date(2024, 4, 20) }
	return svc, dash
}

func TestFarrowCommand(t *testing.T) {
	svc, dash := newTestDispatcher(t)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/farrow"), "+66800000000")
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE Rosie: expected 2024-04-10 (10 days ago)\nDaisy: 2024-04-24 (in 4 days)", reply)
	assert.Equal(t, []string{"owner-1"}, dash.userIDs)

	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("/farrow 30"), "")
	require.NoError(t, err)
	assert.Contains(t, reply, "Mabel: 2024-05-20 (in 30 days)")
}

func TestFarrowCommandRejectsBadWindow(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/farrow soon"), "")
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("/saleable -2"), "")
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestSaleableCommand(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("saleable 3"), "")
	require.NoError(t, err)
	assert.Equal(t, "No litters saleable within 3 days.", reply)

	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("saleable"), "")
	require.NoError(t, err)
	assert.Equal(t, "Litter of Mabel: 2024-04-25 (in 5 days), 11 piglets", reply)
}

func TestStatsCommand(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/STATS"), "")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sows: 3 (pregnant 2, available 1, inactive 0)")
	assert.Contains(t, reply, "Avg litter size: 11")
	assert.Contains(t, reply, "Piglets on hand: 19")
}

func TestSowsCommand(t *testing.T) {
	svc, _ := newTestDispatcher(t)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/sows available"), "")
	require.NoError(t, err)
	assert.Equal(t, "2 sow(s):\n- Mabel (available)\n- Old Dot (inactive)", reply)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/sows ros"), "")
	require.NoError(t, err)
	assert.Equal(t, "1 sow(s):\n- Rosie (pregnant)", reply)

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/sows active nobody"), "")
	require.NoError(t, err)
	assert.Equal(t, "No sows match.", reply)
}

func TestHelpAndUnknown(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/help"), "")
	require.NoError(t, err)
	assert.Contains(t, reply, "/farrow [days]")
	assert.Contains(t, reply, "/sows [preset] [name]")

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("hello there"), "")
	require.ErrorIs(t, err, ErrUnsupportedCommand)
}

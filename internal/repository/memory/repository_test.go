package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/repository/mongodb"
)

func TestSowsScopedByOwner(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()

	require.NoError(t, r.InsertSow(ctx, models.Sow{ID: "1", UserID: "alice", Name: "Rosie"}))
	require.NoError(t, r.InsertSow(ctx, models.Sow{ID: "2", UserID: "alice", Name: "Daisy"}))
	require.NoError(t, r.InsertSow(ctx, models.Sow{ID: "3", UserID: "bob", Name: "Mabel"}))
	assert.Error(t, r.InsertSow(ctx, models.Sow{ID: "1", UserID: "alice"}))

	sows, err := r.ListSows(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sows, 2)
	assert.Equal(t, "Daisy", sows[0].Name)

	_, err = r.GetSow(ctx, "bob", "1")
	assert.ErrorIs(t, err, mongodb.ErrNotFound)

	err = r.UpdateSow(ctx, models.Sow{ID: "1", UserID: "bob", Name: "stolen"})
	assert.ErrorIs(t, err, mongodb.ErrNotFound)
}

func TestBreedingDelete(t *testing.T) {
	ctx := context.Background()
	r := NewRepository()

	require.NoError(t, r.InsertBreeding(ctx, models.Breeding{ID: "b2", UserID: "u", BreedDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}))
	require.NoError(t, r.InsertBreeding(ctx, models.Breeding{ID: "b1", UserID: "u", BreedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}))

	list, err := r.ListBreedings(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "b1", list[0].ID)

	require.NoError(t, r.DeleteBreeding(ctx, "u", "b1"))
	assert.ErrorIs(t, r.DeleteBreeding(ctx, "u", "b1"), mongodb.ErrNotFound)

	list, err = r.ListBreedings(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b2", list[0].ID)
}

func TestSnapshotsAppend(t *testing.T) {
	r := NewRepository()
	require.NoError(t, r.SaveDashboardSnapshot(context.Background(), models.DashboardSnapshot{UserID: "u", TotalSows: 3}))
	require.Len(t, r.Snapshots(), 1)
	assert.Equal(t, 3, r.Snapshots()[0].TotalSows)
}

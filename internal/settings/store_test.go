package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

func TestOpenMissingFileUsesFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s, err := Open(path, lifecycle.Durations{PregnancyDays: 116}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Durations{PregnancyDays: 116, FatteningDays: 145}, s.Durations())
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s, err := Open(path, lifecycle.DefaultDurations(), zaptest.NewLogger(t))
	require.NoError(t, err)

	want := lifecycle.Durations{PregnancyDays: 115, FatteningDays: 150}
	got, err := s.Update(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "pregnancy_days: 115")

	reopened, err := Open(path, lifecycle.DefaultDurations(), nil)
	require.NoError(t, err)
	assert.Equal(t, want, reopened.Durations())
}

func TestUpdateRejectsOutOfRange(t *testing.T) {
	s, err := Open("", lifecycle.DefaultDurations(), nil)
	require.NoError(t, err)

	got, err := s.Update(lifecycle.Durations{PregnancyDays: 140, FatteningDays: 145})
	assert.ErrorIs(t, err, lifecycle.ErrDurationOutOfRange)
	assert.Equal(t, lifecycle.DefaultDurations(), got)
	assert.Equal(t, lifecycle.DefaultDurations(), s.Durations())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lifecycle: [not, a, map"), 0o600))

	_, err := Open(path, lifecycle.DefaultDurations(), nil)
	assert.Error(t, err)
}

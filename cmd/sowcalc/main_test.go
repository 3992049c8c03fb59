package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 4, 20, 15, 0, 0, 0, time.UTC) }

	cmd := newRootCmd(now)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFarrow(t *testing.T) {
	out, err := run(t, "farrow", "--bred", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "expected farrow: 2024-04-24 (in 4 days)\n", out)

	out, err = run(t, "farrow", "--bred", "2024-01-01", "--days", "110", "--today", "2024-04-25")
	require.NoError(t, err)
	assert.Equal(t, "expected farrow: 2024-04-20 (5 days ago)\n", out)
}

func TestFarrowRejectsBadInput(t *testing.T) {
	_, err := run(t, "farrow", "--bred", "someday")
	assert.True(t, errors.Is(err, lifecycle.ErrInvalidDate))

	_, err = run(t, "farrow", "--bred", "2024-01-01", "--days", "200")
	assert.True(t, errors.Is(err, lifecycle.ErrDurationOutOfRange))

	_, err = run(t, "farrow")
	assert.Error(t, err)
}

func TestSaleable(t *testing.T) {
	out, err := run(t, "saleable", "--fattening", "2024-05-20", "--today", "2024-10-12")
	require.NoError(t, err)
	assert.Equal(t, "saleable: 2024-10-12 (today)\n", out)
}

func TestDays(t *testing.T) {
	out, err := run(t, "days", "--from", "2024-02-28", "--to", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "days", "--from", "2024-04-21")
	require.NoError(t, err)
	assert.Equal(t, "-1\n", out)
}

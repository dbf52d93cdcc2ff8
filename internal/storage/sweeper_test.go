package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeperValidatesInterval(t *testing.T) {
	store := NewSessionStore()

	_, err := NewSweeper(store, 10*time.Minute, 10*time.Minute)
	assert.Error(t, err)

	_, err = NewSweeper(store, 0, time.Minute)
	assert.Error(t, err)

	_, err = NewSweeper(store, DefaultSweepInterval, DefaultIdleThreshold)
	assert.NoError(t, err)
}

func TestSweepEvictsOnlyIdleSessions(t *testing.T) {
	clock := newClock()
	store := NewSessionStoreWithClock(clock.Now)
	sweeper, err := NewSweeper(store, time.Minute, 10*time.Minute)
	require.NoError(t, err)

	store.GetOrCreate("stale", func() string { return "sys" })
	store.GetOrCreate("fresh", func() string { return "sys" })
	clock.Advance(11 * time.Minute)
	store.Touch("fresh")

	assert.Equal(t, []string{"stale"}, sweeper.Sweep(clock.Now()))
	assert.False(t, store.Exists("stale"))

	// touched after the sweep, so the next sweep keeps it
	clock.Advance(time.Minute)
	store.Touch("fresh")
	assert.Empty(t, sweeper.Sweep(clock.Now()))
	assert.True(t, store.Exists("fresh"))
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	store := NewSessionStore()
	sweeper, err := NewSweeper(store, time.Second, time.Hour)
	require.NoError(t, err)

	store.GetOrCreate("u1", func() string { return "sys" })
	// evaluate the schedule two hours ahead so u1 is idle
	sweeper.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	require.NoError(t, sweeper.Start())
	require.NoError(t, sweeper.Start())
	defer sweeper.Stop(context.Background())

	assert.Eventually(t, func() bool { return !store.Exists("u1") }, 5*time.Second, 50*time.Millisecond)
}

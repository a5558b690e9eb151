package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerInitializeAndRead(t *testing.T) {
	db, d := openTestDB(t)
	tr := NewTracker(db, d, testLogger())
	ctx := context.Background()

	require.NoError(t, tr.EnsureInitialized(ctx, []string{"accounts", "events"}))

	state, err := tr.GetState(ctx, "accounts")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.LastSyncedRowID)
	assert.True(t, state.LastSyncTimestamp.Equal(time.Unix(0, 0)), "fresh state should sit at the epoch")
}

func TestTrackerInitializeIsIdempotent(t *testing.T) {
	db, d := openTestDB(t)
	tr := NewTracker(db, d, testLogger())
	ctx := context.Background()

	require.NoError(t, tr.EnsureInitialized(ctx, []string{"accounts"}))
	require.NoError(t, tr.Advance(ctx, "accounts", 42, time.Now()))

	// A second init must not reset an advanced watermark.
	require.NoError(t, tr.EnsureInitialized(ctx, []string{"accounts"}))

	state, err := tr.GetState(ctx, "accounts")
	require.NoError(t, err)
	assert.Equal(t, int64(42), state.LastSyncedRowID)
}

func TestTrackerAdvance(t *testing.T) {
	db, d := openTestDB(t)
	tr := NewTracker(db, d, testLogger())
	ctx := context.Background()

	require.NoError(t, tr.EnsureInitialized(ctx, []string{"accounts"}))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tr.Advance(ctx, "accounts", 7, now))

	state, err := tr.GetState(ctx, "accounts")
	require.NoError(t, err)
	assert.Equal(t, int64(7), state.LastSyncedRowID)
	assert.WithinDuration(t, now, state.LastSyncTimestamp, time.Second)
}

func TestTrackerAdvanceUnknownTable(t *testing.T) {
	db, d := openTestDB(t)
	tr := NewTracker(db, d, testLogger())
	ctx := context.Background()

	require.NoError(t, tr.EnsureInitialized(ctx, nil))
	err := tr.Advance(ctx, "ghost", 1, time.Now())
	assert.Error(t, err)
}

func TestTrackerMissingRowYieldsZeroState(t *testing.T) {
	db, d := openTestDB(t)
	tr := NewTracker(db, d, testLogger())
	ctx := context.Background()

	require.NoError(t, tr.EnsureInitialized(ctx, nil))
	state, err := tr.GetState(ctx, "never_seeded")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.LastSyncedRowID)
}

package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLandedAndEvicted(t *testing.T) {
	SkipIfNoTestDB(t)

	store := NewTestStore(t)
	defer store.Close()
	defer store.Cleanup(t)

	ctx := context.Background()

	require.NoError(t, store.RecordLanded(ctx, "sig-landed", 100, 12))
	require.NoError(t, store.RecordEvicted(ctx, "sig-evicted", "stale"))

	landed, err := store.RecentByOutcome(ctx, "landed", 10)
	require.NoError(t, err)
	require.Len(t, landed, 1)
	assert.Equal(t, "sig-landed", landed[0].Signature)
	assert.EqualValues(t, 100, landed[0].Slot)
	assert.EqualValues(t, 12, landed[0].Latency)

	evicted, err := store.RecentByOutcome(ctx, "evicted", 10)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "sig-evicted", evicted[0].Signature)
	assert.Equal(t, "stale", evicted[0].Reason)
}

func TestPublisher_IgnoresNonDurableKinds(t *testing.T) {
	SkipIfNoTestDB(t)

	store := NewTestStore(t)
	defer store.Close()
	defer store.Cleanup(t)

	pub := NewPublisher(store.Store)
	pub.Publish("admitted", "sig-admitted", nil)
	pub.Publish("retried", "sig-retried", nil)

	landed, err := store.RecentByOutcome(context.Background(), "landed", 10)
	require.NoError(t, err)
	assert.Empty(t, landed)
}

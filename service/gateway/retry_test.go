package gateway

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brojonat/irisgate/service/chainstate"
	"github.com/brojonat/irisgate/service/sender"
	"github.com/brojonat/irisgate/service/tippolicy"
	"github.com/brojonat/irisgate/service/txstore"
)

func newTestGatewayWithConfig(cfg Config) (*Gateway, *chainstate.Fake, *sender.Fake, *txstore.Store) {
	oracle := chainstate.NewFake(100)
	snd := sender.NewFake()
	store := txstore.New(4)
	g := &Gateway{
		store:     store,
		oracle:    oracle,
		sender:    snd,
		tipPolicy: tippolicy.Policy{},
		logger:    slog.Default(),
		cfg:       cfg,
		done:      make(chan struct{}),
	}
	return g, oracle, snd, store
}

// S5: a confirmed signature is removed from the store and recorded landed.
// Confirmation and resend are independent checks on the same tick, so a
// confirmed entry with retry budget remaining is still resent once more
// before it is removed - matching the retry engine's original semantics.
func TestTick_ConfirmedIsRemoved(t *testing.T) {
	g, oracle, snd, store := newTestGatewayWithConfig(Config{MaxRetries: 3, MaxBatchSize: 10, StaleAfter: time.Hour})
	store.Add("sig-confirmed", txstore.TransactionData{
		WireTransaction: []byte("wire"),
		Slot:            100,
		SentAt:          time.Now(),
		RetryCount:      3,
	})
	oracle.Confirm("sig-confirmed", 110)

	g.tick()

	require.False(t, store.Has("sig-confirmed"))
	require.Equal(t, 1, snd.Count())
}

// S6: a transaction that has exhausted its retry budget is evicted without
// another resend.
func TestTick_ExhaustedRetriesIsEvicted(t *testing.T) {
	g, _, snd, store := newTestGatewayWithConfig(Config{MaxRetries: 3, MaxBatchSize: 10, StaleAfter: time.Hour})
	store.Add("sig-exhausted", txstore.TransactionData{
		WireTransaction: []byte("wire"),
		Slot:            100,
		SentAt:          time.Now(),
		RetryCount:      0,
	})

	g.tick()

	require.False(t, store.Has("sig-exhausted"))
	require.Equal(t, 0, snd.Count())
}

// A transaction that has been in the store longer than StaleAfter is
// evicted even if its retry budget has not been exhausted. Eviction and
// resend are independent checks, so it is still resent once more on the
// same tick it is marked stale, before removal.
func TestTick_StaleIsEvicted(t *testing.T) {
	g, _, snd, store := newTestGatewayWithConfig(Config{MaxRetries: 3, MaxBatchSize: 10, StaleAfter: time.Millisecond})
	store.Add("sig-stale", txstore.TransactionData{
		WireTransaction: []byte("wire"),
		Slot:            100,
		SentAt:          time.Now().Add(-time.Hour),
		RetryCount:      3,
	})

	g.tick()

	require.False(t, store.Has("sig-stale"))
	require.Equal(t, 1, snd.Count())
}

// A transaction that is neither confirmed, stale, nor exhausted is resent
// and its retry count decrements by exactly one.
func TestTick_PendingIsResentAndDecremented(t *testing.T) {
	g, _, snd, store := newTestGatewayWithConfig(Config{MaxRetries: 3, MaxBatchSize: 10, StaleAfter: time.Hour})
	store.Add("sig-pending", txstore.TransactionData{
		WireTransaction: []byte("wire-bytes"),
		Slot:            100,
		SentAt:          time.Now(),
		RetryCount:      3,
	})

	g.tick()

	require.True(t, store.Has("sig-pending"))
	require.Equal(t, 1, snd.Count())

	var remaining int
	store.Mutate("sig-pending", func(td *txstore.TransactionData) {
		remaining = td.RetryCount
	})
	require.Equal(t, 2, remaining)
}

// The retry count decrements unconditionally every tick, even though this
// fake sender never reports delivery failure - the decrement is not
// conditioned on send success.
func TestTick_DecrementIsUnconditional(t *testing.T) {
	g, _, _, store := newTestGatewayWithConfig(Config{MaxRetries: 1, MaxBatchSize: 10, StaleAfter: time.Hour})
	store.Add("sig-last-retry", txstore.TransactionData{
		WireTransaction: []byte("wire"),
		Slot:            100,
		SentAt:          time.Now(),
		RetryCount:      1,
	})

	g.tick()
	require.True(t, store.Has("sig-last-retry"))

	g.tick()
	require.False(t, store.Has("sig-last-retry"))
}

// batchRecorder wraps a sender.Fake and records the size of every SendBatch
// call, so tests can check how resends were chunked.
type batchRecorder struct {
	*sender.Fake
	sizes []int
}

func (b *batchRecorder) SendBatch(wires [][]byte) {
	b.sizes = append(b.sizes, len(wires))
	b.Fake.SendBatch(wires)
}

// Resends are chunked at the configured max batch size, not sent as one
// unbounded call.
func TestTick_ChunksResendsByMaxBatchSize(t *testing.T) {
	g, _, snd, store := newTestGatewayWithConfig(Config{MaxRetries: 3, MaxBatchSize: 2, StaleAfter: time.Hour})
	rec := &batchRecorder{Fake: snd}
	g.sender = rec
	for i := 0; i < 5; i++ {
		store.Add(string(rune('a'+i)), txstore.TransactionData{
			WireTransaction: []byte{byte(i)},
			Slot:            100,
			SentAt:          time.Now(),
			RetryCount:      3,
		})
	}

	g.tick()

	require.Equal(t, 5, snd.Count())
	require.Equal(t, []int{2, 2, 1}, rec.sizes)
}

package gateway

import (
	"context"
	"time"

	"github.com/brojonat/irisgate/service/txstore"
	"github.com/brojonat/irisgate/service/wire"
)

// retryLoop is the sole background goroutine per spec.md §4.E. Each tick it
// snapshots the store, reconciles every entry against chain state, and
// fires a chunked, fire-and-forget resend for every entry whose retry budget
// has not reached zero, including entries removed on that same tick. It never
// holds a single lock across the full reconciliation - txstore.Snapshot
// takes one shard lock at a time.
func (g *Gateway) retryLoop() {
	defer close(g.done)

	ticker := time.NewTicker(g.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		if g.stopped.Load() {
			return
		}

		g.tick()

		<-ticker.C
	}
}

func (g *Gateway) tick() {
	ctx := context.Background()

	entries := g.store.Snapshot()
	if g.metrics != nil {
		g.metrics.SetRetryTransactions(len(entries))
	}

	var toRemove []string
	var toResend [][]byte
	removed := 0

	for _, entry := range entries {
		key := entry.Signature
		data := entry.Data

		// The store is keyed by the raw client text; the oracle lookup, logs
		// and events use the transaction's own signature when one was parsed.
		signature := key
		if data.ParsedTransaction != nil {
			if sig, err := wire.Signature(data.ParsedTransaction); err == nil {
				signature = sig
			}
		}

		// The four checks below are independent and additive, not a
		// first-match chain: a transaction confirmed or marked stale this
		// tick is still resent in the same tick if its retry budget is above
		// zero, and every entry is decremented, matching the original retry
		// loop's separate, unconditional `if` statements.
		remove := false

		if slot, confirmed, err := g.oracle.ConfirmSignatureStatus(ctx, signature); err == nil && confirmed {
			latency := slot - data.Slot
			if slot < data.Slot {
				latency = 0
			}
			g.logger.Info("transaction confirmed",
				"signature", signature, "slot", slot, "latency", latency)
			if g.metrics != nil {
				g.metrics.RecordLanded(latency)
			}
			g.publish("landed", signature, map[string]any{"slot": slot, "latency": latency})
			remove = true
		}

		stale := time.Since(data.SentAt) > g.cfg.StaleAfter
		exhausted := data.RetryCount == 0

		if stale || exhausted {
			reason := "exhausted"
			if stale {
				reason = "stale"
			}
			g.publish("evicted", signature, map[string]any{"reason": reason})
			remove = true
		}

		if data.RetryCount > 0 {
			toResend = append(toResend, data.WireTransaction)
			g.publish("retried", signature, map[string]any{"retry_count": data.RetryCount - 1})
		}

		// Unconditional saturating decrement, regardless of whether this
		// tick's resend succeeds - the retry loop itself is the only
		// compensating mechanism, so it must make forward progress every
		// tick even if the network send silently fails.
		g.store.Mutate(key, func(td *txstore.TransactionData) {
			if td.RetryCount > 0 {
				td.RetryCount--
			}
		})

		if remove {
			toRemove = append(toRemove, key)
			removed++
		}
	}

	if g.metrics != nil {
		g.metrics.SetTransactionsRemoved(removed)
	}

	for _, signature := range toRemove {
		g.store.Remove(signature)
	}

	g.logger.Info("retrying transactions", "count", len(toResend))

	for i := 0; i < len(toResend); i += g.cfg.MaxBatchSize {
		end := i + g.cfg.MaxBatchSize
		if end > len(toResend) {
			end = len(toResend)
		}
		g.sender.SendBatch(toResend[i:end])
	}
}

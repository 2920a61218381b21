package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/brojonat/irisgate/service/txstore"
	"github.com/brojonat/irisgate/service/wire"
)

// SendParams mirrors the client-supplied RpcSendTransactionConfig.
type SendParams struct {
	Encoding      string
	SkipPreflight bool
	MaxRetries    *int // nil means "use the server default"
}

// SendTransaction implements spec.md §4.D. The order of operations
// matters: the store Add happens strictly before the first Send, so that
// if the retry engine's tick interleaves between them it retransmits
// instead of missing the transaction entirely. No admission error may
// leave a partial entry in the store.
func (g *Gateway) SendTransaction(ctx context.Context, text string, params SendParams) (string, error) {
	sig, err := g.sendTransaction(ctx, text, params)
	if err != nil {
		g.recordError(err)
	}
	return sig, err
}

func (g *Gateway) sendTransaction(ctx context.Context, text string, params SendParams) (string, error) {
	// Duplicate check is deliberately against the raw client string, not
	// the decoded signature - cheap, and it catches retries of the exact
	// same payload even though it misses re-encodings of the same
	// transaction. Preserved per spec.md §9.
	if g.store.Has(text) {
		return "", ErrDuplicate
	}

	if !params.SkipPreflight {
		return "", ErrPreflightUnsupported
	}

	encoding, err := wire.ParseEncoding(params.Encoding)
	if err != nil {
		return "", err
	}

	wireBytes, parsed, err := wire.Decode(text, encoding)
	if err != nil {
		return "", err
	}

	if !g.tipPolicy.Accepts(parsed) {
		return "", ErrTipInsufficient
	}

	signature, err := wire.Signature(parsed)
	if err != nil {
		return "", err
	}

	slot, err := g.oracle.CurrentSlot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read current slot: %w", err)
	}

	td := txstore.TransactionData{
		WireTransaction:   wireBytes,
		ParsedTransaction: parsed,
		Slot:              slot,
		SentAt:            time.Now(),
		RetryCount:        g.retryCountFor(params.MaxRetries),
	}

	g.store.Add(text, td)
	g.sender.Send(wireBytes)
	g.publish("admitted", signature, map[string]any{"slot": slot, "retry_count": td.RetryCount})

	if g.metrics != nil {
		g.metrics.RecordTransaction()
	}

	return signature, nil
}

// SendTransactionBatch implements spec.md §4.D. A mid-batch failure
// returns only the first error; transactions already admitted earlier in
// this batch remain in the store (documented, not rolled back - see
// DESIGN.md).
func (g *Gateway) SendTransactionBatch(ctx context.Context, batch []string, params SendParams) ([]string, error) {
	sigs, err := g.sendTransactionBatch(ctx, batch, params)
	if err != nil {
		g.recordError(err)
	}
	return sigs, err
}

func (g *Gateway) sendTransactionBatch(ctx context.Context, batch []string, params SendParams) ([]string, error) {
	if len(batch) > g.cfg.MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	signatures := make([]string, 0, len(batch))
	wireTransactions := make([][]byte, 0, len(batch))

	for _, text := range batch {
		if g.store.Has(text) {
			return nil, ErrDuplicate
		}

		if !params.SkipPreflight {
			return nil, ErrPreflightUnsupported
		}

		encoding, err := wire.ParseEncoding(params.Encoding)
		if err != nil {
			return nil, err
		}

		wireBytes, parsed, err := wire.Decode(text, encoding)
		if err != nil {
			return nil, err
		}

		if !g.tipPolicy.Accepts(parsed) {
			return nil, ErrTipInsufficient
		}

		signature, err := wire.Signature(parsed)
		if err != nil {
			return nil, err
		}

		slot, err := g.oracle.CurrentSlot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read current slot: %w", err)
		}

		td := txstore.TransactionData{
			WireTransaction:   wireBytes,
			ParsedTransaction: parsed,
			Slot:              slot,
			SentAt:            time.Now(),
			RetryCount:        g.retryCountFor(params.MaxRetries),
		}

		g.store.Add(text, td)
		signatures = append(signatures, signature)
		wireTransactions = append(wireTransactions, wireBytes)
		g.publish("admitted", signature, map[string]any{"slot": slot, "retry_count": td.RetryCount})
	}

	g.sender.SendBatch(wireTransactions)

	if g.metrics != nil {
		g.metrics.RecordBatch()
	}

	return signatures, nil
}

// retryCountFor resolves the client-requested max retries against the
// server cap, per spec.md's data model: retry_count is initialized to
// min(client-requested, server max).
func (g *Gateway) retryCountFor(requested *int) int {
	if requested == nil {
		return g.cfg.MaxRetries
	}
	if *requested < g.cfg.MaxRetries {
		return *requested
	}
	return g.cfg.MaxRetries
}

func (g *Gateway) recordError(err error) {
	if g.metrics != nil {
		g.metrics.RecordError(ErrorType(err))
	}
}

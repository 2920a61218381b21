// Package gateway implements the admission handler and retry engine: the
// core of IrisGate. It composes the wire codec, tip policy, and
// transaction store, and owns the single background retry loop that
// reconciles the store against chain state.
package gateway

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brojonat/irisgate/service/chainstate"
	"github.com/brojonat/irisgate/service/metrics"
	"github.com/brojonat/irisgate/service/sender"
	"github.com/brojonat/irisgate/service/tippolicy"
	"github.com/brojonat/irisgate/service/txstore"
)

// EventPublisher receives lifecycle notifications as the gateway admits,
// retries, lands, or evicts transactions. It is optional enrichment - a
// nil EventPublisher simply means no events are published. Implemented by
// service/events against NATS JetStream.
type EventPublisher interface {
	Publish(kind, signature string, fields map[string]any)
}

// Config parameterizes a Gateway, mirroring spec.md §3.
type Config struct {
	MaxRetries    int
	MaxBatchSize  int
	RetryInterval time.Duration
	StaleAfter    time.Duration
}

// Gateway owns the transaction store and the single retry-engine
// goroutine, and exposes the admission entrypoints.
type Gateway struct {
	store     *txstore.Store
	oracle    chainstate.Oracle
	sender    sender.Sender
	tipPolicy tippolicy.Policy
	metrics   *metrics.Metrics
	events    EventPublisher
	logger    *slog.Logger
	cfg       Config

	stopped atomic.Bool
	done    chan struct{}
}

// New builds a Gateway and starts its retry-engine goroutine. Call Stop to
// terminate the retry loop; inflight admission calls run to completion
// regardless.
func New(
	store *txstore.Store,
	oracle chainstate.Oracle,
	snd sender.Sender,
	policy tippolicy.Policy,
	m *metrics.Metrics,
	events EventPublisher,
	logger *slog.Logger,
	cfg Config,
) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		store:     store,
		oracle:    oracle,
		sender:    snd,
		tipPolicy: policy,
		metrics:   m,
		events:    events,
		logger:    logger.With("component", "gateway"),
		cfg:       cfg,
		done:      make(chan struct{}),
	}
	go g.retryLoop()
	return g
}

// Stop sets the cancellation flag observed at the top of each retry tick.
// It does not block on the loop exiting - callers that need to wait
// should also read from Stopped().
func (g *Gateway) Stop() {
	g.stopped.Store(true)
}

// Stopped is closed once the retry loop has observed the cancellation
// flag and exited.
func (g *Gateway) Stopped() <-chan struct{} {
	return g.done
}

// StoreSize returns the current number of entries in the retry store, for
// operator tooling.
func (g *Gateway) StoreSize() int {
	return g.store.Len()
}

func (g *Gateway) publish(kind, signature string, fields map[string]any) {
	if g.events == nil {
		return
	}
	g.events.Publish(kind, signature, fields)
}

// Package metrics holds the Prometheus collectors for the gateway. As in
// the teacher, a single Metrics struct is built once and passed by
// explicit dependency injection to every component that records a metric,
// rather than relying on package-global collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the gateway. The names of
// the transaction-lifecycle collectors are a wire contract - clients and
// dashboards depend on them verbatim.
type Metrics struct {
	txnTotalTransactions *prometheus.CounterVec
	txnTotalBatches      *prometheus.CounterVec
	txnLanded            *prometheus.CounterVec
	errors               *prometheus.CounterVec

	retryTransactions   *prometheus.GaugeVec
	transactionsRemoved *prometheus.GaugeVec

	txnSlotLatency *prometheus.HistogramVec

	rpcRequestDuration *prometheus.HistogramVec
	rpcRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		txnTotalTransactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_txn_total_transactions",
				Help: "Total number of transactions admitted via sendTransaction.",
			},
			[]string{},
		),
		txnTotalBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_txn_total_batches",
				Help: "Total number of batches admitted via sendTransactionBatch.",
			},
			[]string{},
		),
		txnLanded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_txn_landed",
				Help: "Total number of transactions observed confirmed on-chain.",
			},
			[]string{},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iris_error",
				Help: "Total number of admission errors by type.",
			},
			[]string{"type"},
		),
		retryTransactions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "iris_retry_transactions",
				Help: "Number of transactions currently held in the retry store.",
			},
			[]string{},
		),
		transactionsRemoved: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "iris_transactions_removed",
				Help: "Number of transactions removed from the retry store on the most recent tick.",
			},
			[]string{},
		),
		txnSlotLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iris_txn_slot_latency",
				Help:    "Slots elapsed between admission and confirmed landing.",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160, 320},
			},
			[]string{},
		),
		rpcRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rpc_request_duration_seconds",
				Help:    "Duration of JSON-RPC requests in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"method", "transport", "status"},
		),
		rpcRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_requests_total",
				Help: "Total number of JSON-RPC requests by method, transport, and status.",
			},
			[]string{"method", "transport", "status"},
		),
	}
}

// RecordTransaction increments the total-admitted-transactions counter.
func (m *Metrics) RecordTransaction() {
	m.txnTotalTransactions.WithLabelValues().Inc()
}

// RecordBatch increments the total-admitted-batches counter.
func (m *Metrics) RecordBatch() {
	m.txnTotalBatches.WithLabelValues().Inc()
}

// RecordError increments the admission error counter for the given reason.
func (m *Metrics) RecordError(errorType string) {
	m.errors.WithLabelValues(errorType).Inc()
}

// RecordLanded increments the landed counter and observes the slot
// latency between admission and confirmation.
func (m *Metrics) RecordLanded(slotLatency uint64) {
	m.txnLanded.WithLabelValues().Inc()
	m.txnSlotLatency.WithLabelValues().Observe(float64(slotLatency))
}

// SetRetryTransactions publishes the current retry-store size.
func (m *Metrics) SetRetryTransactions(count int) {
	m.retryTransactions.WithLabelValues().Set(float64(count))
}

// SetTransactionsRemoved publishes how many entries were removed (landed or
// evicted) on the most recent retry tick.
func (m *Metrics) SetTransactionsRemoved(count int) {
	m.transactionsRemoved.WithLabelValues().Set(float64(count))
}

// RecordRPCRequest records a JSON-RPC request's duration and outcome.
func (m *Metrics) RecordRPCRequest(method, transport, status string, durationSeconds float64) {
	m.rpcRequestDuration.WithLabelValues(method, transport, status).Observe(durationSeconds)
	m.rpcRequestsTotal.WithLabelValues(method, transport, status).Inc()
}

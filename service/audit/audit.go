// Package audit persists a durable record of landed and evicted
// transactions via pgx, separate from the gateway's volatile in-memory
// retry store. It is purely an enrichment sink: the admission and retry
// engine never read from it, and a write failure here must never affect
// gateway behavior.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is a single lifecycle outcome persisted for operator review.
type Record struct {
	Signature string
	Outcome   string // "landed" or "evicted"
	Reason    string // eviction reason, empty for landed
	Slot      int64
	Latency   int64
	CreatedAt time.Time
}

// Store wraps a pgx connection pool with the audit-log schema.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore builds a Store over an existing connection pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// Connect opens a pgx pool against databaseURL and builds a Store.
func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	return NewStore(pool, logger), nil
}

// EnsureSchema creates the audit_log table if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			id         BIGSERIAL PRIMARY KEY,
			signature  TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			slot       BIGINT NOT NULL DEFAULT 0,
			latency    BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_log table: %w", err)
	}
	return nil
}

// RecordLanded inserts a landed-transaction record.
func (s *Store) RecordLanded(ctx context.Context, signature string, slot, latency int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (signature, outcome, slot, latency) VALUES ($1, 'landed', $2, $3)`,
		signature, slot, latency,
	)
	return err
}

// RecordEvicted inserts an evicted-transaction record.
func (s *Store) RecordEvicted(ctx context.Context, signature, reason string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (signature, outcome, reason) VALUES ($1, 'evicted', $2)`,
		signature, reason,
	)
	return err
}

// RecentByOutcome returns the most recent records for the given outcome,
// newest first, for operator CLI inspection.
func (s *Store) RecentByOutcome(ctx context.Context, outcome string, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT signature, outcome, reason, slot, latency, created_at
		 FROM audit_log WHERE outcome = $1 ORDER BY created_at DESC LIMIT $2`,
		outcome, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Signature, &r.Outcome, &r.Reason, &r.Slot, &r.Latency, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Publisher adapts a Store into a gateway.EventPublisher, writing only
// "landed" and "evicted" kinds; "admitted" and "retried" are ignored since
// they carry no durable outcome. Each write runs on its own goroutine so
// the gateway's hot path never blocks on a database round trip.
type Publisher struct {
	store *Store
}

// NewPublisher wraps store as a gateway.EventPublisher.
func NewPublisher(store *Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Publish(kind, signature string, fields map[string]any) {
	switch kind {
	case "landed":
		go p.recordLanded(signature, fields)
	case "evicted":
		go p.recordEvicted(signature, fields)
	}
}

func (p *Publisher) recordLanded(signature string, fields map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slot, _ := fields["slot"].(uint64)
	latency, _ := fields["latency"].(uint64)
	if err := p.store.RecordLanded(ctx, signature, int64(slot), int64(latency)); err != nil {
		p.store.logger.Debug("failed to persist landed audit record", "signature", signature, "error", err)
	}
}

func (p *Publisher) recordEvicted(signature string, fields map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reason, _ := fields["reason"].(string)
	if err := p.store.RecordEvicted(ctx, signature, reason); err != nil {
		p.store.logger.Debug("failed to persist evicted audit record", "signature", signature, "error", err)
	}
}

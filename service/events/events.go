// Package events fans out gateway lifecycle notifications (admitted,
// retried, landed, evicted) to NATS JetStream, for optional consumption by
// the admin SSE endpoint. It never blocks the gateway's hot path - a
// publish failure is logged and dropped, the same fire-and-forget contract
// as the downstream transaction sender.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding lifecycle events.
	StreamName = "IRIS_EVENTS"

	// StreamSubjects is the subject pattern for the stream.
	StreamSubjects = "iris.events.*"

	// StreamRetention bounds how long events are kept.
	StreamRetention = 24 * time.Hour
)

// Event is a single lifecycle notification.
type Event struct {
	Kind      string         `json:"kind"` // admitted, retried, landed, evicted
	Signature string         `json:"signature"`
	Fields    map[string]any `json:"fields,omitempty"`
	Time      time.Time      `json:"time"`
}

// Publisher fans lifecycle events out to NATS JetStream. It implements
// gateway.EventPublisher.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

// New connects to NATS and ensures the lifecycle-event stream exists.
func New(natsURL string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("irisgate-events"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, logger: logger}
	if err := p.ensureStream(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream exists: %w", err)
	}

	logger.Info("lifecycle event publisher initialized", "url", natsURL, "stream", StreamName)
	return p, nil
}

func (p *Publisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "IrisGate admission/retry/landing lifecycle events",
		Subjects:    []string{StreamSubjects},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      StreamRetention,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Publish fans out a lifecycle event on its own goroutine. Failures are
// logged, never returned - callers in the gateway's hot path must never
// block or branch on delivery.
func (p *Publisher) Publish(kind, signature string, fields map[string]any) {
	event := Event{Kind: kind, Signature: signature, Fields: fields, Time: time.Now()}
	go p.publish(event)
}

func (p *Publisher) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal lifecycle event", "kind", event.Kind, "error", err)
		return
	}

	subject := fmt.Sprintf("iris.events.%s", event.Kind)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.logger.Debug("failed to publish lifecycle event", "kind", event.Kind, "signature", event.Signature, "error", err)
	}
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

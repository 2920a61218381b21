package events

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

// Subscriber streams raw lifecycle event payloads to the rpcserver's admin
// SSE endpoint. It implements rpcserver.EventSource.
type Subscriber struct {
	js jetstream.JetStream
}

// NewSubscriber builds a Subscriber sharing the Publisher's JetStream
// connection.
func NewSubscriber(p *Publisher) *Subscriber {
	return &Subscriber{js: p.js}
}

// Subscribe creates an ephemeral, new-messages-only consumer over the
// lifecycle-event stream and streams message payloads until ctx is done or
// the returned cancel func is called.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan []byte, func()) {
	out := make(chan []byte, 64)
	done := make(chan struct{})
	cancel := func() {
		select {
		case <-done:
		default:
			close(done)
		}
	}

	cons, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		FilterSubject: StreamSubjects,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		close(out)
		return out, cancel
	}

	go func() {
		defer close(out)
		cc, err := cons.Consume(func(msg jetstream.Msg) {
			select {
			case out <- msg.Data():
				msg.Ack()
			case <-done:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return
		}
		defer cc.Stop()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}()

	return out, cancel
}

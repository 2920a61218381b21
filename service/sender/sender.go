// Package sender defines the downstream transaction sender contract. It is
// intentionally fire-and-forget: the gateway's compensating mechanism for
// a dropped send is the retry engine, not a synchronous delivery guarantee
// from this interface.
package sender

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/gagliardetto/solana-go/rpc"
)

// Sender forwards already-encoded wire transactions downstream. Both
// methods are synchronous to call (they never block on network I/O from
// the caller's perspective) and neither reports per-transaction delivery
// success - callers must not treat a call returning as "delivered".
type Sender interface {
	Send(wire []byte)
	SendBatch(wires [][]byte)
}

// RPCSender forwards transactions to a Solana RPC endpoint's
// sendTransaction method, firing each call on its own goroutine so the
// caller never waits on the network round trip.
type RPCSender struct {
	client *rpc.Client
	logger *slog.Logger
}

// NewRPCSender builds a Sender backed by the given RPC endpoint.
func NewRPCSender(endpoint string, logger *slog.Logger) *RPCSender {
	return &RPCSender{client: rpc.New(endpoint), logger: logger}
}

func (s *RPCSender) Send(wire []byte) {
	go s.send(wire)
}

func (s *RPCSender) SendBatch(wires [][]byte) {
	for _, w := range wires {
		go s.send(w)
	}
}

func (s *RPCSender) send(wire []byte) {
	ctx := context.Background()
	_, err := s.client.SendEncodedTransactionWithOpts(ctx, base64.StdEncoding.EncodeToString(wire), rpc.TransactionOpts{
		SkipPreflight: true,
	})
	if err != nil {
		s.logger.Debug("downstream send failed, retry engine will retransmit", "error", err)
	}
}

// Package chainstate defines the chain-state oracle contract the retry
// engine consumes to learn the current slot and whether a signature has
// landed, plus a gagliardetto/solana-go-backed implementation for
// production use.
package chainstate

import (
	"context"
	"log/slog"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Oracle answers the two questions the retry engine needs about chain
// state. A failed lookup must never be fatal to the caller - implementors
// return an error and the caller treats the signature as "not confirmed".
type Oracle interface {
	// CurrentSlot returns the slot observed right now, recorded on
	// admission to compute landing latency later.
	CurrentSlot(ctx context.Context) (uint64, error)

	// ConfirmSignatureStatus reports whether signature has reached at
	// least confirmed status, and if so at which slot.
	ConfirmSignatureStatus(ctx context.Context, signature string) (slot uint64, confirmed bool, err error)
}

// RPCOracle implements Oracle against a live Solana RPC endpoint.
type RPCOracle struct {
	client *rpc.Client
	logger *slog.Logger
}

// NewRPCOracle builds an Oracle backed by the given RPC endpoint.
func NewRPCOracle(endpoint string, logger *slog.Logger) *RPCOracle {
	return &RPCOracle{client: rpc.New(endpoint), logger: logger}
}

func (o *RPCOracle) CurrentSlot(ctx context.Context) (uint64, error) {
	slot, err := o.client.GetSlot(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return slot, nil
}

func (o *RPCOracle) ConfirmSignatureStatus(ctx context.Context, signature string) (uint64, bool, error) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return 0, false, err
	}

	resp, err := o.client.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return 0, false, err
	}
	if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
		return 0, false, nil
	}

	status := resp.Value[0]
	confirmed := status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized
	if !confirmed {
		return 0, false, nil
	}
	return status.Slot, true, nil
}

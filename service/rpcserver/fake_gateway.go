package rpcserver

import (
	"context"

	"github.com/brojonat/irisgate/service/gateway"
)

// fakeGateway is an in-memory GatewayClient for dispatch tests.
type fakeGateway struct {
	sendErr      error
	sendBatchErr error
	sendCalls    []string
	batchCalls   [][]string
}

func (f *fakeGateway) SendTransaction(ctx context.Context, text string, params gateway.SendParams) (string, error) {
	f.sendCalls = append(f.sendCalls, text)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "fake-signature-" + text, nil
}

func (f *fakeGateway) SendTransactionBatch(ctx context.Context, batch []string, params gateway.SendParams) ([]string, error) {
	f.batchCalls = append(f.batchCalls, batch)
	if f.sendBatchErr != nil {
		return nil, f.sendBatchErr
	}
	sigs := make([]string, len(batch))
	for i, text := range batch {
		sigs[i] = "fake-signature-" + text
	}
	return sigs, nil
}

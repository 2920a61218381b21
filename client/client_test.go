package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "health", req.Method)

		json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"Ok(1.2)"`)})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	out, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ok(1.2)", out)
}

func TestSendTransaction_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sendTransaction", req.Method)

		json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"sig123"`)})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	sig, err := c.SendTransaction(context.Background(), "txn-text", SendConfig{SkipPreflight: true})
	require.NoError(t, err)
	assert.Equal(t, "sig123", sig)
}

func TestCall_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: -32602, Message: "Invalid Request: duplicate transaction"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, nil)
	_, err := c.SendTransaction(context.Background(), "txn-text", SendConfig{SkipPreflight: true})
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
}

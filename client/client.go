// Package client is the HTTP JSON-RPC client for the IrisGate gateway. It
// speaks the same bare-method-name envelope as service/rpcserver, over a
// single POST endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// rpcRequest and rpcResponse mirror service/rpcserver's wire envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the gateway.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// SendConfig mirrors service/rpcserver's sendConfig, the second tuple
// element of sendTransaction/sendTransactionBatch params.
type SendConfig struct {
	Encoding      string `json:"encoding,omitempty"`
	SkipPreflight bool   `json:"skipPreflight,omitempty"`
	MaxRetries    *int   `json:"maxRetries,omitempty"`
}

// Client is the HTTP client for the IrisGate gateway's JSON-RPC endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new IrisGate gateway client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// call issues a single JSON-RPC request and decodes result into out (if
// out is non-nil).
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	reqBody := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if out != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}

	c.logger.Debug("rpc call succeeded", "method", method)
	return nil
}

// Health calls the "health" method, returning the raw "Ok(x.y)" string.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out string
	if err := c.call(ctx, "health", nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Version calls "getVersion".
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.call(ctx, "getVersion", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// SendTransaction submits a single base58/base64-encoded transaction.
func (c *Client) SendTransaction(ctx context.Context, text string, cfg SendConfig) (string, error) {
	var signature string
	params := []any{text, cfg}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// SendTransactionBatch submits multiple encoded transactions as one batch.
func (c *Client) SendTransactionBatch(ctx context.Context, batch []string, cfg SendConfig) ([]string, error) {
	var signatures []string
	params := []any{batch, cfg}
	if err := c.call(ctx, "sendTransactionBatch", params, &signatures); err != nil {
		return nil, err
	}
	return signatures, nil
}

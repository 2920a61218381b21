package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testTxApp(commands ...*cli.Command) *cli.App {
	return &cli.App{
		Name: "irisgate-cli",
		Commands: []*cli.Command{
			{
				Name:        "tx",
				Subcommands: commands,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server-url"},
			&cli.BoolFlag{Name: "json"},
		},
	}
}

func TestSendTransactionCommand_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  "sig-abc",
		})
	}))
	defer server.Close()

	app := testTxApp(sendTransactionCommand())
	err := app.Run([]string{"irisgate-cli", "--server-url", server.URL, "tx", "send", "txn-blob"})
	require.NoError(t, err)
}

func TestSendTransactionCommand_MissingArg(t *testing.T) {
	app := testTxApp(sendTransactionCommand())
	err := app.Run([]string{"irisgate-cli", "tx", "send"})
	require.Error(t, err)
}

func TestSendBatchCommand_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req["id"],
			"result":  []string{"sig-a", "sig-b"},
		})
	}))
	defer server.Close()

	app := testTxApp(sendBatchCommand())
	err := app.Run([]string{"irisgate-cli", "--server-url", server.URL, "tx", "send-batch", "a", "b"})
	require.NoError(t, err)
}

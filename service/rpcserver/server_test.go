package rpcserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHTTPRPC_Health(t *testing.T) {
	s := testServer(&fakeGateway{})
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1,"method":"health"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	s.handleHTTPRPC().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "Ok(1.2)", resp.Result)
}

func TestHandleHTTPRPC_InvalidJSON(t *testing.T) {
	s := testServer(&fakeGateway{})
	body := bytes.NewBufferString(`not json`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	s.handleHTTPRPC().ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, parseErrorCode, resp.Error.Code)
}

func TestHandleHTTPRPC_PreservesRequestID(t *testing.T) {
	s := testServer(&fakeGateway{})
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":"abc-123","method":"getVersion"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	s.handleHTTPRPC().ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, `"abc-123"`, string(resp.ID))
}

package rpcserver

import (
	"context"
	"encoding/json"

	"github.com/brojonat/irisgate/service/gateway"
)

// sendConfig mirrors the client-supplied RpcSendTransactionConfig object,
// the "config" parameter accepted by sendTransaction and
// sendTransactionBatch.
type sendConfig struct {
	Encoding      string `json:"encoding"`
	SkipPreflight bool   `json:"skipPreflight"`
	MaxRetries    *int   `json:"maxRetries"`
}

func (c sendConfig) toParams() gateway.SendParams {
	return gateway.SendParams{
		Encoding:      c.Encoding,
		SkipPreflight: c.SkipPreflight,
		MaxRetries:    c.MaxRetries,
	}
}

// VersionResponse is returned by getVersion.
type VersionResponse struct {
	Version string `json:"version"`
}

// dispatch executes a single JSON-RPC call against the gateway and returns
// either a result or an rpcError - never both, and never a Go error, since
// every failure mode at this layer must be representable on the wire.
func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, *rpcError) {
	switch method {
	case "health":
		return "Ok(1.2)", nil

	case "getVersion":
		return VersionResponse{Version: s.version}, nil

	case "sendTransaction":
		var p [2]json.RawMessage
		if err := unmarshalTuple(params, &p); err != nil {
			return nil, parseError(err.Error())
		}
		var text string
		if err := json.Unmarshal(p[0], &text); err != nil {
			return nil, parseError("text: " + err.Error())
		}
		var cfg sendConfig
		if len(p[1]) > 0 {
			if err := json.Unmarshal(p[1], &cfg); err != nil {
				return nil, parseError("config: " + err.Error())
			}
		}

		sig, err := s.gateway.SendTransaction(ctx, text, cfg.toParams())
		if err != nil {
			return nil, admissionError(err)
		}
		return sig, nil

	case "sendTransactionBatch":
		var p [2]json.RawMessage
		if err := unmarshalTuple(params, &p); err != nil {
			return nil, parseError(err.Error())
		}
		var batch []string
		if err := json.Unmarshal(p[0], &batch); err != nil {
			return nil, parseError("batch: " + err.Error())
		}
		var cfg sendConfig
		if len(p[1]) > 0 {
			if err := json.Unmarshal(p[1], &cfg); err != nil {
				return nil, parseError("config: " + err.Error())
			}
		}

		sigs, err := s.gateway.SendTransactionBatch(ctx, batch, cfg.toParams())
		if err != nil {
			return nil, admissionError(err)
		}
		return sigs, nil

	default:
		return nil, methodNotFound(method)
	}
}

// unmarshalTuple decodes a JSON-RPC params array into a fixed-size tuple of
// raw messages, leaving missing trailing elements as nil (e.g. an omitted
// config object).
func unmarshalTuple(params json.RawMessage, out *[2]json.RawMessage) error {
	if len(params) == 0 {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(params, &raw); err != nil {
		return err
	}
	for i := 0; i < len(raw) && i < len(out); i++ {
		out[i] = raw[i]
	}
	return nil
}

// admissionError maps a gateway admission error to its wire representation.
// Every admission error, sentinel or not (e.g. a failed slot read from the
// chain-state oracle), is reported as -32602 "Invalid Request: <reason>"
// per spec.
func admissionError(err error) *rpcError {
	return invalidRequest(err.Error())
}

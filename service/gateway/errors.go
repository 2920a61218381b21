package gateway

import (
	"errors"

	"github.com/brojonat/irisgate/service/wire"
)

// Admission errors. The transport layer assembles the client-facing
// "Invalid Request: <reason>" text from these; this package stays
// transport-agnostic.
var (
	ErrDuplicate            = errors.New("duplicate transaction")
	ErrPreflightUnsupported = errors.New("running preflight check is not supported")
	ErrTipInsufficient      = errors.New("no tip in the transaction or pays less than minimum tip")
	ErrBatchTooLarge        = errors.New("batch size exceeded")
)

// ErrorType returns the stable label used for the iris_error{type=...}
// metric and for structured logging, given an admission error.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrDuplicate):
		return "duplicate_transaction"
	case errors.Is(err, ErrPreflightUnsupported):
		return "preflight_check"
	case errors.Is(err, ErrTipInsufficient):
		return "no_tip_or_pays_less_than_minimum_tip"
	case errors.Is(err, ErrBatchTooLarge):
		return "batch_size_exceeded"
	case errors.Is(err, wire.ErrUnsupportedEncoding):
		return "invalid_encoding"
	default:
		return "cannot_decode_transaction"
	}
}

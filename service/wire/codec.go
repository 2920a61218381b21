// Package wire decodes client-supplied transaction strings into the raw
// bytes that get forwarded to validators plus a parsed transaction used for
// admission-time policy checks.
package wire

import (
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// MaxTransactionSize is Solana's wire packet size (PACKET_DATA_SIZE). Any
// decoded payload longer than this can never be a valid transaction and is
// rejected before deserialization is attempted.
const MaxTransactionSize = 1232

// Encoding identifies how the client string was encoded.
type Encoding string

const (
	EncodingBase58 Encoding = "base58"
	EncodingBase64 Encoding = "base64"
)

var (
	ErrUnsupportedEncoding   = errors.New("unsupported encoding")
	ErrOversizeInput         = errors.New("decoded transaction exceeds maximum size")
	ErrMalformedBase58       = errors.New("malformed base58 input")
	ErrMalformedBase64       = errors.New("malformed base64 input")
	ErrDeserializationFailed = errors.New("failed to deserialize transaction")
)

// ParseEncoding maps a wire string (defaulting to base58 when empty) to an
// Encoding, or ErrUnsupportedEncoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", string(EncodingBase58):
		return EncodingBase58, nil
	case string(EncodingBase64):
		return EncodingBase64, nil
	default:
		return "", fmt.Errorf("%w: %s. Supported encodings: base58, base64", ErrUnsupportedEncoding, s)
	}
}

// Decode decodes text per encoding into the original wire bytes and the
// parsed transaction. wireBytes is exactly what was decoded - it is never
// re-serialized, since downstream signature verification is byte-exact.
func Decode(text string, encoding Encoding) (wireBytes []byte, parsed *solanago.Transaction, err error) {
	switch encoding {
	case EncodingBase58:
		wireBytes, err = base58.Decode(text)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrMalformedBase58, err)
		}
	case EncodingBase64:
		wireBytes, err = base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrMalformedBase64, err)
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s. Supported encodings: base58, base64", ErrUnsupportedEncoding, encoding)
	}

	if len(wireBytes) > MaxTransactionSize {
		return nil, nil, fmt.Errorf("%w: %d bytes (max %d)", ErrOversizeInput, len(wireBytes), MaxTransactionSize)
	}

	decoder := bin.NewBinDecoder(wireBytes)
	tx := new(solanago.Transaction)
	if err := tx.UnmarshalWithDecoder(decoder); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeserializationFailed, err)
	}
	if decoder.Remaining() != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrDeserializationFailed, decoder.Remaining())
	}

	return wireBytes, tx, nil
}

// Signature returns the canonical base-58 signature of a parsed
// transaction - the first entry in its signature list.
func Signature(tx *solanago.Transaction) (string, error) {
	if len(tx.Signatures) == 0 {
		return "", errors.New("transaction has no signatures")
	}
	return tx.Signatures[0].String(), nil
}

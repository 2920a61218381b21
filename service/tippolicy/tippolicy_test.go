package tippolicy

import (
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTransferTx(t *testing.T, to solanago.PublicKey, lamports uint64) *solanago.Transaction {
	t.Helper()
	from := solanago.NewWallet()
	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(lamports, from.PublicKey(), to).Build(),
		},
		solanago.Hash{},
		solanago.TransactionPayer(from.PublicKey()),
	)
	require.NoError(t, err)
	return tx
}

func TestAccepts_NoTipAddressConfigured(t *testing.T) {
	p := New(nil, 0)
	tx := buildTransferTx(t, solanago.NewWallet().PublicKey(), 1)
	assert.True(t, p.Accepts(tx))
}

func TestAccepts_QualifyingTransfer(t *testing.T) {
	tip := solanago.NewWallet().PublicKey()
	p := New(&tip, 1000)
	tx := buildTransferTx(t, tip, 2000)
	assert.True(t, p.Accepts(tx))
}

func TestAccepts_BelowMinimum(t *testing.T) {
	tip := solanago.NewWallet().PublicKey()
	p := New(&tip, 1000)
	tx := buildTransferTx(t, tip, 999)
	assert.False(t, p.Accepts(tx))
}

func TestAccepts_WrongRecipient(t *testing.T) {
	tip := solanago.NewWallet().PublicKey()
	p := New(&tip, 1000)
	tx := buildTransferTx(t, solanago.NewWallet().PublicKey(), 5000)
	assert.False(t, p.Accepts(tx))
}

func TestAccepts_TipNotFirstInstruction(t *testing.T) {
	tip := solanago.NewWallet().PublicKey()
	p := New(&tip, 1000)
	payer := solanago.NewWallet()
	decoy := solanago.NewWallet().PublicKey()

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(1, payer.PublicKey(), decoy).Build(),
			system.NewTransferInstruction(5000, payer.PublicKey(), tip).Build(),
		},
		solanago.Hash{},
		solanago.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	assert.True(t, p.Accepts(tx))
}

func TestDecodeTransfer_MalformedPayloadSkipped(t *testing.T) {
	_, ok := decodeTransfer([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestDefaultMinimumTip(t *testing.T) {
	tip := solanago.NewWallet().PublicKey()
	p := New(&tip, 0)
	assert.Equal(t, uint64(DefaultMinimumTip), p.MinimumLamports)
}

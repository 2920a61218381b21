// Package tippolicy implements the admission-time tip check: a parsed
// transaction is accepted only if it carries a qualifying system-program
// transfer to the configured tip account.
package tippolicy

import (
	"encoding/binary"

	solanago "github.com/gagliardetto/solana-go"
)

// DefaultMinimumTip is used when a server is configured with a tip address
// but no explicit minimum.
const DefaultMinimumTip = 1000

// systemProgramTransfer is the instruction discriminant for
// SystemInstruction::Transfer in the native system program.
const systemProgramTransfer = uint32(2)

// Policy inspects transactions for a qualifying tip transfer.
type Policy struct {
	// TipAddress is the required transfer recipient. A nil address disables
	// the policy entirely - every transaction is accepted.
	TipAddress *solanago.PublicKey
	// MinimumLamports is the minimum qualifying transfer amount.
	MinimumLamports uint64
}

// New builds a Policy, defaulting MinimumLamports when unset.
func New(tipAddress *solanago.PublicKey, minimumLamports uint64) Policy {
	if minimumLamports == 0 {
		minimumLamports = DefaultMinimumTip
	}
	return Policy{TipAddress: tipAddress, MinimumLamports: minimumLamports}
}

// Accepts reports whether tx carries a qualifying tip transfer. Only static
// account keys are consulted - address-lookup-table-resolved accounts are
// never considered, which keeps the check allocation-free and side-effect
// free. Out-of-range program-id indices and malformed instruction payloads
// are skipped rather than rejected outright; any other instruction in the
// transaction may still qualify.
func (p Policy) Accepts(tx *solanago.Transaction) bool {
	if p.TipAddress == nil {
		return true
	}

	staticKeys := tx.Message.AccountKeys
	for _, inst := range tx.Message.Instructions {
		if int(inst.ProgramIDIndex) >= len(staticKeys) {
			continue
		}
		if staticKeys[inst.ProgramIDIndex] != solanago.SystemProgramID {
			continue
		}

		lamports, ok := decodeTransfer(inst.Data)
		if !ok {
			continue
		}
		if len(inst.Accounts) < 2 {
			continue
		}
		recipientIdx := inst.Accounts[1]
		if int(recipientIdx) >= len(staticKeys) {
			continue
		}
		recipient := staticKeys[recipientIdx]

		if recipient == *p.TipAddress && lamports >= p.MinimumLamports {
			return true
		}
	}

	return false
}

// decodeTransfer extracts the lamports field from a SystemInstruction
// Transfer payload: a 4-byte little-endian discriminant (2) followed by an
// 8-byte little-endian lamports amount. Any other shape is reported as not
// a transfer rather than an error - malformed system-program payloads are
// silently skipped per the admission contract.
func decodeTransfer(data []byte) (lamports uint64, ok bool) {
	if len(data) < 12 {
		return 0, false
	}
	if binary.LittleEndian.Uint32(data[0:4]) != systemProgramTransfer {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[4:12]), true
}

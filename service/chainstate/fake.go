package chainstate

import (
	"context"
	"sync"
)

// Fake is an in-memory Oracle for tests: slot is whatever was last set via
// SetSlot, and a signature is confirmed once it has been registered via
// Confirm.
type Fake struct {
	mu        sync.Mutex
	slot      uint64
	confirmed map[string]uint64
}

// NewFake builds a Fake starting at the given slot.
func NewFake(startSlot uint64) *Fake {
	return &Fake{slot: startSlot, confirmed: make(map[string]uint64)}
}

func (f *Fake) SetSlot(slot uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slot = slot
}

// Confirm marks signature as landed at slot.
func (f *Fake) Confirm(signature string, slot uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed[signature] = slot
}

func (f *Fake) CurrentSlot(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slot, nil
}

func (f *Fake) ConfirmSignatureStatus(ctx context.Context, signature string) (uint64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.confirmed[signature]
	return slot, ok, nil
}

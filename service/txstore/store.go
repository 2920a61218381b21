// Package txstore holds the concurrent signature -> TransactionData mapping
// that admission inserts into and the retry engine reconciles against chain
// state. It is sharded so that a full retry scan never holds a single lock
// across the whole map - the same technique the pack uses for
// mutex-protected lookup tables (e.g. the pending-calls table of a
// WebSocket RPC client), generalized here into N independently-locked
// partitions selected by hashing the signature.
package txstore

import (
	"hash/fnv"
	"sync"
	"time"

	solanago "github.com/gagliardetto/solana-go"
)

// DefaultShardCount is used when a Store is built with ShardCount <= 0.
const DefaultShardCount = 32

// TransactionData is the record held per admitted transaction. WireTransaction
// and ParsedTransaction are immutable once set; SentAt and Slot are
// write-once; RetryCount is the only mutable field and is monotonically
// non-increasing.
type TransactionData struct {
	WireTransaction   []byte
	ParsedTransaction *solanago.Transaction
	Slot              uint64
	SentAt            time.Time
	RetryCount        int
}

// Entry pairs a signature with a snapshot of its data, as returned by
// Snapshot for the retry engine to iterate.
type Entry struct {
	Signature string
	Data      TransactionData
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*TransactionData
}

// Store is a sharded concurrent signature -> TransactionData map.
type Store struct {
	shards []*shard
}

// New builds a Store with shardCount shards (DefaultShardCount if <= 0).
func New(shardCount int) *Store {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]*TransactionData)}
	}
	return &Store{shards: shards}
}

func (s *Store) shardFor(signature string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(signature))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Add inserts td under signature. Uniqueness is enforced cooperatively: the
// caller is expected to have already checked Has returns false. If the
// signature is already present, the existing entry is left untouched.
func (s *Store) Add(signature string, td TransactionData) {
	sh := s.shardFor(signature)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.entries[signature]; exists {
		return
	}
	cp := td
	sh.entries[signature] = &cp
}

// Has is an O(1) membership test.
func (s *Store) Has(signature string) bool {
	sh := s.shardFor(signature)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.entries[signature]
	return ok
}

// Remove deletes signature if present; it is a no-op if absent.
func (s *Store) Remove(signature string) {
	sh := s.shardFor(signature)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.entries, signature)
}

// Len returns the total number of entries across all shards.
func (s *Store) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}

// Snapshot returns a point-in-time copy of every entry. It locks one shard
// at a time rather than the whole store, so admission on other shards is
// never stalled by a full scan; the result is not a single consistent view
// across the whole map, only per-entry.
func (s *Store) Snapshot() []Entry {
	out := make([]Entry, 0, s.Len())
	for _, sh := range s.shards {
		sh.mu.RLock()
		for sig, td := range sh.entries {
			out = append(out, Entry{Signature: sig, Data: *td})
		}
		sh.mu.RUnlock()
	}
	return out
}

// Mutate applies fn to the entry at signature while holding that shard's
// write lock, allowing the retry engine to decrement RetryCount in place
// without copying the whole store. It is a no-op if the signature is
// absent (e.g. already deleted by Remove).
func (s *Store) Mutate(signature string, fn func(*TransactionData)) {
	sh := s.shardFor(signature)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if td, ok := sh.entries[signature]; ok {
		fn(td)
	}
}

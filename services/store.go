package services

import (
	"context"
	"sync"

	"github.com/rillian/sta-rs/protocol"
)

// TripleStore stages submitted triples for an epoch until aggregation
// runs. Implementations must be safe for concurrent use.
type TripleStore interface {
	// SaveTriple stages one submitted triple.
	SaveTriple(ctx context.Context, triple *protocol.Triple) error

	// LoadTriples returns all staged triples for the epoch.
	LoadTriples(ctx context.Context, epoch string) ([]*protocol.Triple, error)

	// PurgeEpoch discards every staged triple for the epoch. Called
	// when the aggregation window closes; nothing survives into the
	// next epoch.
	PurgeEpoch(ctx context.Context, epoch string) error
}

// MemoryStore is an in-memory TripleStore for tests and demo
// deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	byEpoch map[string][]*protocol.Triple
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEpoch: make(map[string][]*protocol.Triple)}
}

// SaveTriple stages one triple.
func (s *MemoryStore) SaveTriple(_ context.Context, triple *protocol.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEpoch[triple.Epoch] = append(s.byEpoch[triple.Epoch], triple)
	return nil
}

// LoadTriples returns the staged triples for the epoch.
func (s *MemoryStore) LoadTriples(_ context.Context, epoch string) ([]*protocol.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staged := s.byEpoch[epoch]
	out := make([]*protocol.Triple, len(staged))
	copy(out, staged)
	return out, nil
}

// PurgeEpoch discards the epoch's staged triples.
func (s *MemoryStore) PurgeEpoch(_ context.Context, epoch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEpoch, epoch)
	return nil
}

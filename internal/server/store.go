package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"coverage-sim/internal/filter"
	"coverage-sim/internal/simulator"
)

// Dataset is an uploaded customer and provider table pair. It is never
// modified after Put, so handlers share it without copying.
type Dataset struct {
	ID        string
	CreatedAt time.Time
	Snapshot  simulator.Snapshot
	Zones     []string
}

// Store keeps datasets in memory, keyed by id.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Dataset
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Dataset)}
}

// Put stores snap under a fresh id.
func (s *Store) Put(snap simulator.Snapshot) *Dataset {
	ds := &Dataset{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Snapshot:  snap,
		Zones:     filter.Zones(snap.Providers),
	}
	s.mu.Lock()
	s.items[ds.ID] = ds
	s.mu.Unlock()
	return ds
}

func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.items[id]
	return ds, ok
}

// Delete removes a dataset and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

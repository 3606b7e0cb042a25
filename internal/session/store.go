// Package session keeps normalized uploads in memory between requests.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
)

// ErrNotFound is returned for unknown or expired dataset ids.
var ErrNotFound = errors.New("dataset not found")

// Dataset is one uploaded register. It is immutable once stored; queries
// derive fresh filtered tables from it.
type Dataset struct {
	ID        string
	Result    *ingest.Result
	Engine    *filter.Engine
	CreatedAt time.Time
}

// Binding returns the filter binding for this dataset.
func (d *Dataset) Binding() filter.Binding {
	return filter.Binding{Roles: d.Result.Roles, YearColumn: d.Result.YearColumn}
}

// Store is a concurrency-safe in-memory dataset registry.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Dataset
	ttl   time.Duration
	now   func() time.Time
}

// NewStore returns a store whose datasets expire after ttl; ttl <= 0 keeps
// them until deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{items: make(map[string]*Dataset), ttl: ttl, now: time.Now}
}

// Put registers res under a new id and sets up its filter universe.
func (s *Store) Put(res *ingest.Result) (*Dataset, error) {
	if res == nil || res.Table == nil {
		return nil, fmt.Errorf("store dataset: empty result")
	}
	d := &Dataset{
		ID:        uuid.NewString(),
		Result:    res,
		CreatedAt: s.now(),
	}
	d.Engine = filter.NewEngine(res.Table, d.Binding())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[d.ID] = d
	return d, nil
}

// Get returns the dataset for id.
func (s *Store) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	d, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || s.expired(d) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// Delete removes id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

// List returns live datasets, oldest first.
func (s *Store) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.items))
	for _, d := range s.items {
		if !s.expired(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Sweep drops expired datasets and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.items {
		if s.expired(d) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Len counts stored datasets, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) expired(d *Dataset) bool {
	return s.ttl > 0 && s.now().Sub(d.CreatedAt) > s.ttl
}

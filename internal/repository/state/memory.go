package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	domain "github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
)

// MemoryRepository keeps the snapshot in memory. It serializes persons the
// same way the file repository does so restore paths see identical data.
type MemoryRepository struct {
	// mu protects the stored snapshot.
	mu sync.Mutex
	// persons is the last saved snapshot, nil before the first Save.
	persons map[string]json.RawMessage
	// saves counts Save calls, for test assertions.
	saves int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns the last saved snapshot.
func (r *MemoryRepository) Load(_ context.Context) (map[string]json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.persons == nil {
		return nil, ErrNotFound
	}

	copied := make(map[string]json.RawMessage, len(r.persons))
	for slug, raw := range r.persons {
		copied[slug] = raw
	}

	return copied, nil
}

// Save replaces the stored snapshot.
func (r *MemoryRepository) Save(_ context.Context, persons map[string]domain.StoredPerson) error {
	encoded := make(map[string]json.RawMessage, len(persons))

	for slug, stored := range persons {
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("encode person %s: %w", slug, err)
		}

		encoded[slug] = data
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.persons = encoded
	r.saves++

	return nil
}

// Saves returns how many times Save has been called.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

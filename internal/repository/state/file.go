package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	domain "github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
)

// Repository defines persistence operations for the person-state snapshot.
// Load returns each person as raw JSON so the caller can skip individual
// corrupt records instead of failing the whole snapshot.
type Repository interface {
	Load(ctx context.Context) (map[string]json.RawMessage, error)
	Save(ctx context.Context, persons map[string]domain.StoredPerson) error
}

// ErrNotFound is returned when the snapshot file does not exist yet.
var ErrNotFound = errors.New("snapshot not found")

// snapshot is the on-disk document shape.
type snapshot struct {
	// Persons maps slug to the serialized person state.
	Persons map[string]json.RawMessage `json:"persons"`
}

// FileRepository persists the snapshot to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the snapshot file.
	path string
	// mu protects concurrent access to the snapshot file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (map[string]json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var doc snapshot
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}

	return doc.Persons, nil
}

// Save writes the full snapshot to disk.
func (r *FileRepository) Save(_ context.Context, persons map[string]domain.StoredPerson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := snapshot{
		Persons: make(map[string]json.RawMessage, len(persons)),
	}

	for slug, stored := range persons {
		encoded, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("encode person %s: %w", slug, err)
		}

		doc.Persons[slug] = encoded
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

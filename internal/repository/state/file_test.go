package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/config"
	domain "github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
)

// TestFileRepositoryNotFound verifies a missing snapshot surfaces ErrNotFound.
func TestFileRepositoryNotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileRepositoryRoundTrip verifies persons survive a save/load cycle and
// the snapshot file has restricted permissions.
func TestFileRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(path)
	ctx := context.Background()

	stored := domain.NewPersonState("andrzej", "Andrzej").ToStored()
	stored.NextAlarmKey = "alarm_3"

	require.NoError(t, repo.Save(ctx, map[string]domain.StoredPerson{"andrzej": stored}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(config.DefaultFilePermissions), info.Mode().Perm())

	persons, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 1)

	var decoded domain.StoredPerson
	require.NoError(t, json.Unmarshal(persons["andrzej"], &decoded))
	require.Equal(t, "Andrzej", decoded.Person)
	require.Equal(t, "alarm_3", decoded.NextAlarmKey)
}

// TestFileRepositoryCorruptPersonIsolated verifies one corrupt person record
// still loads as raw JSON so the caller can skip it individually.
func TestFileRepositoryCorruptPersonIsolated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	document := `{"persons":{"good":{"person":"Good"},"bad":["corrupt"]}}`
	require.NoError(t, os.WriteFile(path, []byte(document), config.DefaultFilePermissions))

	repo := NewFileRepository(path)

	persons, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, persons, 2)

	var good domain.StoredPerson
	require.NoError(t, json.Unmarshal(persons["good"], &good))
	require.Equal(t, "Good", good.Person)

	var bad domain.StoredPerson
	require.Error(t, json.Unmarshal(persons["bad"], &bad))
}

// TestFileRepositoryCorruptDocument verifies an unreadable snapshot document
// fails the load outright.
func TestFileRepositoryCorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), config.DefaultFilePermissions))

	repo := NewFileRepository(path)

	_, err := repo.Load(context.Background())
	require.ErrorContains(t, err, "decode snapshot file")
}

// TestMemoryRepository verifies the in-memory variant mirrors the file
// behavior and counts saves.
func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	stored := domain.NewPersonState("anna", "Anna").ToStored()
	require.NoError(t, repo.Save(ctx, map[string]domain.StoredPerson{"anna": stored}))
	require.NoError(t, repo.Save(ctx, map[string]domain.StoredPerson{"anna": stored}))
	require.Equal(t, 2, repo.Saves())

	persons, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, persons, "anna")
}

package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lantern/pkg/adapters/file"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, journey.DefaultKey, []byte(`{"wishes":[]}`)))
	require.NoError(t, store.Save(ctx, journey.DefaultKey, []byte(`{"wishes":[{"id":"1","wish":"a"}]}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "appState.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "appState.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"wishes":[{"id":"1","wish":"a"}]}`, string(data))
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, store.Save(ctx, key, []byte(`{}`)), key)
		_, err := store.Load(ctx, key)
		assert.Error(t, err, key)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStore_UnusableDirIsUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))
	store := file.New(filepath.Join(blocker, "state"))
	ctx := context.Background()

	_, err := store.Load(ctx, journey.DefaultKey)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, store.Save(ctx, journey.DefaultKey, []byte(`{}`)), domain.ErrStorageUnavailable)
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestFileStore_UnusableDirDegradesJourney(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))
	js := journey.NewStore(file.New(filepath.Join(blocker, "state")))
	ctx := context.Background()

	state, err := js.Dispatch(ctx,
		domain.SetZodiac{Animal: domain.AnimalSnake},
		domain.AddWishes{Wishes: []domain.Wish{{Text: "kept in memory"}}},
	)
	require.NoError(t, err)
	assert.True(t, js.Degraded())
	assert.Equal(t, domain.AnimalSnake, *state.Zodiac)
	require.Len(t, state.Wishes, 1)
	assert.Equal(t, "kept in memory", state.Wishes[0].Text)

	reloaded, err := js.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, reloaded)
}

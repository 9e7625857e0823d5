package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		data := []byte(`{"birthdate":"1990-01-26","wishes":[]}`)

		err := store.Save(ctx, key, data)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, data, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`{"v":1}`)))
		require.NoError(t, store.Save(ctx, key, []byte(`{"v":2}`)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, []byte(`{}`))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		// Deleting twice is not an error.
		assert.NoError(t, store.Delete(ctx, key))
	})

	t.Run("Keys Named Like Internals", func(t *testing.T) {
		// Keys come from clients; a key such as "index" is an ordinary snapshot.
		reserved := "index"
		other := key + "-after-index"
		defer func() {
			_ = store.Delete(ctx, reserved)
			_ = store.Delete(ctx, other)
		}()

		require.NoError(t, store.Save(ctx, reserved, []byte(`{"v":"index"}`)))
		require.NoError(t, store.Save(ctx, other, []byte(`{"v":"other"}`)))

		loaded, err := store.Load(ctx, reserved)
		require.NoError(t, err)
		assert.Equal(t, `{"v":"index"}`, string(loaded))

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, reserved)
		assert.Contains(t, keys, other)
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, []byte(`{}`))
		_ = store.Save(ctx, id2, []byte(`{}`))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}

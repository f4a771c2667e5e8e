package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/starplate/internal/storage"
	"github.com/artpar/starplate/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteStore runs the conformance suite against SQLite.
func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Backend[storetest.Item] {
		store, err := NewInMemory[storetest.Item]("items")
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New[storetest.Item](dbPath, "items")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, []storetest.Item{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, store.Close())

	reopened, err := New[storetest.Item](dbPath, "items")
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storetest.Item{{ID: "a"}, {ID: "b"}}, items)
}

func TestSQLiteStore_SharedDB(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	first, err := NewWithDB[storetest.Item](db, "first", nil)
	require.NoError(t, err)
	second, err := NewWithDB[storetest.Item](db, "second", nil)
	require.NoError(t, err)

	require.NoError(t, first.Save(ctx, []storetest.Item{{ID: "1"}}))
	require.NoError(t, second.Save(ctx, []storetest.Item{{ID: "2"}, {ID: "3"}}))

	items, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storetest.Item{{ID: "1"}}, items)

	items, err = second.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Closing a store that shares the connection leaves the other usable.
	require.NoError(t, first.Close())
	_, err = second.Load(ctx)
	assert.NoError(t, err)
}

func TestSQLiteStore_SkipsUndecodableRows(t *testing.T) {
	store, err := NewInMemory[storetest.Item]("items")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []storetest.Item{{ID: "good"}}))
	_, err = store.db.ExecContext(ctx,
		"INSERT INTO records (collection, position, body) VALUES (?, ?, ?)",
		"items", 1, "{broken",
	)
	require.NoError(t, err)

	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storetest.Item{{ID: "good"}}, items)
}

func TestSQLiteStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fresh", "dir", "test.db")
	ctx := context.Background()

	store, err := New[storetest.Item](dbPath, "items")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, []storetest.Item{{ID: "a"}}))
	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

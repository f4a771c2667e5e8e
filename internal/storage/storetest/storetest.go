// Package storetest provides a conformance suite for storage.Backend
// implementations. Each backend wires it in its own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/artpar/starplate/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Item is the record type the suite stores.
type Item struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Count int     `json:"count"`
}

func strPtr(s string) *string { return &s }

// Run runs the suite. newBackend must return a fresh, empty backend for each
// call; the suite closes it.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend[Item]) {
	t.Run("LoadEmpty", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()

		items, err := b.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("SaveLoadPreservesOrder", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		ctx := context.Background()

		want := []Item{
			{ID: "c", Name: strPtr("Third"), Count: 3},
			{ID: "a", Name: strPtr("First"), Count: 1},
			{ID: "b", Name: strPtr("Second"), Count: 2},
		}
		require.NoError(t, b.Save(ctx, want))

		got, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("NullFieldRoundTrip", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		ctx := context.Background()

		require.NoError(t, b.Save(ctx, []Item{{ID: "x"}}))

		got, err := b.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Name)
	})

	t.Run("SaveReplacesCollection", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		ctx := context.Background()

		require.NoError(t, b.Save(ctx, []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}))
		require.NoError(t, b.Save(ctx, []Item{{ID: "b"}}))

		got, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Item{{ID: "b"}}, got)
	})

	t.Run("SaveEmpty", func(t *testing.T) {
		b := newBackend(t)
		defer b.Close()
		ctx := context.Background()

		require.NoError(t, b.Save(ctx, []Item{{ID: "a"}}))
		require.NoError(t, b.Save(ctx, nil))

		got, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ClosedBackend", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Close())

		_, err := b.Load(context.Background())
		assert.ErrorIs(t, err, storage.ErrClosed)

		err = b.Save(context.Background(), []Item{{ID: "a"}})
		assert.ErrorIs(t, err, storage.ErrClosed)
	})
}

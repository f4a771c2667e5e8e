package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/starplate/internal/storage"
	"github.com/artpar/starplate/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Backend[storetest.Item] {
		return New[storetest.Item]()
	})
}

func TestStore_Seeded(t *testing.T) {
	s := New(storetest.Item{ID: "a"}, storetest.Item{ID: "b"})

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStore_LoadReturnsCopy(t *testing.T) {
	s := New(storetest.Item{ID: "a"})

	items, err := s.Load(context.Background())
	require.NoError(t, err)
	items[0].ID = "changed"

	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}

func TestStore_FailSaves(t *testing.T) {
	s := New[storetest.Item]()
	ctx := context.Background()
	boom := errors.New("disk full")

	s.FailSaves(boom)
	err := s.Save(ctx, []storetest.Item{{ID: "a"}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Saves())

	s.FailSaves(nil)
	require.NoError(t, s.Save(ctx, []storetest.Item{{ID: "a"}}))
	assert.Equal(t, 1, s.Saves())
}

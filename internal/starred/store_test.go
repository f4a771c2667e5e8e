package starred

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/starplate/internal/idgen"
	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	restaurants *restaurant.Store
	starred     *Store
	backend     *memory.Store[Record]
}

func newFixture(t *testing.T, seed ...Record) *fixture {
	t.Helper()
	ctx := context.Background()

	restaurants, err := restaurant.Open(ctx, memory.New[restaurant.Restaurant](),
		restaurant.WithIDGenerator(idgen.NewSequence("r")))
	require.NoError(t, err)

	backend := memory.New(seed...)
	store, err := Open(ctx, backend, restaurants, WithIDGenerator(idgen.NewSequence("s")))
	require.NoError(t, err)

	return &fixture{restaurants: restaurants, starred: store, backend: backend}
}

func (f *fixture) addRestaurant(t *testing.T, name string) restaurant.Restaurant {
	t.Helper()
	r, err := f.restaurants.Create(context.Background(), strPtr(name))
	require.NoError(t, err)
	return r
}

type failingLookup struct{ err error }

func (l failingLookup) Get(ctx context.Context, id string) (restaurant.Restaurant, error) {
	return restaurant.Restaurant{}, l.err
}

func TestStore_Create(t *testing.T) {
	t.Run("stars an existing restaurant", func(t *testing.T) {
		f := newFixture(t)
		r := f.addRestaurant(t, "Pasta House")

		j, err := f.starred.Create(context.Background(), r.ID, strPtr("great"))
		require.NoError(t, err)
		assert.Equal(t, "s-1", j.ID)
		assert.Equal(t, "great", j.Comment)
		assert.Equal(t, "Pasta House", *j.Name)

		records, err := f.backend.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []Record{{ID: "s-1", RestaurantID: r.ID, Comment: "great"}}, records)
	})

	t.Run("missing comment defaults to empty", func(t *testing.T) {
		f := newFixture(t)
		r := f.addRestaurant(t, "Pasta House")

		j, err := f.starred.Create(context.Background(), r.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "", j.Comment)
	})

	t.Run("unknown restaurant is not found and does not write", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.starred.Create(context.Background(), "nope", strPtr("great"))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, f.backend.Saves())

		list, err := f.starred.ListJoined(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("lookup failure is propagated", func(t *testing.T) {
		boom := errors.New("lookup down")
		store, err := Open(context.Background(), memory.New[Record](), failingLookup{err: boom})
		require.NoError(t, err)

		_, err = store.Create(context.Background(), "r-1", nil)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("failed save leaves collection unchanged", func(t *testing.T) {
		f := newFixture(t)
		r := f.addRestaurant(t, "Pasta House")
		f.backend.FailSaves(errors.New("disk full"))

		_, err := f.starred.Create(context.Background(), r.ID, nil)
		assert.Error(t, err)

		records, err := f.starred.snapshot(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestStore_ListJoined(t *testing.T) {
	t.Run("joins names in insertion order", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		a := f.addRestaurant(t, "A")
		b := f.addRestaurant(t, "B")

		_, err := f.starred.Create(ctx, b.ID, strPtr("second"))
		require.NoError(t, err)
		_, err = f.starred.Create(ctx, a.ID, strPtr("first"))
		require.NoError(t, err)

		list, err := f.starred.ListJoined(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "B", *list[0].Name)
		assert.Equal(t, "second", list[0].Comment)
		assert.Equal(t, "A", *list[1].Name)
	})

	t.Run("keeps dangling records with nil name", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		r := f.addRestaurant(t, "Pasta House")
		created, err := f.starred.Create(ctx, r.ID, strPtr("great"))
		require.NoError(t, err)

		require.NoError(t, f.restaurants.Delete(ctx, r.ID))

		list, err := f.starred.ListJoined(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, Joined{ID: created.ID, Comment: "great", Name: nil}, list[0])
	})

	t.Run("seeded records referencing nothing", func(t *testing.T) {
		f := newFixture(t, Record{ID: "old", RestaurantID: "gone", Comment: "x"})

		list, err := f.starred.ListJoined(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Nil(t, list[0].Name)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		f := newFixture(t)

		list, err := f.starred.ListJoined(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("lookup failure aborts the list", func(t *testing.T) {
		boom := errors.New("lookup down")
		store, err := Open(context.Background(),
			memory.New(Record{ID: "s", RestaurantID: "r"}), failingLookup{err: boom})
		require.NoError(t, err)

		_, err = store.ListJoined(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestStore_GetJoined(t *testing.T) {
	t.Run("returns the joined record", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		r := f.addRestaurant(t, "Pasta House")
		created, err := f.starred.Create(ctx, r.ID, strPtr("great"))
		require.NoError(t, err)

		got, err := f.starred.GetJoined(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.starred.GetJoined(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted restaurant is not found although the list keeps it", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		r := f.addRestaurant(t, "Pasta House")
		created, err := f.starred.Create(ctx, r.ID, strPtr("great"))
		require.NoError(t, err)
		require.NoError(t, f.restaurants.Delete(ctx, r.ID))

		_, err = f.starred.GetJoined(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := f.starred.ListJoined(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("removes the record", func(t *testing.T) {
		f := newFixture(t, Record{ID: "a"}, Record{ID: "b"})
		ctx := context.Background()

		require.NoError(t, f.starred.Delete(ctx, "a"))

		records, err := f.backend.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Record{{ID: "b"}}, records)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		f := newFixture(t, Record{ID: "a"})
		ctx := context.Background()

		require.NoError(t, f.starred.Delete(ctx, "a"))
		assert.ErrorIs(t, f.starred.Delete(ctx, "a"), ErrNotFound)
		assert.Equal(t, 1, f.backend.Saves())
	})
}

func TestStore_UpdateComment(t *testing.T) {
	t.Run("sets the comment", func(t *testing.T) {
		f := newFixture(t, Record{ID: "a", RestaurantID: "r", Comment: "old"})
		ctx := context.Background()

		require.NoError(t, f.starred.UpdateComment(ctx, "a", strPtr("new")))

		records, err := f.starred.snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", records[0].Comment)
	})

	t.Run("nil and empty comments store empty string", func(t *testing.T) {
		f := newFixture(t, Record{ID: "a", Comment: "old"})
		ctx := context.Background()

		require.NoError(t, f.starred.UpdateComment(ctx, "a", nil))
		records, err := f.starred.snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", records[0].Comment)

		require.NoError(t, f.starred.UpdateComment(ctx, "a", strPtr("")))
		records, err = f.starred.snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", records[0].Comment)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture(t)

		err := f.starred.UpdateComment(context.Background(), "missing", strPtr("x"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Close(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.starred.Close())

	_, err := f.starred.ListJoined(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = f.starred.GetJoined(ctx, "a")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, f.starred.UpdateComment(ctx, "a", nil), ErrStoreClosed)
}

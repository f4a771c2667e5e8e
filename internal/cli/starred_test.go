package cli

import (
	"context"
	"testing"

	"github.com/artpar/starplate/internal/restaurant"
	"github.com/artpar/starplate/internal/starred"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStarredCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("add stars several restaurants", func(t *testing.T) {
		api := newTestAPI(t)
		a, err := api.restaurants.Create(ctx, strPtr("Pasta House"))
		require.NoError(t, err)
		b, err := api.restaurants.Create(ctx, strPtr("Noodle Bar"))
		require.NoError(t, err)

		out, err := execute(t, "starred", "add", a.ID, b.ID, "--comment", "try it", "--endpoint", api.url)
		require.NoError(t, err)

		added := decode[[]starred.Joined](t, out)
		require.Len(t, added, 2)
		assert.Equal(t, "Pasta House", *added[0].Name)
		assert.Equal(t, "Noodle Bar", *added[1].Name)
		assert.Equal(t, "try it", added[0].Comment)

		list, err := api.starred.ListJoined(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("add fails for unknown restaurant", func(t *testing.T) {
		api := newTestAPI(t)
		_, err := execute(t, "starred", "add", "missing", "--endpoint", api.url)
		assert.Error(t, err)
	})

	t.Run("list prints joined records", func(t *testing.T) {
		api := newTestAPI(t)
		r, err := api.restaurants.Create(ctx, strPtr("Pasta House"))
		require.NoError(t, err)
		_, err = api.starred.Create(ctx, r.ID, strPtr("good"))
		require.NoError(t, err)

		out, err := execute(t, "starred", "list", "--endpoint", api.url)
		require.NoError(t, err)

		list := decode[[]starred.Joined](t, out)
		require.Len(t, list, 1)
		assert.Equal(t, "good", list[0].Comment)
	})

	t.Run("unstar reports status", func(t *testing.T) {
		api := newTestAPI(t)
		r, err := api.restaurants.Create(ctx, strPtr("Pasta House"))
		require.NoError(t, err)
		j, err := api.starred.Create(ctx, r.ID, nil)
		require.NoError(t, err)

		out, err := execute(t, "starred", "unstar", j.ID, "--endpoint", api.url)
		require.NoError(t, err)
		assert.Equal(t, "204 No Content\n", out)

		out, err = execute(t, "starred", "unstar", j.ID, "--endpoint", api.url)
		assert.Error(t, err)
		assert.Equal(t, "404 Not Found\n", out)
	})

	t.Run("comment replaces comment", func(t *testing.T) {
		api := newTestAPI(t)
		r, err := api.restaurants.Create(ctx, strPtr("Pasta House"))
		require.NoError(t, err)
		j, err := api.starred.Create(ctx, r.ID, strPtr("old"))
		require.NoError(t, err)

		out, err := execute(t, "starred", "comment", j.ID, "new", "--endpoint", api.url)
		require.NoError(t, err)
		assert.Equal(t, "200 OK\n", out)

		got, err := api.starred.GetJoined(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Comment)
	})
}

func TestRestaurantsCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("add then list", func(t *testing.T) {
		api := newTestAPI(t)

		out, err := execute(t, "restaurants", "add", "Pasta House", "--endpoint", api.url)
		require.NoError(t, err)
		created := decode[restaurant.Restaurant](t, out)
		assert.Equal(t, "Pasta House", *created.Name)

		out, err = execute(t, "restaurants", "list", "--endpoint", api.url)
		require.NoError(t, err)
		list := decode[[]restaurant.Restaurant](t, out)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		api := newTestAPI(t)
		r, err := api.restaurants.Create(ctx, strPtr("Pasta House"))
		require.NoError(t, err)

		out, err := execute(t, "restaurants", "delete", r.ID, "--endpoint", api.url)
		require.NoError(t, err)
		assert.Contains(t, out, r.ID)

		_, err = execute(t, "restaurants", "delete", r.ID, "--endpoint", api.url)
		assert.Error(t, err)
	})
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/internals/apperrors"
	"library-lending/internals/cache"
)

func TestPatronCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("add and get", func(t *testing.T) {
		env := newTestEnv(t)
		patron := env.seedPatron(t, "Alice")

		got, err := env.patrons.GetPatronByID(ctx, patron.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		assert.True(t, env.cache.Has(cache.KindPatron, patron.ID))
	})

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.patrons.GetPatronByID(ctx, 404)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindPatronNotFound, apperrors.KindOf(err))
	})

	t.Run("update evicts the cache", func(t *testing.T) {
		env := newTestEnv(t)
		patron := env.seedPatron(t, "Alice")

		_, err := env.patrons.GetPatronByID(ctx, patron.ID)
		require.NoError(t, err)
		require.True(t, env.cache.Has(cache.KindPatron, patron.ID))

		updated, err := env.patrons.UpdatePatron(ctx, patron.ID, PatronUpdate{
			Name:        "Alice B.",
			PhoneNumber: "+4915100000000",
			Address:     "Elsewhere 2",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice B.", updated.Name)
		assert.False(t, env.cache.Has(cache.KindPatron, patron.ID))
	})

	t.Run("delete removes an unreferenced patron", func(t *testing.T) {
		env := newTestEnv(t)
		patron := env.seedPatron(t, "Transient")

		require.NoError(t, env.patrons.DeletePatron(ctx, patron.ID))

		_, err := env.patrons.GetPatronByID(ctx, patron.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindPatronNotFound, apperrors.KindOf(err))
	})

	t.Run("delete is blocked by borrowing history", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Some Book")
		patron := env.seedPatron(t, "Regular")

		_, err := env.lending.BorrowBook(ctx, book.ID, patron.ID)
		require.NoError(t, err)

		err = env.patrons.DeletePatron(ctx, patron.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindReferentialIntegrity, apperrors.KindOf(err))
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedPatron(t, "Alice")
		env.seedPatron(t, "Bob")

		patrons, err := env.patrons.GetAllPatrons(ctx)
		require.NoError(t, err)
		assert.Len(t, patrons, 2)
	})
}

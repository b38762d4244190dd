package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/internals/apperrors"
	"library-lending/internals/cache"
)

func TestBookCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("added books are available", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "New Arrival")

		got, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Equal(t, "New Arrival", got.Title)
	})

	t.Run("get by id fills the cache", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Cacheable")

		require.False(t, env.cache.Has(cache.KindBook, book.ID))
		_, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)
		assert.True(t, env.cache.Has(cache.KindBook, book.ID))
	})

	t.Run("get serves from cache on a hit", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Original Title")

		_, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)

		// mutate the store behind the cache's back; the next read must
		// still be the cached value because nothing invalidated it
		book.Title = "Changed Behind The Cache"
		require.NoError(t, env.store.Books().Update(ctx, book))

		got, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original Title", got.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.books.GetBookByID(ctx, 12345)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBookNotFound, apperrors.KindOf(err))
	})

	t.Run("update changes descriptive fields and evicts the cache", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "First Edition")

		_, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)
		require.True(t, env.cache.Has(cache.KindBook, book.ID))

		updated, err := env.books.UpdateBook(ctx, book.ID, BookUpdate{
			Title:           "Second Edition",
			Author:          "New Author",
			PublicationYear: 2010,
		})
		require.NoError(t, err)
		assert.Equal(t, "Second Edition", updated.Title)
		assert.False(t, env.cache.Has(cache.KindBook, book.ID))

		got, err := env.books.GetBookByID(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second Edition", got.Title)
		assert.Equal(t, 2010, got.PublicationYear)
	})

	t.Run("update keeps the availability flag untouched", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Held Book")
		patron := env.seedPatron(t, "Alice")

		_, err := env.lending.BorrowBook(ctx, book.ID, patron.ID)
		require.NoError(t, err)

		updated, err := env.books.UpdateBook(ctx, book.ID, BookUpdate{Title: "Held Book, Renamed"})
		require.NoError(t, err)
		assert.False(t, updated.Available)
		env.assertAvailabilityInvariant(t, book.ID)
	})

	t.Run("update racing a borrow never resurrects availability", func(t *testing.T) {
		// the rename and the borrow contend on the same book row; whichever
		// order the store commits them in, the open record owns the flag and
		// the rename must not write a stale Available=true over it
		for i := 0; i < 50; i++ {
			env := newTestEnv(t)
			book := env.seedBook(t, "Contended")
			patron := env.seedPatron(t, "Alice")

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := env.lending.BorrowBook(ctx, book.ID, patron.ID)
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := env.books.UpdateBook(ctx, book.ID, BookUpdate{
					Title:           "Contended, Renamed",
					Author:          "Some Author",
					PublicationYear: 2001,
				})
				assert.NoError(t, err)
			}()
			wg.Wait()

			got, err := env.books.GetBookByID(ctx, book.ID)
			require.NoError(t, err)
			assert.False(t, got.Available)
			assert.Equal(t, "Contended, Renamed", got.Title)
			env.assertAvailabilityInvariant(t, book.ID)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.books.UpdateBook(ctx, 999, BookUpdate{Title: "x"})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBookNotFound, apperrors.KindOf(err))
	})

	t.Run("delete removes an unreferenced book", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Disposable")

		require.NoError(t, env.books.DeleteBook(ctx, book.ID))

		_, err := env.books.GetBookByID(ctx, book.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBookNotFound, apperrors.KindOf(err))
	})

	t.Run("delete is blocked by borrowing history", func(t *testing.T) {
		env := newTestEnv(t)
		book := env.seedBook(t, "Historical")
		patron := env.seedPatron(t, "Alice")

		_, err := env.lending.BorrowBook(ctx, book.ID, patron.ID)
		require.NoError(t, err)
		_, err = env.lending.ReturnBook(ctx, book.ID, patron.ID)
		require.NoError(t, err)

		err = env.books.DeleteBook(ctx, book.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindReferentialIntegrity, apperrors.KindOf(err))

		// the book and its history must survive the failed delete
		_, err = env.books.GetBookByID(ctx, book.ID)
		assert.NoError(t, err)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.books.DeleteBook(ctx, 999)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBookNotFound, apperrors.KindOf(err))
	})

	t.Run("list returns all books in id order", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedBook(t, "A")
		env.seedBook(t, "B")
		env.seedBook(t, "C")

		books, err := env.books.GetAllBooks(ctx)
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "A", books[0].Title)
		assert.Equal(t, "C", books[2].Title)
	})
}

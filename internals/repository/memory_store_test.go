package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/internals/models"
)

func TestMemoryStoreAtomicRollback(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	book := &models.Book{Title: "Rollback", Available: true}
	require.NoError(t, store.Books().Create(ctx, book))
	patron := &models.Patron{Name: "Alice"}
	require.NoError(t, store.Patrons().Create(ctx, patron))

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(tx Store) error {
		locked, txErr := tx.Books().FindByIDForUpdate(ctx, book.ID)
		require.NoError(t, txErr)

		locked.Available = false
		require.NoError(t, tx.Books().Update(ctx, locked))
		require.NoError(t, tx.Borrowings().Create(ctx, &models.BorrowingRecord{
			BookID:     book.ID,
			PatronID:   patron.ID,
			BorrowDate: time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// nothing from the failed transaction may be visible
	got, err := store.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)

	_, err = store.Borrowings().FindOpenByBook(ctx, book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAtomicCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	book := &models.Book{Title: "Commit", Available: true}
	require.NoError(t, store.Books().Create(ctx, book))
	patron := &models.Patron{Name: "Alice"}
	require.NoError(t, store.Patrons().Create(ctx, patron))

	err := store.Atomic(ctx, func(tx Store) error {
		book.Available = false
		if txErr := tx.Books().Update(ctx, book); txErr != nil {
			return txErr
		}
		return tx.Borrowings().Create(ctx, &models.BorrowingRecord{
			BookID:     book.ID,
			PatronID:   patron.ID,
			BorrowDate: time.Now(),
		})
	})
	require.NoError(t, err)

	got, err := store.Books().FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	record, err := store.Borrowings().FindOpenByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, patron.ID, record.PatronID)
}

func TestMemoryStoreForeignKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("borrowing requires existing book and patron", func(t *testing.T) {
		store := NewMemoryStore()
		err := store.Borrowings().Create(ctx, &models.BorrowingRecord{
			BookID:     1,
			PatronID:   1,
			BorrowDate: time.Now(),
		})
		assert.ErrorIs(t, err, ErrForeignKeyViolated)
	})

	t.Run("referenced book cannot be deleted", func(t *testing.T) {
		store := NewMemoryStore()
		book := &models.Book{Title: "Referenced"}
		require.NoError(t, store.Books().Create(ctx, book))
		patron := &models.Patron{Name: "Alice"}
		require.NoError(t, store.Patrons().Create(ctx, patron))
		require.NoError(t, store.Borrowings().Create(ctx, &models.BorrowingRecord{
			BookID:     book.ID,
			PatronID:   patron.ID,
			BorrowDate: time.Now(),
		}))

		assert.ErrorIs(t, store.Books().Delete(ctx, book.ID), ErrForeignKeyViolated)
		assert.ErrorIs(t, store.Patrons().Delete(ctx, patron.ID), ErrForeignKeyViolated)
	})
}

func TestMemoryStoreBorrowingQueries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	book := &models.Book{Title: "Queried"}
	require.NoError(t, store.Books().Create(ctx, book))
	patron := &models.Patron{Name: "Alice"}
	require.NoError(t, store.Patrons().Create(ctx, patron))

	closedAt := time.Now().Add(-time.Hour)
	closed := &models.BorrowingRecord{
		BookID:     book.ID,
		PatronID:   patron.ID,
		BorrowDate: time.Now().Add(-2 * time.Hour),
		ReturnDate: &closedAt,
	}
	require.NoError(t, store.Borrowings().Create(ctx, closed))

	open := &models.BorrowingRecord{
		BookID:     book.ID,
		PatronID:   patron.ID,
		BorrowDate: time.Now(),
	}
	require.NoError(t, store.Borrowings().Create(ctx, open))

	t.Run("open record lookup skips closed records", func(t *testing.T) {
		got, err := store.Borrowings().FindOpenByBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, open.ID, got.ID)
	})

	t.Run("pair lookup returns the latest record", func(t *testing.T) {
		got, err := store.Borrowings().FindByBookAndPatron(ctx, book.ID, patron.ID)
		require.NoError(t, err)
		assert.Equal(t, open.ID, got.ID)
	})

	t.Run("counts span open and closed records", func(t *testing.T) {
		n, err := store.Borrowings().CountByBook(ctx, book.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = store.Borrowings().CountByPatron(ctx, patron.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("missing lookups", func(t *testing.T) {
		_, err := store.Borrowings().FindOpenByBook(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Borrowings().FindByBookAndPatron(ctx, book.ID, 999)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Borrowings().FindByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStoreLibrarians(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	librarian := &models.Librarian{Name: "Head", Email: "head@library.test", Password: "hash"}
	require.NoError(t, store.Librarians().Create(ctx, librarian))

	got, err := store.Librarians().FindByEmail(ctx, "head@library.test")
	require.NoError(t, err)
	assert.Equal(t, librarian.ID, got.ID)

	err = store.Librarians().Create(ctx, &models.Librarian{Email: "head@library.test"})
	assert.Error(t, err, "duplicate email must be rejected")

	_, err = store.Librarians().FindByEmail(ctx, "nobody@library.test")
	assert.ErrorIs(t, err, ErrNotFound)
}

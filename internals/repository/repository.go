// Package repository is the record store behind the services. The interfaces
// here are the only storage surface the services see; implementations are
// the gorm/Postgres store used in production and an in-memory store used by
// tests and local runs.
package repository

import (
	"context"
	"errors"

	"library-lending/internals/models"
)

var (
	// ErrNotFound is returned by every lookup that misses.
	ErrNotFound = errors.New("record not found")
	// ErrForeignKeyViolated is returned when a delete would orphan
	// borrowing records.
	ErrForeignKeyViolated = errors.New("foreign key violated")
)

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Book, error)
	// FindByIDForUpdate locks the book row for the remainder of the
	// enclosing transaction. Only valid inside Store.Atomic.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Book, error)
	FindAll(ctx context.Context) ([]models.Book, error)
}

type PatronRepository interface {
	Create(ctx context.Context, patron *models.Patron) error
	Update(ctx context.Context, patron *models.Patron) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Patron, error)
	FindAll(ctx context.Context) ([]models.Patron, error)
}

type BorrowingRepository interface {
	Create(ctx context.Context, record *models.BorrowingRecord) error
	Update(ctx context.Context, record *models.BorrowingRecord) error
	FindByID(ctx context.Context, id uint) (*models.BorrowingRecord, error)
	// FindOpenByBook returns the single open record for the book, or
	// ErrNotFound. This query is the source of truth for lendability.
	FindOpenByBook(ctx context.Context, bookID uint) (*models.BorrowingRecord, error)
	// FindByBookAndPatron returns the latest record for the pair, open or
	// closed, or ErrNotFound.
	FindByBookAndPatron(ctx context.Context, bookID, patronID uint) (*models.BorrowingRecord, error)
	CountByBook(ctx context.Context, bookID uint) (int64, error)
	CountByPatron(ctx context.Context, patronID uint) (int64, error)
}

type LibrarianRepository interface {
	Create(ctx context.Context, librarian *models.Librarian) error
	FindByEmail(ctx context.Context, email string) (*models.Librarian, error)
}

// Store aggregates the repositories. Atomic runs fn against a store whose
// writes commit together or not at all; concurrent Atomic calls touching the
// same book serialize on the row lock taken via FindByIDForUpdate.
type Store interface {
	Books() BookRepository
	Patrons() PatronRepository
	Borrowings() BorrowingRepository
	Librarians() LibrarianRepository
	Atomic(ctx context.Context, fn func(Store) error) error
}

package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"library-lending/internals/apperrors"
	"library-lending/internals/cache"
	"library-lending/internals/models"
	"library-lending/internals/repository"
)

// BookUpdate carries the descriptive fields a book update may change. The
// availability flag is owned by the lending engine and cannot be set here.
type BookUpdate struct {
	Title           string
	Author          string
	PublicationYear int
}

// BookService handles book lifecycle outside of lending: create, read
// (cache-backed), update of descriptive fields, delete.
type BookService struct {
	store repository.Store
	cache cache.Cache
	log   *logrus.Logger
}

func NewBookService(store repository.Store, resultCache cache.Cache, log *logrus.Logger) *BookService {
	return &BookService{store: store, cache: resultCache, log: log}
}

func (s *BookService) GetAllBooks(ctx context.Context) (books []models.Book, err error) {
	done := logOperation(s.log, "GetAllBooks", nil)
	defer func() { done(err) }()

	books, err = s.store.Books().FindAll(ctx)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	return books, nil
}

// GetBookByID reads through the cache.
func (s *BookService) GetBookByID(ctx context.Context, id uint) (book *models.Book, err error) {
	done := logOperation(s.log, "GetBookByID", logrus.Fields{"book_id": id})
	defer func() { done(err) }()

	var cached models.Book
	if s.cache.Get(ctx, cache.KindBook, id, &cached) {
		return &cached, nil
	}

	book, err = s.store.Books().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BookNotFound(id)
	}
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	s.cache.Set(ctx, cache.KindBook, id, book)
	return book, nil
}

// AddBook stores a new book. New books are always available.
func (s *BookService) AddBook(ctx context.Context, book *models.Book) (err error) {
	done := logOperation(s.log, "AddBook", logrus.Fields{"title": book.Title})
	defer func() { done(err) }()

	book.Available = true
	if err = s.store.Books().Create(ctx, book); err != nil {
		return apperrors.Unexpected(err)
	}
	return nil
}

// UpdateBook changes the descriptive fields and evicts the cached entry.
// The read-modify-write runs under the book row lock: the saved row carries
// the availability flag, so writing against a stale read could resurrect
// Available=true over a borrow committed in between.
func (s *BookService) UpdateBook(ctx context.Context, id uint, update BookUpdate) (book *models.Book, err error) {
	done := logOperation(s.log, "UpdateBook", logrus.Fields{"book_id": id})
	defer func() { done(err) }()

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		locked, txErr := tx.Books().FindByIDForUpdate(ctx, id)
		if errors.Is(txErr, repository.ErrNotFound) {
			return apperrors.BookNotFound(id)
		}
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		locked.Title = update.Title
		locked.Author = update.Author
		locked.PublicationYear = update.PublicationYear
		if txErr = tx.Books().Update(ctx, locked); txErr != nil {
			return apperrors.Unexpected(txErr)
		}
		book = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = s.cache.Invalidate(ctx, cache.KindBook, id); err != nil {
		s.log.WithError(err).WithField("book_id", id).Warn("cache invalidation failed")
		err = nil
	}
	return book, nil
}

// DeleteBook removes a book that has never been lent. Books referenced by
// borrowing records stay, to keep the loan history intact.
func (s *BookService) DeleteBook(ctx context.Context, id uint) (err error) {
	done := logOperation(s.log, "DeleteBook", logrus.Fields{"book_id": id})
	defer func() { done(err) }()

	if _, err = s.store.Books().FindByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return apperrors.BookNotFound(id)
	} else if err != nil {
		return apperrors.Unexpected(err)
	}

	if n, countErr := s.store.Borrowings().CountByBook(ctx, id); countErr == nil && n > 0 {
		return apperrors.ReferentialIntegrity(
			"book is referenced by existing borrowing records and cannot be deleted")
	}

	err = s.store.Books().Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrForeignKeyViolated):
		return apperrors.ReferentialIntegrity(
			"book is referenced by existing borrowing records and cannot be deleted")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.BookNotFound(id)
	case err != nil:
		return apperrors.Unexpected(err)
	}

	if err = s.cache.Invalidate(ctx, cache.KindBook, id); err != nil {
		s.log.WithError(err).WithField("book_id", id).Warn("cache invalidation failed")
		err = nil
	}
	return nil
}

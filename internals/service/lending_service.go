package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"library-lending/internals/apperrors"
	"library-lending/internals/cache"
	"library-lending/internals/repository"
)

// LendingService is the lending engine. It is the sole writer of
// BorrowingRecord.ReturnDate and Book.Available, and it keeps the
// availability flag in lock-step with the "open record exists" fact: the two
// are always written inside one Store.Atomic unit, with the book row locked
// for the duration, so concurrent transitions on the same book serialize and
// a failed transition leaves no partial state.
//
// The existence of an open record is the source of truth for lendability;
// the flag on Book is a projection kept for cheap reads. The engine never
// retries: every failure here is a business-rule violation, and retrying one
// cannot change the outcome.
type LendingService struct {
	store repository.Store
	cache cache.Cache
	log   *logrus.Logger
}

func NewLendingService(store repository.Store, resultCache cache.Cache, log *logrus.Logger) *LendingService {
	return &LendingService{store: store, cache: resultCache, log: log}
}

// BorrowBook lends the book to the patron. It fails with BOOK_NOT_FOUND or
// PATRON_NOT_FOUND when either id is unknown, and with
// BOOK_IS_ALREADY_BORROWED when an open record already exists for the book.
func (s *LendingService) BorrowBook(ctx context.Context, bookID, patronID uint) (view *BorrowingView, err error) {
	done := logOperation(s.log, "BorrowBook", logrus.Fields{"book_id": bookID, "patron_id": patronID})
	defer func() { done(err) }()

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		book, txErr := tx.Books().FindByIDForUpdate(ctx, bookID)
		if errors.Is(txErr, repository.ErrNotFound) {
			return apperrors.BookNotFound(bookID)
		}
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		patron, txErr := tx.Patrons().FindByID(ctx, patronID)
		if errors.Is(txErr, repository.ErrNotFound) {
			return apperrors.PatronNotFound(patronID)
		}
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		// the open-record query, not the cached flag, decides lendability
		_, txErr = tx.Borrowings().FindOpenByBook(ctx, bookID)
		if txErr == nil {
			return apperrors.BookAlreadyBorrowed(bookID)
		}
		if !errors.Is(txErr, repository.ErrNotFound) {
			return apperrors.Unexpected(txErr)
		}

		record := newOpenRecord(book.ID, patron.ID)
		if txErr = tx.Borrowings().Create(ctx, record); txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		book.Available = false
		if txErr = tx.Books().Update(ctx, book); txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		view = newBorrowingView(record, book, patron)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, bookID)
	return view, nil
}

// ReturnBook closes the loan identified by the (book, patron) pair. A pair
// with no record at all, including a mismatched patron, fails with
// BORROWING_RECORD_NOT_FOUND; a pair whose latest record is already closed
// fails with BOOK_IS_ALREADY_RETURNED.
func (s *LendingService) ReturnBook(ctx context.Context, bookID, patronID uint) (view *BorrowingView, err error) {
	done := logOperation(s.log, "ReturnBook", logrus.Fields{"book_id": bookID, "patron_id": patronID})
	defer func() { done(err) }()

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		book, txErr := tx.Books().FindByIDForUpdate(ctx, bookID)
		if errors.Is(txErr, repository.ErrNotFound) {
			// an unknown book cannot have a record, and the lookup key
			// here is the pair, so this reports not-found on the record
			return apperrors.BorrowingRecordNotFound(bookID, patronID)
		}
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		record, txErr := tx.Borrowings().FindByBookAndPatron(ctx, bookID, patronID)
		if errors.Is(txErr, repository.ErrNotFound) {
			return apperrors.BorrowingRecordNotFound(bookID, patronID)
		}
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}
		if !record.Open() {
			return apperrors.BookAlreadyReturned(bookID)
		}

		patron, txErr := tx.Patrons().FindByID(ctx, patronID)
		if txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		now := time.Now()
		record.ReturnDate = &now
		if txErr = tx.Borrowings().Update(ctx, record); txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		book.Available = true
		if txErr = tx.Books().Update(ctx, book); txErr != nil {
			return apperrors.Unexpected(txErr)
		}

		view = newBorrowingView(record, book, patron)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, bookID)
	return view, nil
}

// GetBorrowingRecord returns the denormalized view for a record id.
func (s *LendingService) GetBorrowingRecord(ctx context.Context, id uint) (view *BorrowingView, err error) {
	done := logOperation(s.log, "GetBorrowingRecord", logrus.Fields{"record_id": id})
	defer func() { done(err) }()

	record, err := s.store.Borrowings().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BorrowingRecordNotFoundByID(id)
	}
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	book, err := s.store.Books().FindByID(ctx, record.BookID)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	patron, err := s.store.Patrons().FindByID(ctx, record.PatronID)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	return newBorrowingView(record, book, patron), nil
}

// invalidateBook drops the cached book entry after a committed transition.
// A failed delete means redis itself is down, in which case reads miss the
// cache too and fall through to the store, so the stale window cannot open.
func (s *LendingService) invalidateBook(ctx context.Context, bookID uint) {
	if err := s.cache.Invalidate(ctx, cache.KindBook, bookID); err != nil {
		s.log.WithError(err).WithField("book_id", bookID).Warn("cache invalidation failed")
	}
}

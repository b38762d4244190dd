// Package apperrors holds the error taxonomy shared by the services and the
// HTTP layer. Every domain failure carries a Kind that the controllers map
// to a status code and that clients can key on.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindBookNotFound            Kind = "BOOK_NOT_FOUND"
	KindPatronNotFound          Kind = "PATRON_NOT_FOUND"
	KindBorrowingRecordNotFound Kind = "BORROWING_RECORD_NOT_FOUND"
	KindBookAlreadyBorrowed     Kind = "BOOK_IS_ALREADY_BORROWED"
	KindBookAlreadyReturned     Kind = "BOOK_IS_ALREADY_RETURNED"
	KindReferentialIntegrity    Kind = "REFERENTIAL_INTEGRITY_VIOLATION"
	KindValidationFailed        Kind = "VALIDATION_FAILED"
	KindUnexpected              Kind = "UNEXPECTED"
)

// Error is a domain failure. Domain violations are terminal: retrying a
// business-rule violation cannot change the outcome, so nothing here is
// marked retryable.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match two apperrors by kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// HTTPStatus maps the kind to a transport status code. Missing ids are 404,
// business-rule and validation violations 400, everything else 500.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBookNotFound, KindPatronNotFound, KindBorrowingRecordNotFound:
		return http.StatusNotFound
	case KindBookAlreadyBorrowed, KindBookAlreadyReturned,
		KindReferentialIntegrity, KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BookNotFound(id uint) *Error {
	return New(KindBookNotFound, "book with id %d not found", id)
}

func PatronNotFound(id uint) *Error {
	return New(KindPatronNotFound, "patron with id %d not found", id)
}

func BorrowingRecordNotFound(bookID, patronID uint) *Error {
	return New(KindBorrowingRecordNotFound,
		"no borrowing record for book %d and patron %d", bookID, patronID)
}

func BorrowingRecordNotFoundByID(id uint) *Error {
	return New(KindBorrowingRecordNotFound, "borrowing record with id %d not found", id)
}

func BookAlreadyBorrowed(id uint) *Error {
	return New(KindBookAlreadyBorrowed, "book with id %d is already borrowed", id)
}

func BookAlreadyReturned(id uint) *Error {
	return New(KindBookAlreadyReturned, "book with id %d is already returned", id)
}

func ReferentialIntegrity(msg string) *Error {
	return New(KindReferentialIntegrity, "%s", msg)
}

func Unexpected(err error) *Error {
	return New(KindUnexpected, "%v", err)
}

// KindOf extracts the kind from any error; unknown errors are UNEXPECTED.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// StatusOf is KindOf's counterpart for the HTTP layer.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

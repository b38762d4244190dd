package service

import (
	"time"

	"library-lending/internals/models"
)

// BorrowingView is the denormalized display shape for a borrowing record:
// the book's title and author plus the patron's name and phone number,
// alongside the loan dates.
type BorrowingView struct {
	RecordID    uint       `json:"record_id"`
	BookID      uint       `json:"book_id"`
	PatronID    uint       `json:"patron_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Name        string     `json:"name"`
	PhoneNumber string     `json:"phone_number"`
	BorrowDate  time.Time  `json:"borrow_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
}

func newOpenRecord(bookID, patronID uint) *models.BorrowingRecord {
	return &models.BorrowingRecord{
		BookID:     bookID,
		PatronID:   patronID,
		BorrowDate: time.Now(),
	}
}

func newBorrowingView(record *models.BorrowingRecord, book *models.Book, patron *models.Patron) *BorrowingView {
	return &BorrowingView{
		RecordID:    record.ID,
		BookID:      book.ID,
		PatronID:    patron.ID,
		Title:       book.Title,
		Author:      book.Author,
		Name:        patron.Name,
		PhoneNumber: patron.PhoneNumber,
		BorrowDate:  record.BorrowDate,
		ReturnDate:  record.ReturnDate,
	}
}

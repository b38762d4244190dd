package models

import "time"

// BorrowingRecord is the history of a single loan. ReturnDate is nil while
// the loan is open; a book has at most one open record at any time.
type BorrowingRecord struct {
	ID         uint       `gorm:"primaryKey;column:id" json:"id"`
	BookID     uint       `gorm:"column:book_id;index;not null" json:"book_id"`
	PatronID   uint       `gorm:"column:patron_id;index;not null" json:"patron_id"`
	BorrowDate time.Time  `gorm:"column:borrow_date;not null" json:"borrow_date"`
	ReturnDate *time.Time `gorm:"column:return_date;index" json:"return_date"`

	Book   Book   `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT" json:"-"`
	Patron Patron `gorm:"foreignKey:PatronID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (BorrowingRecord) TableName() string { return "borrowing_records" }

// Open reports whether the loan is still active.
func (r *BorrowingRecord) Open() bool { return r.ReturnDate == nil }

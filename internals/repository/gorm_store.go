package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-lending/internals/models"
)

// GormStore is the Postgres-backed store. Atomic maps onto a database
// transaction; the book row lock in FindByIDForUpdate is what serializes
// concurrent borrow/return attempts on one book so that exactly one wins.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Books() BookRepository           { return gormBooks{db: s.db} }
func (s *GormStore) Patrons() PatronRepository       { return gormPatrons{db: s.db} }
func (s *GormStore) Borrowings() BorrowingRepository { return gormBorrowings{db: s.db} }
func (s *GormStore) Librarians() LibrarianRepository { return gormLibrarians{db: s.db} }

func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolated
	default:
		return err
	}
}

type gormBooks struct {
	db *gorm.DB
}

func (r gormBooks) Create(ctx context.Context, book *models.Book) error {
	return translate(r.db.WithContext(ctx).Create(book).Error)
}

func (r gormBooks) Update(ctx context.Context, book *models.Book) error {
	return translate(r.db.WithContext(ctx).Save(book).Error)
}

func (r gormBooks) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormBooks) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

func (r gormBooks) FindByIDForUpdate(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

func (r gormBooks) FindAll(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, translate(err)
	}
	return books, nil
}

type gormPatrons struct {
	db *gorm.DB
}

func (r gormPatrons) Create(ctx context.Context, patron *models.Patron) error {
	return translate(r.db.WithContext(ctx).Create(patron).Error)
}

func (r gormPatrons) Update(ctx context.Context, patron *models.Patron) error {
	return translate(r.db.WithContext(ctx).Save(patron).Error)
}

func (r gormPatrons) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Patron{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormPatrons) FindByID(ctx context.Context, id uint) (*models.Patron, error) {
	var patron models.Patron
	if err := r.db.WithContext(ctx).First(&patron, id).Error; err != nil {
		return nil, translate(err)
	}
	return &patron, nil
}

func (r gormPatrons) FindAll(ctx context.Context) ([]models.Patron, error) {
	var patrons []models.Patron
	if err := r.db.WithContext(ctx).Order("id").Find(&patrons).Error; err != nil {
		return nil, translate(err)
	}
	return patrons, nil
}

type gormBorrowings struct {
	db *gorm.DB
}

func (r gormBorrowings) Create(ctx context.Context, record *models.BorrowingRecord) error {
	return translate(r.db.WithContext(ctx).Create(record).Error)
}

func (r gormBorrowings) Update(ctx context.Context, record *models.BorrowingRecord) error {
	return translate(r.db.WithContext(ctx).Save(record).Error)
}

func (r gormBorrowings) FindByID(ctx context.Context, id uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r gormBorrowings) FindOpenByBook(ctx context.Context, bookID uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND return_date IS NULL", bookID).
		First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r gormBorrowings) FindByBookAndPatron(ctx context.Context, bookID, patronID uint) (*models.BorrowingRecord, error) {
	var record models.BorrowingRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND patron_id = ?", bookID, patronID).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r gormBorrowings) CountByBook(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("book_id = ?", bookID).
		Count(&n).Error
	return n, translate(err)
}

func (r gormBorrowings) CountByPatron(ctx context.Context, patronID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingRecord{}).
		Where("patron_id = ?", patronID).
		Count(&n).Error
	return n, translate(err)
}

type gormLibrarians struct {
	db *gorm.DB
}

func (r gormLibrarians) Create(ctx context.Context, librarian *models.Librarian) error {
	return translate(r.db.WithContext(ctx).Create(librarian).Error)
}

func (r gormLibrarians) FindByEmail(ctx context.Context, email string) (*models.Librarian, error) {
	var librarian models.Librarian
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&librarian).Error
	if err != nil {
		return nil, translate(err)
	}
	return &librarian, nil
}

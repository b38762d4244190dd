package initializers

import "library-lending/internals/models"

// SyncDatabase synchronizes the tables with the models.
func SyncDatabase() error {
	return DB.AutoMigrate(
		&models.Book{},
		&models.Patron{},
		&models.BorrowingRecord{},
		&models.Librarian{},
	)
}

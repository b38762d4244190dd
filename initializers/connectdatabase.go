package initializers

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase() error {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		Getenv("DB_HOST", "localhost"),
		Getenv("DB_USER", "postgres"),
		Getenv("DB_PASSWORD", ""),
		Getenv("DB_NAME", "library"),
		Getenv("DB_PORT", "5432"),
		Getenv("DB_SSLMODE", "disable"),
	)
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

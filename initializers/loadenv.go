package initializers

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvVariables reads .env into the process environment. A missing file
// is fine in containerized deployments where the environment is injected.
func LoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}
}

// Getenv returns the variable or the fallback when unset.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

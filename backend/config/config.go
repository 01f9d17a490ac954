package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Review policy knobs.
	ReviewEditWindowDays   int // owner may edit for this many days after creation
	ReviewMinCompletionPct int // minimum course completion required to review
	ReviewAutoApproveAfter int // prior approved reviews needed for auto-approval
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "course_marketplace"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		ReviewEditWindowDays:   getEnvInt("REVIEW_EDIT_WINDOW_DAYS", 30),
		ReviewMinCompletionPct: getEnvInt("REVIEW_MIN_COMPLETION_PCT", 20),
		ReviewAutoApproveAfter: getEnvInt("REVIEW_AUTO_APPROVE_AFTER", 2),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

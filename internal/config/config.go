package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // Session lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBSSLMode  string // Postgres sslmode
	SQLitePath string // SQLite file path
	JWTSecret  string // JWT secret key
	SessionTTL time.Duration
	RedisAddr  string // Redis server address, empty disables caching
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	// Bootstrap accounts
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
	SeedSampleData bool // Also seed a sample instructor, student and courses
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttlHours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 24 // Default session lifetime
	}
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),                 // Application port
		DBDriver:       getEnv("DB_DRIVER", "mysql"),               // Database driver
		DBUser:         os.Getenv("DB_USER"),                       // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                   // Database password
		DBHost:         getEnv("DB_HOST", "localhost"),             // Database host
		DBPort:         os.Getenv("DB_PORT"),                       // Database port
		DBName:         os.Getenv("DB_NAME"),                       // Database name
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),            // Postgres sslmode
		SQLitePath:     getEnv("SQLITE_PATH", "registration.db"),   // SQLite file
		JWTSecret:      os.Getenv("JWT_SECRET"),                    // JWT secret key
		SessionTTL:     time.Duration(ttlHours) * time.Hour,        // Session lifetime
		RedisAddr:      os.Getenv("REDIS_ADDR"),                    // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                    // Redis password
		RedisDB:        redisDB,                                    // Redis database number
		IsProd:         os.Getenv("IS_PROD") == "true",             // Is production environment
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),          // Bootstrap admin username
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@example.com"), // Bootstrap admin email
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),       // Bootstrap admin password
		SeedSampleData: os.Getenv("SEED_SAMPLE_DATA") == "true",    // Seed sample data
	}
}

// getEnv returns the variable or fallback when it is unset or empty
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

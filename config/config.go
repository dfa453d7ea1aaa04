package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	AppHost     string
	Environment string // "development", "staging", "production"

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string // sqlite file, used when DBDriver == "sqlite"

	// Security
	JWTSecret      string
	InternalAPIKey string

	// Hub tunables
	TypingTTL      time.Duration
	WriteQueueSize int
	PingInterval   time.Duration
}

func LoadConfig() Config {
	_ = godotenv.Load()

	typingTTL := mustParseDuration(getEnv("TYPING_TTL", "5s"))
	pingInterval := mustParseDuration(getEnv("WS_PING_INTERVAL", "25s"))

	return Config{
		Port:        getEnv("PORT", "8080"),
		AppHost:     getEnv("APP_HOST", "localhost"),
		Environment: getEnv("ENVIRONMENT", "production"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "pinkmessik"),
		DBPath:     getEnv("DB_PATH", "pinkmessik.db"),

		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		TypingTTL:      typingTTL,
		WriteQueueSize: 32,
		PingInterval:   pingInterval,
	}
}

// PostgresDSN assembles the gorm postgres DSN from the discrete DB_* vars.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustParseDuration(str string) time.Duration {
	d, err := time.ParseDuration(str)
	if err != nil {
		log.Printf("Invalid duration '%s', defaulting to 5s", str)
		return 5 * time.Second
	}
	return d
}

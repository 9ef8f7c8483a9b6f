package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config is read from the environment once at startup. A .env file in the
// working directory is honored via godotenv autoload.
type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUsername string
	DBPassword string
	DBDatabase string
	DBSchema   string

	UserServiceBaseURL string
	UserServiceTimeout time.Duration

	BreakerFailureRate float64
	BreakerMinRequests int
	BreakerOpenFor     time.Duration

	KafkaBrokers string
	OrderTopic   string
	OutboxEvery  time.Duration
	CORSOrigins  []string
}

func Load() Config {
	return Config{
		HTTPAddr: getenv("ORDER_HTTP_ADDR", ":8080"),

		DBHost:     getenv("ORDER_DB_HOST", "localhost"),
		DBPort:     getenv("ORDER_DB_PORT", "5432"),
		DBUsername: getenv("ORDER_DB_USERNAME", "postgres"),
		DBPassword: getenv("ORDER_DB_PASSWORD", "postgres"),
		DBDatabase: getenv("ORDER_DB_DATABASE", "orders"),
		DBSchema:   getenv("ORDER_DB_SCHEMA", "public"),

		UserServiceBaseURL: getenv("USERSERVICE_BASE_URL", "http://localhost:8081"),
		UserServiceTimeout: duration("USERSERVICE_TIMEOUT", 3*time.Second),

		BreakerFailureRate: float("BREAKER_FAILURE_RATE", 0.5),
		BreakerMinRequests: integer("BREAKER_MIN_REQUESTS", 5),
		BreakerOpenFor:     duration("BREAKER_OPEN_FOR", 10*time.Second),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		OrderTopic:   getenv("KAFKA_ORDER_TOPIC", "order-events"),
		OutboxEvery:  duration("OUTBOX_INTERVAL", 2*time.Second),
		CORSOrigins:  []string{getenv("CORS_ORIGINS", "*")},
	}
}

// DSN builds the postgres connection string for the pgx stdlib driver.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		c.DBUsername, c.DBPassword, c.DBHost, c.DBPort, c.DBDatabase, c.DBSchema,
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func integer(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func float(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

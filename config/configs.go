// Package config provides application configuration loaded from environment
// variables, with a .env file as a convenience for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Load it once at startup.
type Config struct {
	ServerPort  string
	LogLevel    string
	PostgresDSN string

	Redis    RedisConfig
	Kafka    KafkaConfig
	Ingester IngesterConfig

	// FlushHour and FlushMinute define the daily cache cutover: the
	// wall-clock time at which the day's trading data is considered
	// published and everything cached before it is stale.
	FlushHour   int
	FlushMinute int

	RateLimitRPS   int
	RateLimitBurst int
}

// RedisConfig holds cache store connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka connection settings for the ingester.
type KafkaConfig struct {
	Broker  string
	Topic   string
	GroupID string
}

// IngesterConfig holds batch settings for the Kafka ingester.
type IngesterConfig struct {
	BatchSize           int
	BatchTimeoutSeconds int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "postgres"),
		getEnv("POSTGRES_PASSWORD", "postgres"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "spimex"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	flushHour, flushMinute := parseFlushAt(getEnv("CACHE_FLUSH_AT", "14:11"))

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PostgresDSN: dsn,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "spimex_trading_results"),
			GroupID: getEnv("KAFKA_GROUP_ID", "spimex-ingester"),
		},
		Ingester: IngesterConfig{
			BatchSize:           getEnvAsInt("BATCH_SIZE", 200),
			BatchTimeoutSeconds: getEnvAsInt("BATCH_TIMEOUT_SECONDS", 5),
		},
		FlushHour:      flushHour,
		FlushMinute:    flushMinute,
		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 100),
	}
}

// parseFlushAt parses a "HH:MM" clock time. Invalid values fall back to the
// default cutover of 14:11.
func parseFlushAt(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 2 {
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		if errH == nil && errM == nil && h >= 0 && h <= 23 && m >= 0 && m <= 59 {
			return h, m
		}
	}
	log.Printf("Invalid CACHE_FLUSH_AT %q, falling back to 14:11", s)
	return 14, 11
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

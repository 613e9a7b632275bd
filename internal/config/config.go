package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string

	KafkaBrokers []string
	KafkaGroupID string

	CatalogDBPath         string
	CatalogMigrationsPath string

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// Load reads the configuration from the environment. Values from an optional
// .env file never override variables that are already set.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	requestTimeout, err := getDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	breakerOpenTimeout, err := getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	breakerFailures, err := strconv.ParseUint(getEnv("BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid BREAKER_FAILURES: %w", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", ":50051"),
		RequestTimeout:  requestTimeout,
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "bakery"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "storefront-consumer"),

		CatalogDBPath:         getEnv("DB_PATH", "./catalog.db"),
		CatalogMigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/catalog/migrations"),

		BreakerFailures:    uint32(breakerFailures),
		BreakerOpenTimeout: breakerOpenTimeout,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

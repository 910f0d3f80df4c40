package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Project identity; addresses the notification topics.
	ProjectID string

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	EventsTopic      string
	SuccessTopicName string
	ErrorTopicName   string

	// Redis (status store)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Postgres (warehouse)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Object store
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseTLS    bool

	// Warehouse target table
	WarehouseDataset string
	WarehouseTable   string

	// Telemetry schema catalog (optional YAML override)
	SchemaPath string
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		ProjectID: getEnv("PROJECT_ID", ""),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "telemetry-streaming"),
		EventsTopic:      getEnv("EVENTS_TOPIC", "object-created-events"),
		SuccessTopicName: getEnv("SUCCESS_TOPIC", "streaming_success_topic"),
		ErrorTopicName:   getEnv("ERROR_TOPIC", "streaming_error_topic"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "agristream"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "agristream123"),
		PostgresDB:       getEnv("POSTGRES_DB", "agristream"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3UseTLS:    getBoolEnv("S3_USE_TLS", false),

		WarehouseDataset: getEnv("WAREHOUSE_DATASET", "Telematics"),
		WarehouseTable:   getEnv("WAREHOUSE_TABLE", "TractorsData"),

		SchemaPath: getEnv("SCHEMA_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	PostgresURL string

	// KafkaBrokers empty means no broker: the API generates receipts
	// in-process instead of handing them to the worker.
	KafkaBrokers  []string
	OrderTopic    string
	ConsumerGroup string

	ReceiptDir          string
	ReceiptPublicPrefix string
}

// Load reads configuration from the environment, with an optional .env file
// for local runs.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		OrderTopic:          getEnv("KAFKA_ORDER_TOPIC", "order.created"),
		ConsumerGroup:       getEnv("KAFKA_CONSUMER_GROUP", "receipt-worker"),
		ReceiptDir:          getEnv("RECEIPT_DIR", "uploads/receipts"),
		ReceiptPublicPrefix: getEnv("RECEIPT_PUBLIC_PREFIX", "/uploads/receipts"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.PostgresURL == "" {
		return nil, errors.New("POSTGRES_URL environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

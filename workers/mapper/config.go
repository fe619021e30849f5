package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/mapping"
)

const (
	DefaultMapperKind = mapping.KindWordCount
	DefaultBatchSize  = 500
)

// MapperConfig holds configuration for the mapper worker
type MapperConfig struct {
	Kind             string
	OutputQueue      string
	BatchSize        int
	SourceID         string
	ConnectionConfig *middleware.ConnectionConfig
}

// UsesQueue reports whether records go to RabbitMQ instead of stdout.
func (c *MapperConfig) UsesQueue() bool {
	return c.OutputQueue != ""
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*MapperConfig, error) {
	kind := getEnv("MAPPER_KIND", DefaultMapperKind)
	if _, err := mapping.NewMapper(kind); err != nil {
		return nil, fmt.Errorf("invalid MAPPER_KIND: %w", err)
	}

	batchSize := DefaultBatchSize
	if batchSizeStr := os.Getenv("BATCH_SIZE"); batchSizeStr != "" {
		parsed, err := strconv.Atoi(batchSizeStr)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("BATCH_SIZE must be a positive integer (got %q)", batchSizeStr)
		}
		batchSize = parsed
	}

	config := &MapperConfig{
		Kind:        kind,
		OutputQueue: os.Getenv("OUTPUT_QUEUE"),
		BatchSize:   batchSize,
		SourceID:    getEnv("SOURCE_ID", defaultSourceID()),
	}

	if config.UsesQueue() {
		connectionConfig, err := middleware.LoadConnectionConfig()
		if err != nil {
			return nil, err
		}
		config.ConnectionConfig = connectionConfig
	}

	return config, nil
}

func defaultSourceID() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return "mapper"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

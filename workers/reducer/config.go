package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/reducer/shared/aggregation"
)

const (
	DefaultStrategy        = aggregation.StrategySum
	DefaultExpectedSources = 1
)

// ReducerConfig holds configuration for the reducer worker
type ReducerConfig struct {
	Strategy         string
	InputQueue       string
	ExpectedSources  int
	ConnectionConfig *middleware.ConnectionConfig
}

// UsesQueue reports whether records are read from RabbitMQ instead of stdin.
func (c *ReducerConfig) UsesQueue() bool {
	return c.InputQueue != ""
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*ReducerConfig, error) {
	strategy, err := aggregation.Lookup(getEnv("STRATEGY", DefaultStrategy))
	if err != nil {
		return nil, fmt.Errorf("invalid STRATEGY: %w", err)
	}

	expectedSources := DefaultExpectedSources
	if sourcesStr := os.Getenv("EXPECTED_SOURCES"); sourcesStr != "" {
		parsed, err := strconv.Atoi(sourcesStr)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("EXPECTED_SOURCES must be a positive integer (got %q)", sourcesStr)
		}
		expectedSources = parsed
	}

	config := &ReducerConfig{
		Strategy:        strategy,
		InputQueue:      os.Getenv("INPUT_QUEUE"),
		ExpectedSources: expectedSources,
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

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

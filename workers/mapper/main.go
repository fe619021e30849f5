package main

import (
	"os"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
)

func main() {
	// Initialize logger
	middleware.InitLogger()

	// Load configuration from environment variables
	config, err := LoadConfig()
	if err != nil {
		middleware.LogError(componentName, "Failed to load config: %v", err)
		os.Exit(1)
	}

	worker, err := NewMapperWorker(config, os.Stdin, os.Stdout)
	if err != nil {
		middleware.LogError(componentName, "Failed to create mapper worker: %v", err)
		os.Exit(1)
	}

	middleware.LogDebug(componentName, "Starting %s mapper (queue: %q)", config.Kind, config.OutputQueue)

	if err := worker.Run(); err != nil {
		worker.Close()
		middleware.LogError(componentName, "Mapping failed: %v", err)
		os.Exit(1)
	}
	worker.Close()
}

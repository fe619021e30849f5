package main

import (
	"os"

	"github.com/tp-distribuidos-2c2025/streamagg/shared/middleware"
)

func main() {
	middleware.InitLogger()

	config, err := LoadConfig()
	if err != nil {
		middleware.LogError(componentName, "Failed to load config: %v", err)
		os.Exit(1)
	}

	worker, err := NewReducerWorker(config, os.Stdin, os.Stdout)
	if err != nil {
		middleware.LogError(componentName, "Failed to create reducer worker: %v", err)
		os.Exit(1)
	}

	middleware.LogDebug(componentName, "Starting %s reducer (queue: %q)", config.Strategy, config.InputQueue)

	err = worker.Run()
	worker.Close()
	if err != nil {
		middleware.LogError(componentName, "Reduction failed: %v", err)
		os.Exit(1)
	}
}

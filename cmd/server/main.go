// Package main implements the entry point for the worktrack API server,
// which tracks employee tasks, rolls unfinished work forward day by day,
// flags overdue tasks, and emails daily update reminders.
package main

import (
	"fmt"
	"log"

	"github.com/worktrack/worktrack-api/internal/config"
	"github.com/worktrack/worktrack-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

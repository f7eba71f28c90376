package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"notas/cmd"
	"notas/internal/config"
	"notas/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger with configuration
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().
		Str("data_dir", cfg.DataDir).
		Msg("Starting Notas CLI")

	cmd.Execute(cfg)

	log.Debug().Msg("Notas CLI shutdown")
	os.Exit(0)
}

// Manually re-run the tool catalog seeding.
//
// Seeding runs automatically on startup; this script is for restoring the
// catalog after manual database surgery without restarting the service.
//
// Usage: go run scripts/reseed_catalog.go

package main

import (
	"log"
	"os"

	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/pkg/database"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to parse config file: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.SeedToolCatalog(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Tool catalog seeded")
}

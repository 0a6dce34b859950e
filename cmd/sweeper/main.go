package main

import (
	"log"
	"time"

	"payrelay/internal/pkg/logger"
	"payrelay/internal/platform/config"
	"payrelay/internal/platform/database"
	"payrelay/internal/platform/repositories"
)

// Prunes old delivery audit rows. Callback registrations live in server
// memory and are swept in-process; this binary only maintains the shared
// SQLite file.
func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	if cfg.Database.DeliveryLogPath == "" {
		log.Fatal("No delivery log configured, nothing to prune")
	}

	db, err := database.OpenDeliveryLog(cfg.Database.DeliveryLogPath)
	if err != nil {
		log.Fatalf("Failed to open delivery log: %v", err)
	}
	defer db.Close()

	repo := repositories.NewDeliveryLogRepository(db)

	retain := cfg.Database.RetainFor
	if retain <= 0 {
		retain = 30 * 24 * time.Hour
	}

	for {
		cutoff := time.Now().Add(-retain).Unix()
		n, err := repo.PruneBefore(cutoff)
		if err != nil {
			log.Printf("Prune failed: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d delivery records older than %v", n, retain)
		}
		time.Sleep(time.Hour)
	}
}

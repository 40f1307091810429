package main

import (
	"context"
	"log"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/container"
	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/USSTM/wms-backend/internal/queue"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := container.OpenStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open reference store: %v", err)
	}
	defer store.Close()

	worker := queue.NewWorker(&cfg.Redis, store)

	logging.Info("Starting persist worker...", "store", cfg.Store.Backend)
	if err := worker.Run(); err != nil {
		log.Fatalf("Worker stopped: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/zach3141592/TerraHacks2025/internal/config"
	"github.com/zach3141592/TerraHacks2025/internal/database"
	"github.com/zach3141592/TerraHacks2025/internal/ml"
	"github.com/zach3141592/TerraHacks2025/internal/scans"
	"github.com/zach3141592/TerraHacks2025/internal/server"
	"github.com/zach3141592/TerraHacks2025/internal/storage"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize the scan store. History is kept as a full database image
	// in a single snapshot file; the store lazily restores it on first use.
	slot := storage.NewFileSlot(filepath.Join(cfg.Database.Dir, "dailyscan.snapshot"))
	store := database.New(slot, filepath.Join(cfg.Database.Dir, "scratch"))
	defer store.Close()

	if err := store.Initialize(context.Background()); err != nil {
		// Persistence is degraded but capture and analysis still work;
		// the repository retries initialization on each operation.
		log.Printf("Scan history unavailable: %v", err)
	}

	repo := scans.NewRepository(store)

	// Initialize the vision model
	model, err := ml.NewModel(cfg.ML.Type)
	if err != nil {
		log.Fatal("Failed to create model:", err)
	}

	if err := model.Load(context.Background()); err != nil {
		log.Fatal("Failed to load model:", err)
	}

	// Initialize and start server
	srv := server.New(repo, model, cfg.Server.Debug)
	if err := srv.Start(cfg.Server.Port, cfg.Server.StaticDir); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

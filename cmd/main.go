package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"lotpool/internal/config"
	"lotpool/internal/custody"
	"lotpool/internal/handlers"
	"lotpool/internal/random"
	"lotpool/internal/services"
	"lotpool/internal/storage"
	boltstore "lotpool/internal/storage/bolt"
	memorystore "lotpool/internal/storage/memory"
	sqlitestore "lotpool/internal/storage/sqlite"
)

func main() {
	// 1. Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	defer logger.Init("lotpool", cfg.Verbose, false, io.Discard).Close()

	// 3. Open the store selected by the configured driver
	store, err := openStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// 4. Pick the winner-selection source
	src, err := pickSource(cfg)
	if err != nil {
		logger.Fatalf("Failed to pick random source: %v", err)
	}

	// 5. Wire the engine: custody ledger, registry, HTTP handler
	registry := services.NewRegistry(src, custody.NewMemoryLedger(), store)
	httpHandler := handlers.NewHTTPHandler(registry)

	// 6. Set up the Gin router and register routes
	r := gin.Default()
	httpHandler.RegisterRoutes(r)

	// 7. Run the server
	logger.Infof("Server starting on %s (storage=%s, random=%s)",
		cfg.Addr, cfg.StorageDriver, cfg.RandomSource)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "memory":
		return memorystore.New(), nil
	case "sqlite":
		return sqlitestore.Open(cfg.StoragePath)
	case "bolt":
		return boltstore.Open(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func pickSource(cfg config.Config) (random.Source, error) {
	switch strings.ToLower(cfg.RandomSource) {
	case "", "weak":
		return random.WeakTimingEntropy{}, nil
	case "secure":
		return random.Secure{}, nil
	default:
		return nil, fmt.Errorf("unknown random source %q", cfg.RandomSource)
	}
}

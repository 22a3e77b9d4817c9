package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"playcaller/config"
	"playcaller/db"
	qhttp "playcaller/http"
	"playcaller/logger"
	"playcaller/ml"
	"playcaller/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	flag.Parse()

	// Look for config in root even if run from cmd/
	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && !filepath.IsAbs(path) {
		path = filepath.Join("..", path)
	}

	// 1. Load config
	cfg, err := config.Load(path)
	if err != nil {
		logger.S().Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.Init(cfg.LoggerConfig())
	if err != nil {
		logger.S().Fatalf("Failed to build logger: %v", err)
	}
	defer log.Sync()

	// 2. Initialize database
	if err := db.InitDB(cfg.Database.Path); err != nil {
		log.Fatal("Failed to initialize database", zap.String("path", cfg.Database.Path), zap.Error(err))
	}
	defer db.CloseDB()
	log.Info("Database initialized", zap.String("path", cfg.Database.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Load the model and wire the services around it
	metrics := monitoring.NewPredictionMetrics()
	hub := monitoring.NewHub(log.Named("stream"))
	go hub.Run(ctx)

	registry := ml.NewRegistry(nil)
	reloader := &ml.Reloader{
		Dir:      cfg.Model.Dir,
		Format:   cfg.Model.Format,
		Registry: registry,
		Logger:   log.Named("model"),
		OnSwap: func(snap *ml.Snapshot) {
			entry := db.ModelLog{
				Version:  snap.Version,
				Dir:      cfg.Model.Dir,
				Format:   cfg.Model.Format,
				Classes:  snap.Model.ClassCount(),
				Features: snap.Model.FeatureCount(),
				Labels:   snap.Model.Labels(),
			}
			if err := db.SaveModelLog(entry); err != nil {
				log.Warn("Failed to record model publish", zap.Error(err))
			}
			if err := hub.Publish(monitoring.ModelSwapMessage, entry); err != nil {
				log.Warn("Failed to publish model swap", zap.Error(err))
			}
		},
	}
	if _, err := reloader.Reload(); err != nil {
		// the service still starts and answers 503 until a model appears
		log.Error("No model loaded at startup", zap.Error(err))
	}

	var predictor ml.Predictor = registry
	if cfg.Model.CacheSize > 0 {
		cached, err := ml.NewCachedPredictor(registry, cfg.Model.CacheSize)
		if err != nil {
			log.Fatal("Failed to build prediction cache", zap.Error(err))
		}
		predictor = cached
	}

	if cfg.Model.Watch {
		watcher, err := ml.NewWatcher(reloader, cfg.Model.Debounce)
		if err != nil {
			log.Fatal("Failed to watch model directory", zap.String("dir", cfg.Model.Dir), zap.Error(err))
		}
		go watcher.Run(ctx)
		log.Info("Watching model directory", zap.String("dir", cfg.Model.Dir))
	}

	// 4. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, qhttp.Deps{
		Registry:          registry,
		Predictor:         predictor,
		Reloader:          reloader,
		Hub:               hub,
		Metrics:           metrics,
		Logger:            log.Named("http"),
		RecordPredictions: true,
	})
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", server.Addr()))

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		log.Warn("Server forced to shutdown", zap.Error(err))
	}
	cancel()

	log.Info("Exiting")
}

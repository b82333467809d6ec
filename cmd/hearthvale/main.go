package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nidhogg/hearthvale/internal/api"
	"github.com/nidhogg/hearthvale/internal/appctx"
	"github.com/nidhogg/hearthvale/internal/config"
	"github.com/nidhogg/hearthvale/internal/provider"
	"github.com/nidhogg/hearthvale/internal/store"
	"github.com/nidhogg/hearthvale/internal/world"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	logger.Info("Starting Hearthvale...")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/hearthvale.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", cfgPath), zap.Error(err))
	}
	logger.Info("Config loaded", zap.String("path", cfgPath))

	app := appctx.New(cfg.Seed)
	app.Debug = cfg.Debug

	// The three residents, each with their own memory and engine.
	village := world.NewVillage(app, logger)
	if cfg.LLM.Endpoint != "" && cfg.LLM.APIKey != "" {
		village.SetProviders(provider.Config{
			Endpoint:    cfg.LLM.Endpoint,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout(),
		})
		logger.Info("External generation enabled", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Info("No LLM configured, NPCs run on scripted responses")
	}

	// Snapshot store (optional).
	var snapshots *store.SnapshotStore
	if cfg.Database.Redis.URL != "" {
		ss, redisErr := store.NewSnapshotStore(cfg.Database.Redis.URL, logger)
		if redisErr != nil {
			logger.Warn("Redis unavailable, running without save/load", zap.Error(redisErr))
		} else {
			snapshots = ss
			defer ss.Close()
		}
	}

	// Transcript archive (optional).
	if cfg.Database.Postgres.DSN != "" {
		archive, pgErr := store.NewTranscriptArchive(cfg.Database.Postgres.DSN, logger)
		if pgErr != nil {
			logger.Warn("PostgreSQL unavailable, running without transcripts", zap.Error(pgErr))
		} else {
			defer archive.Close()
			if mErr := archive.Migrate(context.Background()); mErr != nil {
				logger.Fatal("migration failed", zap.Error(mErr))
			}
			for _, n := range village.List() {
				n.Memory().Subscribe(archive.Observer())
			}
		}
	}

	// Restore a previous session before the clock starts.
	if snapshots != nil {
		var names []string
		for _, n := range village.List() {
			names = append(names, n.Name)
		}
		snaps, loadErr := snapshots.LoadVillage(context.Background(), names)
		if loadErr != nil {
			logger.Warn("failed to load snapshots", zap.Error(loadErr))
		} else if len(snaps) > 0 {
			village.Restore(snaps)
			logger.Info("Session restored", zap.Int("npcs", len(snaps)))
		}
	}

	// World clock drives memory decay and autosave.
	clock := world.NewClock(time.Duration(cfg.World.TickSeconds)*time.Second, cfg.World.Speed, app.Clock(), logger)
	clock.AddListener(village)
	if snapshots != nil {
		autosave := time.Duration(cfg.World.AutosaveMinutes) * time.Minute
		clock.AddListener(world.NewAutosaver(autosave, village, snapshots, logger))
	}
	clock.Start()
	defer clock.Stop()

	var persist api.Persistence
	if snapshots != nil {
		persist = snapshots
	}
	handler := api.NewHandler(village, clock, persist, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: handler.Router()}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Final save so the village remembers the session.
	if snapshots != nil {
		if err := snapshots.SaveVillage(shutdownCtx, village.Serialize()); err != nil {
			logger.Warn("final save failed", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
}

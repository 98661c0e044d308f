// Command server boots one node of the simulation: it loads
// configuration, opens the persistence store, and starts the HTTP API
// and fleet drivers until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novaforge/cosmos-core/internal/config"
	"github.com/novaforge/cosmos-core/internal/fleet"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/telemetry"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		panic(err)
	}
	logger, err := telemetry.NewFileLogger(cfg.LogDir)
	if err != nil {
		panic(err)
	}

	driver := os.Getenv("OWNWORLD_SQL_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := cfg.DataDir + "/world.db"
	store, err := persistence.Open(driver, dsn)
	if err != nil {
		logger.Error.Fatalf("opening persistence store: %v", err)
	}
	defer store.Close()

	logger.Info.Println("COSMOS-CORE BOOT SEQUENCE")
	logger.Info.Printf("tick_rate_hz=%d max_bodies_global=%d persistence=%s/%s",
		cfg.TickRateHz, cfg.MaxBodiesGlobal, cfg.Persistence.Compression, cfg.Persistence.Serialization)

	f := fleet.New(cfg, logger, store)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go f.Run(ctx)

	mux := http.NewServeMux()
	api := &api{fleet: f, logger: logger}
	mux.HandleFunc("/api/session/start", api.handleSessionStart)
	mux.HandleFunc("/api/body/create", api.handleCreateBody)
	mux.HandleFunc("/api/body/remove", api.handleRemoveBody)
	mux.HandleFunc("/api/upgrade/purchase", api.handlePurchaseUpgrade)
	mux.HandleFunc("/api/game/save", api.handleSaveGame)
	mux.HandleFunc("/api/game/load", api.handleLoadGame)
	mux.HandleFunc("/api/state", api.handleGetState)
	mux.HandleFunc("/api/status", api.handleStatus)

	handler := middlewareSecurity(mux)
	handler = middlewareCORS(handler)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info.Printf("listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Fatal(err)
	}
}

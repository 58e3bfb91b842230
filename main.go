package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/radio-station/cliparse"
	"github.com/danielhkuo/radio-station/db"
	"github.com/danielhkuo/radio-station/middleware"
	"github.com/danielhkuo/radio-station/router"
	"github.com/danielhkuo/radio-station/storage"
	"github.com/danielhkuo/radio-station/votes"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Select and open the storage backend, once
	var store storage.Backend
	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres:
		store, err = storage.NewPooled(cfg.DatabaseURL, cfg.PoolSize, cfg.PoolTimeout)
	default:
		store, err = storage.NewEmbedded(cfg.DatabasePath)
	}
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database connected", "type", cfg.DatabaseType)

	// Migrate the vote table. Failures are logged in full by the migrator
	// and are not fatal: the server starts, /ready reports the degraded
	// state, and the next restart retries.
	migrator := db.NewMigrator(store)
	if err := migrator.Run(context.Background()); err != nil {
		slog.Warn("starting with unmigrated vote schema", "error", err)
	} else {
		slog.Info("Database schema ready")
	}

	ledger := votes.NewLedger(store)

	// Create router
	mux := router.NewRouter(ledger, migrator, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

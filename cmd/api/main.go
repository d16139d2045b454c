package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etuitionbd/server/internal/config"
	"github.com/etuitionbd/server/internal/db"
	httpx "github.com/etuitionbd/server/internal/http"
	"github.com/etuitionbd/server/internal/observability"
	"github.com/etuitionbd/server/internal/repo/mongodb"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "etuitionbd-api", cfg.Env, cfg.OTELEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	var (
		deps   httpx.Deps
		client *mongo.Client
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		deps = httpx.MemoryDeps()
		deps.Prom = prom
	default:
		client, err = db.NewClient(cfg.DBURI)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		store := mongodb.NewStore(client.Database(cfg.DBName), prom)

		idxCtx, cancel := config.WithTimeout(ctx, 15*time.Second)
		if err := store.EnsureIndexes(idxCtx); err != nil {
			log.Warn("ensure indexes failed", "err", err)
		}
		cancel()

		deps = httpx.MongoDeps(store, prom)
	}

	seedCtx, cancel := config.WithTimeout(ctx, 10*time.Second)
	if err := db.EnsureAdminUser(seedCtx, deps.Users, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
	}
	cancel()

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if client != nil {
			if err := client.Disconnect(ctx); err != nil {
				log.Error("db disconnect failed", "err", err)
			}
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

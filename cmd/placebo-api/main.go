package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadedpez/placebo/internal/casino"
	"github.com/fadedpez/placebo/internal/config"
	"github.com/fadedpez/placebo/internal/logging"
	httptransport "github.com/fadedpez/placebo/pkg/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogPretty)
	logger := logging.Default.With("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := casino.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to start casino: %v", err)
		os.Exit(1)
	}
	c.Start(ctx)

	r := httptransport.NewRouter(httptransport.Deps{
		Sessions:   c.Sessions,
		Lobby:      c.Lobby,
		Rewards:    c.Rewards,
		Statistics: c.Statistics,
		Logger:     logging.Default.With("http"),
	})
	httptransport.LogRoutes(r, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error stopping server: %v", err)
	}
	if err := c.Close(shutdownCtx); err != nil {
		logger.Error("Error closing stores: %v", err)
	}
}

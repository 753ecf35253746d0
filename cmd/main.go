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

	"prisoner-alerts-api/internal/api"
	"prisoner-alerts-api/internal/config"
	"prisoner-alerts-api/internal/db"
	"prisoner-alerts-api/internal/events"
	"prisoner-alerts-api/internal/logging"
	"prisoner-alerts-api/internal/prisonersearch"
	"prisoner-alerts-api/internal/services"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	if err := dbConn.EnsureSchema(context.Background()); err != nil {
		logger.Fatalf("Failed to apply schema: %v", err)
	}

	// Outbound events: Kafka (optional) plus websocket feed
	hub := events.NewHub(logger)
	bus := events.NewBus(cfg.Kafka.Broker, cfg.Kafka.Topic, hub, logger)
	defer bus.Close()

	search := prisonersearch.New(cfg.PrisonerSearch.BaseURL, cfg.PrisonerSearch.Timeout, logger)

	alertSvc := services.NewAlertService(dbConn, dbConn, logger)
	mergeSvc := services.NewMergeService(dbConn, dbConn, logger)
	bulkSvc := services.NewBulkService(dbConn, dbConn, dbConn, search, logger)
	resyncSvc := services.NewResyncService(dbConn, dbConn, logger)

	handler := api.NewHandler(alertSvc, mergeSvc, bulkSvc, resyncSvc, dbConn, bus, hub, logger)
	router := api.NewRouter(handler, logger, cfg)

	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("API server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}

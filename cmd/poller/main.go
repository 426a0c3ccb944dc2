package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/enrichment"
	"github.com/rquegea/ai-visibility-mvp/internal/notifications"
	"github.com/rquegea/ai-visibility-mvp/internal/pipeline"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
	"github.com/rquegea/ai-visibility-mvp/internal/scheduler"
	"github.com/rquegea/ai-visibility-mvp/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting AI visibility poller")

	// Initialize storage
	store, err := storage.NewPostgresStore(cfg.PostgresDSN(), cfg.PostgresMaxConns, cfg.PostgresMaxIdle)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize providers. The OpenAI client doubles as the chat completer
	// for the enrichment stage.
	openAI := providers.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ProviderTimeout)
	providerList := []providers.Provider{
		openAI,
		providers.NewPerplexityProvider(cfg.PerplexityAPIKey, cfg.PerplexityModel, cfg.ProviderTimeout),
		providers.NewSerpAPIProvider(cfg.SerpAPIKey, cfg.SerpResultCap, cfg.ProviderTimeout),
	}

	// Initialize enrichment
	enricher, err := enrichment.NewService(openAI, cfg.InsightMinLength)
	if err != nil {
		logrus.Fatalf("Failed to initialize enrichment: %v", err)
	}

	// Initialize notification service
	notificationService := notifications.NewService(cfg)

	// Initialize the poll orchestrator
	orchestrator := pipeline.NewOrchestrator(cfg, store, providerList, enricher, notificationService)

	if cfg.RunOnce {
		if err := orchestrator.Run(context.Background()); err != nil {
			logrus.Fatalf("Poll cycle failed: %v", err)
		}
		return
	}

	// Loop mode: run one cycle immediately, then poll on the configured
	// interval.
	go func() {
		if err := orchestrator.Run(context.Background()); err != nil {
			logrus.Errorf("Initial poll cycle failed: %v", err)
		}
	}()

	schedulerService := scheduler.NewService(cfg, orchestrator)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server for health checks and manual triggers
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(orchestrator)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(orchestrator)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Poller exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(orchestrator *pipeline.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(orchestrator.GetMetrics()))
	}
}

func triggerHandler(orchestrator *pipeline.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := orchestrator.Run(context.Background()); err != nil {
				logrus.Errorf("Manual poll trigger failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Poll cycle triggered successfully"}`))
	}
}

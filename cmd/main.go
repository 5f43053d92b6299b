package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"videoagent-pipeline/internal/agentapi"
	"videoagent-pipeline/internal/api"
	"videoagent-pipeline/internal/config"
	"videoagent-pipeline/internal/dedup"
	"videoagent-pipeline/internal/pipeline"
	"videoagent-pipeline/internal/storage"
	"videoagent-pipeline/internal/webhook"
	"videoagent-pipeline/pkg/logger"
)

func main() {
	// Initialize logger
	logger.Init(os.Getenv("LOG_MODE") == "prod")
	log := logger.Get()

	// Load configuration
	cfg := config.Load()
	log.Infow("loaded configuration",
		"db_host", cfg.DBHost,
		"db_name", cfg.DBName,
		"worker_count", cfg.WorkerCount,
		"queue_size", cfg.QueueSize,
		"max_retries", cfg.MaxRetries,
		"retry_backoff_ms", cfg.RetryBaseBackoff.Milliseconds(),
		"event_type_filter", cfg.EventTypeFilter,
		"filter_by_agent_ids", cfg.FilterByAgentIDs,
	)

	// Webhook filter config; an enabled agent-ID filter without IDs is a
	// startup error rather than a per-delivery one.
	filter := webhook.FilterConfig{
		EventType:        cfg.EventTypeFilter,
		FilterByAgentIDs: cfg.FilterByAgentIDs,
		AgentIDs:         webhook.ParseAgentIDs(cfg.AgentIDs),
	}
	if _, err := filter.ShouldProcess(webhook.RawEvent{}); err != nil {
		if _, bad := err.(*webhook.FilterConfigError); bad {
			log.Fatalw("invalid filter configuration", "error", err)
		}
	}

	// Setup storage (MySQL)
	store, err := storage.NewMySQLStorage(cfg.DSN())
	if err != nil {
		log.Fatalw("failed to connect to MySQL", "error", err)
	}
	defer func() {
		if db := store.DB(); db != nil {
			_ = db.Close()
			log.Info("closed MySQL connection")
		}
	}()

	// Optional delivery dedup
	var deduper pipeline.Deduper
	if cfg.RedisAddr != "" {
		rd := dedup.NewRedisDeduper(cfg.RedisAddr, cfg.DedupTTL)
		defer func() {
			_ = rd.Close()
			log.Info("closed redis connection")
		}()
		deduper = rd
	}

	// Init core components
	registry := prometheus.NewRegistry()
	metrics := pipeline.NewMetrics(registry)
	p := pipeline.NewPipeline(store, deduper, filter, metrics, cfg)

	// Video-agent API client for the management endpoints
	agents := agentapi.NewClient(cfg.AgentAPIBaseURL, cfg.AgentAPIKey, cfg.AgentAPITimeout)

	// Start API server
	mux := http.NewServeMux()
	server := api.NewServer(p, agents, registry)
	server.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	// Run server
	go func() {
		log.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server shutdown error", "error", err)
	}

	p.Shutdown()
	log.Info("service stopped")
}

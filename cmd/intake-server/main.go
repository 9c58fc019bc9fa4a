// cmd/intake-server/main.go
package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mobility-intake/internal/backend"
	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/config"
	"mobility-intake/internal/common/database"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/common/metrics"
	"mobility-intake/internal/common/observability"
	"mobility-intake/internal/extraction"
	"mobility-intake/internal/fallback"
	"mobility-intake/internal/format"
	"mobility-intake/internal/gateway"
	"mobility-intake/internal/health"
	"mobility-intake/internal/orchestrator"
	"mobility-intake/internal/schema"
	"mobility-intake/internal/session"
)

// sweepInterval is how often abandoned in-memory sessions are reaped.
const sweepInterval = time.Minute

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting intake server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("intake-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Session store ---
	var store collector.Store
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Fatal("redis unreachable", zap.Error(err))
		}
		rs := session.NewRedisStore(redisClient.GetClient(), cfg.Session.TTLDuration())
		// Redis expires abandoned sessions server-side; refresh the gauge
		// from the key count so expiries don't leave it inflated.
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				n, err := rs.Count(ctx)
				if err != nil {
					log.WithError(err).Warn("session count failed", nil)
					continue
				}
				metrics.ActiveSessions.Set(float64(n))
			}
		}()
		store = rs
		zapLog.Info("Redis session store connected", zap.String("address", cfg.Database.Redis.Address))
	default:
		mem := session.NewMemoryStore(cfg.Session.TTLDuration())
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				if removed := mem.Sweep(); removed > 0 {
					log.Debug("abandoned sessions reaped", map[string]interface{}{"count": removed})
				}
			}
		}()
		store = mem
		zapLog.Info("In-memory session store initialized")
	}

	// --- Collector with GenAI extraction ---
	schemas := schema.Default()
	extractor := extraction.NewClient(cfg.GenAI, log)
	intake := collector.New(schemas, store, extractor, log)

	// --- Prediction backends; misconfiguration fails startup ---
	var (
		compensationBackend orchestrator.CompensationPredictor
		policyBackend       orchestrator.PolicyPredictor
		probers             []health.Prober
	)
	if rc, ok := cfg.Routes[schema.RouteCompensation]; ok && rc.BackendURL != "" {
		b, err := backend.NewCompensationBackend(rc, cfg.Orchestrator, log)
		if err != nil {
			zapLog.Fatal("compensation backend failed", zap.Error(err))
		}
		compensationBackend = b
		probers = append(probers, b)
		zapLog.Info("compensation backend configured", zap.String("url", rc.BackendURL))
	}
	if rc, ok := cfg.Routes[schema.RoutePolicy]; ok && rc.BackendURL != "" {
		b, err := backend.NewPolicyBackend(rc, cfg.Orchestrator, log)
		if err != nil {
			zapLog.Fatal("policy backend failed", zap.Error(err))
		}
		policyBackend = b
		probers = append(probers, b)
		zapLog.Info("policy backend configured", zap.String("url", rc.BackendURL))
	}

	monitor := health.NewMonitor(
		cfg.Orchestrator.HealthCacheTTLDuration(),
		cfg.Orchestrator.ProbeTimeoutDuration(),
		probers,
		log,
	)

	orch := orchestrator.New(orchestrator.Options{
		Schemas:        schemas,
		Compensation:   compensationBackend,
		Policy:         policyBackend,
		Fallback:       fallback.NewClient(cfg.GenAI, log),
		Health:         monitor,
		EnableBackends: cfg.Orchestrator.EnableBackends,
		Logger:         log,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: gateway.NewServer(intake, orch, format.Render, log).WithObservability(obs).Handler(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Intake server stopped gracefully")
}

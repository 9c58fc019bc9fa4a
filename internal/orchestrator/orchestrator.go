// Package orchestrator routes a completed field set to the best
// available prediction path: the route's dedicated backend when enabled
// and healthy, the generative fallback otherwise. Every result carries
// its provenance.
package orchestrator

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"mobility-intake/internal/collector"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/common/metrics"
	"mobility-intake/internal/models"
	"mobility-intake/internal/schema"
)

// CompensationPredictor is the compensation backend capability.
type CompensationPredictor interface {
	Predict(ctx context.Context, fields map[string]collector.Value) (*models.CompensationOutcome, error)
}

// PolicyPredictor is the policy analysis backend capability.
type PolicyPredictor interface {
	Predict(ctx context.Context, fields map[string]collector.Value) (*models.PolicyOutcome, error)
}

// FallbackGenerator is the generative path. It must be total over any
// collected field set.
type FallbackGenerator interface {
	Generate(ctx context.Context, sch schema.RouteSchema, fields map[string]collector.Value, docs []models.Document) (string, error)
}

// HealthChecker answers cached liveness questions about the backends.
type HealthChecker interface {
	Healthy(ctx context.Context, name string) bool
	Status(ctx context.Context) map[string]bool
}

// Orchestrator fulfills prediction requests. A nil backend means the
// route runs fallback-only and is never health checked.
type Orchestrator struct {
	schemas        *schema.Registry
	compensation   CompensationPredictor
	policy         PolicyPredictor
	fallback       FallbackGenerator
	health         HealthChecker
	enableBackends bool

	stats  stats
	logger logger.Logger
}

type Options struct {
	Schemas        *schema.Registry
	Compensation   CompensationPredictor
	Policy         PolicyPredictor
	Fallback       FallbackGenerator
	Health         HealthChecker
	EnableBackends bool
	Logger         logger.Logger
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		schemas:        opts.Schemas,
		compensation:   opts.Compensation,
		policy:         opts.Policy,
		fallback:       opts.Fallback,
		health:         opts.Health,
		enableBackends: opts.EnableBackends,
		logger:         opts.Logger.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Fulfill produces a prediction for the route from a complete field set.
// Backend unavailability of any kind degrades to the fallback; the only
// errors that propagate are configuration mistakes and a failed
// fallback, which is the end of the line.
func (o *Orchestrator) Fulfill(ctx context.Context, route string, fields map[string]collector.Value, docs []models.Document) (*models.PredictionResult, error) {
	sch, ok := o.schemas.Route(route)
	if !ok {
		return nil, commonerrors.NewRouteNotConfiguredError(route)
	}

	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues(route))
	defer timer.ObserveDuration()

	if o.enableBackends {
		if result := o.tryBackend(ctx, route, fields); result != nil {
			o.stats.backendCalls.Add(1)
			metrics.RequestsFulfilled.WithLabelValues(route, string(models.ProvenanceBackend)).Inc()
			return result, nil
		}
	}

	text, err := o.fallback.Generate(ctx, sch, fields, docs)
	if err != nil {
		o.stats.errors.Add(1)
		o.logger.WithError(err).Error("fallback failed", map[string]interface{}{"route": route})
		return nil, err
	}

	o.stats.fallbackCalls.Add(1)
	metrics.RequestsFulfilled.WithLabelValues(route, string(models.ProvenanceFallback)).Inc()
	return &models.PredictionResult{
		Route:        route,
		Provenance:   models.ProvenanceFallback,
		FallbackText: text,
	}, nil
}

// tryBackend attempts the route's dedicated backend. A nil return means
// the caller should fall back: no backend configured, backend unhealthy,
// or the predict call failed.
func (o *Orchestrator) tryBackend(ctx context.Context, route string, fields map[string]collector.Value) *models.PredictionResult {
	switch route {
	case schema.RouteCompensation:
		if o.compensation == nil || !o.health.Healthy(ctx, route) {
			return nil
		}
		out, err := o.compensation.Predict(ctx, fields)
		if err != nil {
			o.noteBackendFailure(route, err)
			return nil
		}
		return &models.PredictionResult{Route: route, Provenance: models.ProvenanceBackend, Compensation: out}

	case schema.RoutePolicy:
		if o.policy == nil || !o.health.Healthy(ctx, route) {
			return nil
		}
		out, err := o.policy.Predict(ctx, fields)
		if err != nil {
			o.noteBackendFailure(route, err)
			return nil
		}
		return &models.PredictionResult{Route: route, Provenance: models.ProvenanceBackend, Policy: out}

	default:
		return nil
	}
}

func (o *Orchestrator) noteBackendFailure(route string, err error) {
	o.stats.errors.Add(1)
	o.logger.WithError(err).Warn("backend predict failed, falling back", map[string]interface{}{
		"route": route,
	})
}

// ServiceStatus is the operator view served by GET /status.
type ServiceStatus struct {
	BackendsEnabled bool            `json:"backends_enabled"`
	Backends        map[string]bool `json:"backends"`
	Stats           StatsSnapshot   `json:"stats"`
}

func (o *Orchestrator) Status(ctx context.Context) ServiceStatus {
	return ServiceStatus{
		BackendsEnabled: o.enableBackends,
		Backends:        o.health.Status(ctx),
		Stats:           o.stats.snapshot(),
	}
}

// internal/backend/compensation.go
package backend

import (
	"context"
	"encoding/json"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/config"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/models"
	"mobility-intake/internal/schema"
)

// CompensationBackend talks to the compensation prediction service.
type CompensationBackend struct {
	*Client
}

func NewCompensationBackend(rc config.RouteConfig, oc config.OrchestratorConfig, log logger.Logger) (*CompensationBackend, error) {
	c, err := newClient(schema.RouteCompensation, "/predict", rc, oc, log)
	if err != nil {
		return nil, err
	}
	return &CompensationBackend{Client: c}, nil
}

// Predict maps collected fields to the backend request, validates the
// response payload and normalizes it.
func (b *CompensationBackend) Predict(ctx context.Context, fields map[string]collector.Value) (*models.CompensationOutcome, error) {
	body, err := b.predict(ctx, newCompensationRequest(fields))
	if err != nil {
		return nil, err
	}
	if err := validatePayload(b.name, compensationSchemaLoader, body); err != nil {
		return nil, err
	}

	var out models.CompensationOutcome
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, commonerrors.NewMalformedPredictionError(b.name, err.Error())
	}
	return &out, nil
}

// internal/backend/policy.go
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

// PolicyBackend talks to the assignment policy analysis service.
type PolicyBackend struct {
	*Client
}

func NewPolicyBackend(rc config.RouteConfig, oc config.OrchestratorConfig, log logger.Logger) (*PolicyBackend, error) {
	c, err := newClient(schema.RoutePolicy, "/analyze", rc, oc, log)
	if err != nil {
		return nil, err
	}
	return &PolicyBackend{Client: c}, nil
}

// policyResponse is the wire shape; the analysis nesting is flattened
// during normalization.
type policyResponse struct {
	Analysis struct {
		VisaRequirements models.VisaRequirements `json:"visa_requirements"`
		Eligibility      models.Eligibility      `json:"eligibility"`
		Timeline         map[string]string       `json:"timeline"`
		Documentation    []string                `json:"documentation"`
	} `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
}

func (b *PolicyBackend) Predict(ctx context.Context, fields map[string]collector.Value) (*models.PolicyOutcome, error) {
	body, err := b.predict(ctx, newPolicyRequest(fields))
	if err != nil {
		return nil, err
	}
	if err := validatePayload(b.name, policySchemaLoader, body); err != nil {
		return nil, err
	}

	var resp policyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, commonerrors.NewMalformedPredictionError(b.name, err.Error())
	}
	return &models.PolicyOutcome{
		Visa:            resp.Analysis.VisaRequirements,
		Eligibility:     resp.Analysis.Eligibility,
		Timeline:        resp.Analysis.Timeline,
		Documentation:   resp.Analysis.Documentation,
		Recommendations: resp.Recommendations,
		Confidence:      resp.Confidence,
	}, nil
}

// internal/models/result.go
package models

// Provenance tags where a prediction result came from, so operators can
// distinguish backend-sourced from fallback-sourced answers.
type Provenance string

const (
	ProvenanceBackend  Provenance = "backend"
	ProvenanceFallback Provenance = "fallback"
)

// PredictionResult is the single normalized output shape of the
// orchestrator. Exactly one of Compensation, Policy, or FallbackText is
// populated depending on route and provenance.
type PredictionResult struct {
	Route        string               `json:"route"`
	Provenance   Provenance           `json:"provenance"`
	Compensation *CompensationOutcome `json:"compensation,omitempty"`
	Policy       *PolicyOutcome       `json:"policy,omitempty"`
	FallbackText string               `json:"fallback_text,omitempty"`
}

// CompensationOutcome is the normalized payload of the compensation
// prediction backend.
type CompensationOutcome struct {
	Predictions     CompensationPredictions `json:"predictions"`
	Breakdown       CompensationBreakdown   `json:"breakdown"`
	Confidence      ConfidenceScores        `json:"confidence_scores"`
	Recommendations []string                `json:"recommendations"`
}

type CompensationPredictions struct {
	BaseSalary       float64 `json:"base_salary"`
	ColaRatio        float64 `json:"cola_ratio"`
	AdjustedSalary   float64 `json:"adjusted_salary"`
	HousingAllowance float64 `json:"housing_allowance"`
	HardshipPay      float64 `json:"hardship_pay"`
	TotalPackage     float64 `json:"total_package"`
	Currency         string  `json:"currency"`
}

type CompensationBreakdown struct {
	BaseSalary     float64 `json:"base_salary"`
	ColaAdjustment float64 `json:"cola_adjustment"`
	Housing        float64 `json:"housing"`
	Hardship       float64 `json:"hardship"`
}

type ConfidenceScores struct {
	Cola    float64 `json:"cola"`
	Housing float64 `json:"housing"`
	Overall float64 `json:"overall"`
}

// PolicyOutcome is the normalized payload of the policy analysis backend.
type PolicyOutcome struct {
	Visa            VisaRequirements  `json:"visa_requirements"`
	Eligibility     Eligibility       `json:"eligibility"`
	Timeline        map[string]string `json:"timeline"`
	Documentation   []string          `json:"documentation"`
	Recommendations []string          `json:"recommendations"`
	Confidence      float64           `json:"confidence"`
}

type VisaRequirements struct {
	VisaType       string   `json:"visa_type"`
	ProcessingTime string   `json:"processing_time"`
	Cost           string   `json:"cost"`
	Requirements   []string `json:"requirements"`
}

type Eligibility struct {
	MeetsRequirements bool     `json:"meets_requirements"`
	Concerns          []string `json:"concerns"`
}

// FormattedResult is what flows back to the chat transport.
type FormattedResult struct {
	Provenance Provenance `json:"provenance"`
	Text       string     `json:"text"`
}

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mobility-intake/internal/models"
)

func TestRenderCompensation(t *testing.T) {
	res := &models.PredictionResult{
		Route:      "compensation",
		Provenance: models.ProvenanceBackend,
		Compensation: &models.CompensationOutcome{
			Predictions: models.CompensationPredictions{
				BaseSalary:     100000,
				ColaRatio:      1.25,
				AdjustedSalary: 125000,
				TotalPackage:   161000,
				Currency:       "USD",
			},
			Breakdown: models.CompensationBreakdown{
				BaseSalary:     100000,
				ColaAdjustment: 25000,
				Housing:        36000,
			},
			Confidence:      models.ConfidenceScores{Overall: 0.85},
			Recommendations: []string{"Review housing allowance annually"},
		},
	}

	out := Render(res)
	assert.Equal(t, models.ProvenanceBackend, out.Provenance)
	assert.Contains(t, out.Text, "Compensation Package Prediction")
	assert.Contains(t, out.Text, "**Total Package: 161,000 USD**")
	assert.Contains(t, out.Text, "| Cost-of-Living Adjustment | 25,000 |")
	assert.Contains(t, out.Text, "COLA ratio 1.25")
	assert.Contains(t, out.Text, "Overall confidence: 85%")
	assert.Contains(t, out.Text, "Review housing allowance annually")
	assert.Contains(t, out.Text, "_Source: prediction service_")
	assert.NotContains(t, out.Text, "unavailable")
}

func TestRenderPolicy(t *testing.T) {
	res := &models.PredictionResult{
		Route:      "policy",
		Provenance: models.ProvenanceBackend,
		Policy: &models.PolicyOutcome{
			Visa: models.VisaRequirements{
				VisaType:       "Employment Pass",
				ProcessingTime: "3-6 weeks",
				Cost:           "SGD 105",
				Requirements:   []string{"Valid passport"},
			},
			Eligibility: models.Eligibility{
				MeetsRequirements: false,
				Concerns:          []string{"Salary below EP threshold"},
			},
			Timeline:        map[string]string{"application": "Week 1", "approval": "Week 6"},
			Documentation:   []string{"Employment contract"},
			Recommendations: []string{"Start the visa application early"},
			Confidence:      0.82,
		},
	}

	out := Render(res)
	assert.Contains(t, out.Text, "Policy Analysis")
	assert.Contains(t, out.Text, "Visa type: Employment Pass")
	assert.Contains(t, out.Text, "Does not currently meet")
	assert.Contains(t, out.Text, "Concern: Salary below EP threshold")
	assert.Contains(t, out.Text, "application: Week 1")
	assert.Contains(t, out.Text, "Employment contract")
	assert.Contains(t, out.Text, "Confidence: 82%")
}

func TestRenderFallback(t *testing.T) {
	res := &models.PredictionResult{
		Route:        "compensation",
		Provenance:   models.ProvenanceFallback,
		FallbackText: "Estimated total package around 160,000 USD.\n",
	}

	out := Render(res)
	assert.Equal(t, models.ProvenanceFallback, out.Provenance)
	assert.Contains(t, out.Text, "Estimated total package around 160,000 USD.")
	assert.Contains(t, out.Text, "_Generated by AI analysis (prediction service unavailable)_")
}

func TestMoneyFormatting(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		950:     "950",
		1000:    "1,000",
		85000:   "85,000",
		1250000: "1,250,000",
		-36000:  "-36,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(in), "money(%v)", in)
	}
}

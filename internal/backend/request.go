// internal/backend/request.go
package backend

import (
	"strings"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/parse"
)

// Defaults substituted when a collected value is absent or degrades to
// the parser default. Requests to the backends are always total.
const (
	defaultLocation = "Unknown"
	defaultDuration = "12 months"
	defaultJobLevel = "Manager"
	defaultHousing  = "Company-provided"
	defaultAssign   = "Long-term"
)

type compensationRequest struct {
	OriginLocation      string  `json:"origin_location"`
	DestinationLocation string  `json:"destination_location"`
	CurrentSalary       float64 `json:"current_salary"`
	Currency            string  `json:"currency"`
	AssignmentDuration  string  `json:"assignment_duration"`
	JobLevel            string  `json:"job_level"`
	FamilySize          int     `json:"family_size"`
	HousingPreference   string  `json:"housing_preference"`
}

type policyRequest struct {
	OriginCountry      string `json:"origin_country"`
	DestinationCountry string `json:"destination_country"`
	AssignmentType     string `json:"assignment_type"`
	Duration           string `json:"duration"`
	JobTitle           string `json:"job_title"`
}

func newCompensationRequest(fields map[string]collector.Value) compensationRequest {
	comp := rawField(fields, "current_compensation")
	return compensationRequest{
		OriginLocation:      textField(fields, "origin_location", defaultLocation),
		DestinationLocation: textField(fields, "destination_location", defaultLocation),
		CurrentSalary:       parse.Money(comp),
		Currency:            parse.Currency(comp),
		AssignmentDuration:  textField(fields, "assignment_duration", defaultDuration),
		JobLevel:            textField(fields, "job_level", defaultJobLevel),
		FamilySize:          parse.Count(rawField(fields, "family_size")),
		HousingPreference:   textField(fields, "housing_preference", defaultHousing),
	}
}

func newPolicyRequest(fields map[string]collector.Value) policyRequest {
	return policyRequest{
		OriginCountry:      textField(fields, "origin_country", defaultLocation),
		DestinationCountry: textField(fields, "destination_country", defaultLocation),
		AssignmentType:     textField(fields, "assignment_type", defaultAssign),
		Duration:           textField(fields, "assignment_duration", defaultDuration),
		JobTitle:           textField(fields, "job_title", defaultJobLevel),
	}
}

func rawField(fields map[string]collector.Value, key string) string {
	if v, ok := fields[key]; ok {
		return v.Raw
	}
	return ""
}

func textField(fields map[string]collector.Value, key, fallback string) string {
	v, ok := fields[key]
	if !ok {
		return fallback
	}
	s := strings.TrimSpace(v.Raw)
	if s == "" {
		return fallback
	}
	return s
}

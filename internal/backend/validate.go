// internal/backend/validate.go
package backend

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "mobility-intake/internal/common/errors"
)

// Success payloads are checked for well-formedness before normalization;
// a payload that fails its schema is a malformed response and the
// orchestrator falls back.

const compensationResponseSchema = `{
  "type": "object",
  "required": ["predictions", "breakdown", "confidence_scores", "recommendations"],
  "properties": {
    "predictions": {
      "type": "object",
      "required": ["base_salary", "adjusted_salary", "total_package", "currency"],
      "properties": {
        "base_salary": {"type": "number"},
        "cola_ratio": {"type": "number"},
        "adjusted_salary": {"type": "number"},
        "housing_allowance": {"type": "number"},
        "hardship_pay": {"type": "number"},
        "total_package": {"type": "number"},
        "currency": {"type": "string"}
      }
    },
    "breakdown": {
      "type": "object",
      "properties": {
        "base_salary": {"type": "number"},
        "cola_adjustment": {"type": "number"},
        "housing": {"type": "number"},
        "hardship": {"type": "number"}
      }
    },
    "confidence_scores": {
      "type": "object",
      "properties": {
        "cola": {"type": "number"},
        "housing": {"type": "number"},
        "overall": {"type": "number"}
      }
    },
    "recommendations": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

const policyResponseSchema = `{
  "type": "object",
  "required": ["analysis", "recommendations", "confidence"],
  "properties": {
    "analysis": {
      "type": "object",
      "required": ["visa_requirements", "eligibility"],
      "properties": {
        "visa_requirements": {
          "type": "object",
          "required": ["visa_type"],
          "properties": {
            "visa_type": {"type": "string"},
            "processing_time": {"type": "string"},
            "cost": {"type": "string"},
            "requirements": {"type": "array", "items": {"type": "string"}}
          }
        },
        "eligibility": {
          "type": "object",
          "required": ["meets_requirements"],
          "properties": {
            "meets_requirements": {"type": "boolean"},
            "concerns": {"type": "array", "items": {"type": "string"}}
          }
        },
        "timeline": {"type": "object"},
        "documentation": {"type": "array", "items": {"type": "string"}}
      }
    },
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "confidence": {"type": "number"}
  }
}`

var (
	compensationSchemaLoader = gojsonschema.NewStringLoader(compensationResponseSchema)
	policySchemaLoader       = gojsonschema.NewStringLoader(policyResponseSchema)
)

func validatePayload(backend string, schemaLoader gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return commonerrors.NewMalformedPredictionError(backend, err.Error())
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return commonerrors.NewMalformedPredictionError(backend, strings.Join(issues, "; "))
	}
	return nil
}

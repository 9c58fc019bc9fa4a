// Package routing picks an intake route from a free-form first message
// with a deterministic keyword scorer. Ambiguity resolves to no route;
// the gateway then asks the user to choose.
package routing

import (
	"strings"

	"mobility-intake/internal/schema"
)

var compensationKeywords = []string{
	"salary",
	"compensation",
	"pay",
	"package",
	"cost of living",
	"cola",
	"housing",
	"allowance",
	"hardship",
	"bonus",
}

var policyKeywords = []string{
	"visa",
	"policy",
	"immigration",
	"work permit",
	"permit",
	"eligibility",
	"documentation",
	"requirements",
	"compliance",
	"legal",
}

// Detect returns the route a message most likely concerns, or "" when
// neither route clearly wins (including ties).
func Detect(message string) string {
	text := strings.ToLower(message)

	comp := score(text, compensationKeywords)
	pol := score(text, policyKeywords)

	switch {
	case comp > pol:
		return schema.RouteCompensation
	case pol > comp:
		return schema.RoutePolicy
	default:
		return ""
	}
}

func score(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

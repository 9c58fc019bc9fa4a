// Package format renders normalized prediction results into the
// markdown replies the chat surface sends back. Provenance is always
// visible to the user.
package format

import (
	"fmt"
	"sort"
	"strings"

	"mobility-intake/internal/models"
)

const (
	backendNote  = "_Source: prediction service_"
	fallbackNote = "_Generated by AI analysis (prediction service unavailable)_"
)

// Render turns a prediction result into user-facing text.
func Render(res *models.PredictionResult) models.FormattedResult {
	var text string
	switch {
	case res.Compensation != nil:
		text = renderCompensation(res.Compensation)
	case res.Policy != nil:
		text = renderPolicy(res.Policy)
	default:
		text = strings.TrimSpace(res.FallbackText)
	}

	note := backendNote
	if res.Provenance == models.ProvenanceFallback {
		note = fallbackNote
	}

	return models.FormattedResult{
		Provenance: res.Provenance,
		Text:       text + "\n\n" + note,
	}
}

func renderCompensation(out *models.CompensationOutcome) string {
	var b strings.Builder
	p := out.Predictions

	b.WriteString("## Compensation Package Prediction\n\n")
	fmt.Fprintf(&b, "**Total Package: %s %s**\n\n", money(p.TotalPackage), p.Currency)

	b.WriteString("| Component | Amount |\n|---|---|\n")
	fmt.Fprintf(&b, "| Base Salary | %s |\n", money(out.Breakdown.BaseSalary))
	fmt.Fprintf(&b, "| Cost-of-Living Adjustment | %s |\n", money(out.Breakdown.ColaAdjustment))
	fmt.Fprintf(&b, "| Housing | %s |\n", money(out.Breakdown.Housing))
	fmt.Fprintf(&b, "| Hardship | %s |\n", money(out.Breakdown.Hardship))

	fmt.Fprintf(&b, "\nAdjusted salary: %s %s", money(p.AdjustedSalary), p.Currency)
	if p.ColaRatio > 0 {
		fmt.Fprintf(&b, " (COLA ratio %.2f)", p.ColaRatio)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Overall confidence: %.0f%%\n", out.Confidence.Overall*100)

	writeRecommendations(&b, out.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func renderPolicy(out *models.PolicyOutcome) string {
	var b strings.Builder

	b.WriteString("## Policy Analysis\n\n")
	b.WriteString("**Visa Requirements**\n")
	fmt.Fprintf(&b, "- Visa type: %s\n", out.Visa.VisaType)
	if out.Visa.ProcessingTime != "" {
		fmt.Fprintf(&b, "- Processing time: %s\n", out.Visa.ProcessingTime)
	}
	if out.Visa.Cost != "" {
		fmt.Fprintf(&b, "- Cost: %s\n", out.Visa.Cost)
	}
	for _, req := range out.Visa.Requirements {
		fmt.Fprintf(&b, "- Requires: %s\n", req)
	}

	b.WriteString("\n**Eligibility**\n")
	if out.Eligibility.MeetsRequirements {
		b.WriteString("- Meets the assignment requirements\n")
	} else {
		b.WriteString("- Does not currently meet the assignment requirements\n")
	}
	for _, c := range out.Eligibility.Concerns {
		fmt.Fprintf(&b, "- Concern: %s\n", c)
	}

	if len(out.Timeline) > 0 {
		b.WriteString("\n**Timeline**\n")
		phases := make([]string, 0, len(out.Timeline))
		for phase := range out.Timeline {
			phases = append(phases, phase)
		}
		sort.Strings(phases)
		for _, phase := range phases {
			fmt.Fprintf(&b, "- %s: %s\n", phase, out.Timeline[phase])
		}
	}

	if len(out.Documentation) > 0 {
		b.WriteString("\n**Documentation**\n")
		for _, doc := range out.Documentation {
			fmt.Fprintf(&b, "- %s\n", doc)
		}
	}

	writeRecommendations(&b, out.Recommendations)
	fmt.Fprintf(&b, "\nConfidence: %.0f%%", out.Confidence*100)
	return b.String()
}

func writeRecommendations(b *strings.Builder, recs []string) {
	if len(recs) == 0 {
		return
	}
	b.WriteString("\n**Recommendations**\n")
	for _, r := range recs {
		fmt.Fprintf(b, "- %s\n", r)
	}
}

// money renders an amount with thousands separators, dropping fractional
// cents the predictions never carry meaningfully.
func money(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := fmt.Sprintf("%.0f", amount)

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	s := strings.Join(parts, ",")
	if neg {
		return "-" + s
	}
	return s
}

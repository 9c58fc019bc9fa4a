// internal/collector/state.go
package collector

import (
	"regexp"
	"strings"

	"mobility-intake/internal/models"
	"mobility-intake/internal/parse"
	"mobility-intake/internal/schema"
)

// State is the per-(session,route) collection state. Representing it as
// a single tagged value rules out the invalid flag combinations a
// boolean-per-mode design allows.
type State string

const (
	StateIdle       State = "idle"
	StateCollecting State = "collecting"
	StateConfirming State = "confirming"
	StateComplete   State = "complete"
)

// Value is one collected field, stored as its declared semantic type.
// Raw keeps the original text for summaries and for currency detection.
type Value struct {
	Type   schema.FieldType `json:"type"`
	Raw    string           `json:"raw"`
	Text   string           `json:"text,omitempty"`
	Amount float64          `json:"amount,omitempty"`
	Count  int              `json:"count,omitempty"`
}

// Display renders the value for user-facing summaries.
func (v Value) Display() string {
	return v.Raw
}

// Record is the serializable per-session collection state. It is owned
// by exactly one session and never mutated concurrently; the store and
// the gateway guarantee single-writer access per session.
type Record struct {
	Route     string            `json:"route"`
	State     State             `json:"state"`
	Fields    map[string]Value  `json:"fields"`
	History   []models.Turn     `json:"history"`
	Documents []models.Document `json:"documents,omitempty"`
}

var hasDigit = regexp.MustCompile(`\d`)

// coerceValue converts a raw extracted string into a typed Value. The
// second return is false on coercion failure, in which case the field
// counts as still missing rather than aborting the turn.
func coerceValue(f schema.Field, raw string) (Value, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}, false
	}

	v := Value{Type: f.Type, Raw: trimmed}
	switch f.Type {
	case schema.TypeMoney:
		if !hasDigit.MatchString(trimmed) {
			return Value{}, false
		}
		v.Amount = parse.Money(trimmed)
	case schema.TypeCount:
		if !hasDigit.MatchString(trimmed) {
			return Value{}, false
		}
		v.Count = parse.Count(trimmed)
	default:
		v.Text = trimmed
	}
	return v, true
}

// missingRequired returns the required field keys without a value, in
// schema order.
func missingRequired(sch schema.RouteSchema, fields map[string]Value) []string {
	var missing []string
	for _, f := range sch.Fields {
		if !f.Required {
			continue
		}
		if _, ok := fields[f.Key]; !ok {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

var affirmatives = map[string]struct{}{
	"yes":        {},
	"correct":    {},
	"confirmed":  {},
	"looks good": {},
}

var punctTrim = strings.NewReplacer("!", "", ".", "", ",", "", "?", "")

// isAffirmative reports whether a reply matches the fixed confirmation
// vocabulary, ignoring case, surrounding whitespace and punctuation.
func isAffirmative(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(punctTrim.Replace(text)))
	norm = strings.Join(strings.Fields(norm), " ")
	_, ok := affirmatives[norm]
	return ok
}

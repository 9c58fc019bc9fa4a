// Package parse holds the value parsers that coerce free text into typed
// request fields. All parsers are total: unparseable input degrades to a
// documented default instead of returning an error, and the orchestrator
// treats the default as "unspecified".
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	moneyRe = regexp.MustCompile(`(?i)\d[\d,]*(?:\.\d+)?\s*k?`)
	digitRe = regexp.MustCompile(`\d+`)
	codeRe  = regexp.MustCompile(`(?i)\b(USD|GBP|EUR|JPY|CAD|AUD|CHF|CNY|INR|SGD)\b`)
)

var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
}

// DefaultCurrency is returned when no symbol or ISO code is found.
const DefaultCurrency = "USD"

// Money extracts a numeric amount from text like "$100,000", "100k" or
// "85.5k EUR". A "k"/"K" suffix on the number multiplies it by 1000.
// Returns 0 when no amount can be found.
func Money(raw string) float64 {
	m := moneyRe.FindString(raw)
	if m == "" {
		return 0
	}

	timesK := false
	if tail := strings.TrimSpace(m); strings.HasSuffix(strings.ToLower(tail), "k") {
		timesK = true
		m = tail[:len(tail)-1]
	}

	m = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, m)

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if timesK {
		v *= 1000
	}
	return v
}

// Currency extracts an ISO currency code from text, first via currency
// symbols and then via whole-token three-letter codes. Returns
// DefaultCurrency when nothing matches.
func Currency(raw string) string {
	for _, c := range currencySymbols {
		if strings.Contains(raw, c.symbol) {
			return c.code
		}
	}
	if m := codeRe.FindString(raw); m != "" {
		return strings.ToUpper(m)
	}
	return DefaultCurrency
}

// Count extracts the first contiguous run of digits. Returns 1 when the
// text contains no digits.
func Count(raw string) int {
	m := digitRe.FindString(raw)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 1
	}
	return n
}

// internal/parse/parse_test.go
package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain dollars with separators", "$100,000 USD", 100000},
		{"k suffix", "100k", 100000},
		{"uppercase K suffix", "100K", 100000},
		{"k suffix with decimals", "85.5k EUR", 85500},
		{"k suffix with space", "120 k", 120000},
		{"symbol and words", "around £45,000 per year", 45000},
		{"decimal amount", "99500.75", 99500.75},
		{"empty string", "", 0},
		{"no digits", "not sure yet", 0},
		{"currency code only", "USD", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Money(tt.raw))
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"dollar symbol", "$100,000", "USD"},
		{"pound symbol", "£45,000", "GBP"},
		{"euro symbol", "€60000", "EUR"},
		{"yen symbol", "¥9,000,000", "JPY"},
		{"explicit code", "100000 USD", "USD"},
		{"lowercase code", "100k eur", "EUR"},
		{"code inside sentence", "paid in CAD every month", "CAD"},
		{"no match defaults", "one hundred grand", "USD"},
		{"empty defaults", "", "USD"},
		{"code must be whole token", "AUDITED accounts", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.raw))
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare number", "4", 4},
		{"number in words", "family of 3", 3},
		{"first run wins", "2 adults, 2 kids", 2},
		{"no digits defaults", "just me", 1},
		{"empty defaults", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.raw))
		})
	}
}

// The parsers must accept anything without panicking.
func TestParsersAreTotal(t *testing.T) {
	inputs := []string{"", " ", "....", "kkk", "$,,.", "\x00\xff", "9999999999999999999999"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			Money(in)
			Currency(in)
			Count(in)
		})
	}
}

package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mobility-intake/internal/schema"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "compensation language",
			message: "What salary and housing allowance should we offer for the Singapore move?",
			want:    schema.RouteCompensation,
		},
		{
			name:    "policy language",
			message: "Does she need a work permit and what visa documentation is required?",
			want:    schema.RoutePolicy,
		},
		{
			name:    "no signal",
			message: "Hi, we're relocating an employee next quarter.",
			want:    "",
		},
		{
			name:    "tie stays undecided",
			message: "Is the visa cost included in the compensation?",
			want:    "",
		},
		{
			name:    "case insensitive",
			message: "COLA and HOUSING for the assignment please",
			want:    schema.RouteCompensation,
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.message))
		})
	}
}

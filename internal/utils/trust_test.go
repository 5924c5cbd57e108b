package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name      string
		avg       float64
		reviews   int32
		completed int32
		kyc       bool
		expected  int32
	}{
		{"New user", 0, 0, 0, false, 50},
		{"Average ignored without reviews", 1, 0, 0, false, 50},
		{"Five stars", 5, 3, 0, false, 70},
		{"One star", 1, 2, 0, false, 30},
		{"Rentals bonus", 3, 1, 4, false, 58},
		{"Rentals bonus capped", 3, 1, 50, false, 70},
		{"KYC approved", 0, 0, 0, true, 60},
		{"Everything maxed", 5, 10, 10, true, 100},
		{"Rounded", 4.26, 4, 0, false, 63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrustScore(tt.avg, tt.reviews, tt.completed, tt.kyc))
		})
	}
}

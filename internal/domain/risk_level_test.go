package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RiskLevel
		ok   bool
	}{
		{"LOW", RiskLow, true},
		{"medium", RiskMedium, true},
		{" High ", RiskHigh, true},
		{"Critical", RiskCritical, true},
		{"", "", false},
		{"EXTREME", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRiskLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRiskLevels_Ordered(t *testing.T) {
	assert.Equal(t, []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}, RiskLevels)
	for _, r := range RiskLevels {
		assert.True(t, r.IsValid())
	}
	assert.False(t, RiskLevel("low").IsValid())
}

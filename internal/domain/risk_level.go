package domain

import "strings"

// RiskLevel is the rug-pull risk tier assigned to a coin.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists all tiers from least to most severe.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// String returns the string representation of RiskLevel.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid checks if the risk level is a valid value.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// ParseRiskLevel parses a tier name, ignoring case. Returns false for unknown values.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	r := RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// Package risk scores the rug-pull risk of a coin from its contract flags.
package risk

import (
	"fmt"

	"meme-coin-tracker/internal/domain"
)

// Factor weights. Factors are additive and independent, so the score is
// uncapped at 100: all five firing together yields MaxScore.
const (
	WeightLiquidityUnlocked    = 40
	WeightOwnershipNotRenounce = 25
	WeightConcentratedHolders  = 20
	WeightHoneypot             = 50
	WeightTradingDisabled      = 30

	// ConcentrationThreshold is the top-holders percentage above which
	// supply counts as concentrated (strictly greater than).
	ConcentrationThreshold = 50

	MaxScore = WeightLiquidityUnlocked + WeightOwnershipNotRenounce +
		WeightConcentratedHolders + WeightHoneypot + WeightTradingDisabled
)

// Tier lower bounds, inclusive.
const (
	CriticalThreshold = 80
	HighThreshold     = 50
	MediumThreshold   = 25
)

// Inputs are the coin attributes the score depends on.
type Inputs struct {
	LiquidityLocked      bool
	OwnershipRenounced   bool
	TopHoldersPercentage int
	Honeypot             bool
	TradingEnabled       bool
}

// InputsOf extracts the scoring inputs from a record.
func InputsOf(c domain.CoinRecord) Inputs {
	return Inputs{
		LiquidityLocked:      c.LiquidityLocked,
		OwnershipRenounced:   c.OwnershipRenounced,
		TopHoldersPercentage: c.TopHoldersPercentage,
		Honeypot:             c.Honeypot,
		TradingEnabled:       c.TradingEnabled,
	}
}

// Factor is one scoring rule evaluated against a set of inputs.
type Factor struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Weight    int    `json:"weight"`
	Triggered bool   `json:"triggered"`
}

// Assessment is the full result of scoring a set of inputs.
type Assessment struct {
	Score   int              `json:"score"`
	Level   domain.RiskLevel `json:"level"`
	Factors []Factor         `json:"factors"`
}

// Evaluate scores the inputs and reports which factors fired.
func Evaluate(in Inputs) Assessment {
	factors := []Factor{
		{
			Name:      "Liquidity unlocked",
			Condition: "liquidityLocked = false",
			Weight:    WeightLiquidityUnlocked,
			Triggered: !in.LiquidityLocked,
		},
		{
			Name:      "Ownership not renounced",
			Condition: "ownershipRenounced = false",
			Weight:    WeightOwnershipNotRenounce,
			Triggered: !in.OwnershipRenounced,
		},
		{
			Name:      "Concentrated holders",
			Condition: fmt.Sprintf("topHoldersPercentage > %d", ConcentrationThreshold),
			Weight:    WeightConcentratedHolders,
			Triggered: in.TopHoldersPercentage > ConcentrationThreshold,
		},
		{
			Name:      "Honeypot",
			Condition: "honeypot = true",
			Weight:    WeightHoneypot,
			Triggered: in.Honeypot,
		},
		{
			Name:      "Trading disabled",
			Condition: "tradingEnabled = false",
			Weight:    WeightTradingDisabled,
			Triggered: !in.TradingEnabled,
		},
	}

	score := 0
	for _, f := range factors {
		if f.Triggered {
			score += f.Weight
		}
	}

	return Assessment{
		Score:   score,
		Level:   Classify(score),
		Factors: factors,
	}
}

// Score returns the additive risk score for the inputs.
func Score(in Inputs) int {
	return Evaluate(in).Score
}

// Classify maps a score to its tier. Thresholds are checked highest first.
func Classify(score int) domain.RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return domain.RiskCritical
	case score >= HighThreshold:
		return domain.RiskHigh
	case score >= MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Assess returns the score and tier for the inputs.
func Assess(in Inputs) (int, domain.RiskLevel) {
	a := Evaluate(in)
	return a.Score, a.Level
}

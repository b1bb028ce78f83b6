package risk

import "meme-coin-tracker/internal/domain"

// Emoji returns the badge shown next to a tier.
func Emoji(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLow:
		return "✅"
	case domain.RiskMedium:
		return "⚠️"
	case domain.RiskHigh:
		return "🚨"
	case domain.RiskCritical:
		return "☠️"
	default:
		return "❓"
	}
}

// Color returns the hex colour used for a tier.
func Color(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLow:
		return "#10b981"
	case domain.RiskMedium:
		return "#f59e0b"
	case domain.RiskHigh:
		return "#ef4444"
	case domain.RiskCritical:
		return "#dc2626"
	default:
		return "#6b7280"
	}
}

// FlagLabels are the human-readable states of a coin's contract flags.
type FlagLabels struct {
	Liquidity string `json:"liquidity"`
	Ownership string `json:"ownership"`
	Honeypot  string `json:"honeypot"`
	Trading   string `json:"trading"`
}

// Labels describes the flags of a record.
func Labels(c domain.CoinRecord) FlagLabels {
	l := FlagLabels{
		Liquidity: "Unlocked",
		Ownership: "Not Renounced",
		Honeypot:  "Not Detected",
		Trading:   "Disabled",
	}
	if c.LiquidityLocked {
		l.Liquidity = "Locked"
	}
	if c.OwnershipRenounced {
		l.Ownership = "Renounced"
	}
	if c.Honeypot {
		l.Honeypot = "Detected!"
	}
	if c.TradingEnabled {
		l.Trading = "Enabled"
	}
	return l
}

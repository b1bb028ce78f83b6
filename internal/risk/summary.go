package risk

import "meme-coin-tracker/internal/domain"

// Summary aggregates risk over a set of coins.
type Summary struct {
	Total        int                      `json:"total"`
	ByLevel      map[domain.RiskLevel]int `json:"byLevel"`
	AverageScore float64                  `json:"averageScore"`
	MaxScore     int                      `json:"maxScore"`
	Honeypots    int                      `json:"honeypots"`
}

// Summarize counts coins per tier. Every tier is present in ByLevel, zero or not.
func Summarize(coins []domain.CoinRecord) Summary {
	s := Summary{
		Total:   len(coins),
		ByLevel: make(map[domain.RiskLevel]int, len(domain.RiskLevels)),
	}
	for _, level := range domain.RiskLevels {
		s.ByLevel[level] = 0
	}
	if len(coins) == 0 {
		return s
	}

	sum := 0
	for _, c := range coins {
		s.ByLevel[c.RugPullRisk]++
		sum += c.RiskScore
		if c.RiskScore > s.MaxScore {
			s.MaxScore = c.RiskScore
		}
		if c.Honeypot {
			s.Honeypots++
		}
	}
	s.AverageScore = float64(sum) / float64(len(coins))
	return s
}

package domain

import "time"

// CoinRecord is a synthetic meme coin annotated with its rug-pull risk.
// A record is never mutated after the generator returns it; stores hand out copies.
type CoinRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	ContractAddress string    `json:"contractAddress"`
	LaunchTime      time.Time `json:"launchTime"`
	MarketCap       int64     `json:"marketCap"`

	// Risk inputs
	LiquidityLocked      bool `json:"liquidityLocked"`
	OwnershipRenounced   bool `json:"ownershipRenounced"`
	TopHoldersPercentage int  `json:"topHoldersPercentage"`
	Honeypot             bool `json:"honeypot"`
	TradingEnabled       bool `json:"tradingEnabled"`

	// Derived from the risk inputs
	RiskScore   int       `json:"riskScore"`
	RugPullRisk RiskLevel `json:"rugPullRisk"`
}

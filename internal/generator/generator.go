// Package generator produces synthetic meme coin records with their
// rug-pull risk already scored.
package generator

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/risk"
)

// DefaultNames is the fixed pool coin names are drawn from.
var DefaultNames = []string{
	"PepeElonMoon", "DogeKiller", "SafeRocketInu", "FlokiShiba", "BabyDoge2.0",
	"MoonShibaElonInu", "SafePepe", "RocketFloki", "MetaDoge", "ShibaRocket",
	"ElonDogeInu", "SafeMoonPepe", "FlokiRocket", "BabyShiba", "MegaDoge",
}

// Sampling parameters.
const (
	ProbLiquidityLocked    = 0.6
	ProbOwnershipRenounced = 0.5
	ProbHoneypot           = 0.15
	ProbTradingEnabled     = 0.9

	MinMarketCap   = 10_000
	MarketCapRange = 1_000_000 // market cap is in [MinMarketCap, MinMarketCap+MarketCapRange)

	MinTopHolders   = 10
	TopHoldersRange = 80 // top holders is in [MinTopHolders, MinTopHolders+TopHoldersRange)

	MaxSymbolLen  = 5
	AddressBytes  = 20
	AddressHexLen = AddressBytes * 2
	AddressPrefix = "0x"
)

// Options configures a Generator.
type Options struct {
	// Source supplies randomness. Defaults to NewCryptoSource().
	Source Source
	// Names overrides DefaultNames when non-empty.
	Names []string
	// Now stamps LaunchTime. Defaults to time.Now.
	Now func() time.Time
}

// Generator produces CoinRecords. Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	source Source
	names  []string
	now    func() time.Time
}

// New creates a Generator.
func New(opts Options) *Generator {
	g := &Generator{
		source: opts.Source,
		names:  DefaultNames,
		now:    opts.Now,
	}
	if g.source == nil {
		g.source = NewCryptoSource()
	}
	if len(opts.Names) > 0 {
		g.names = append([]string(nil), opts.Names...)
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Generate returns one fully populated record.
// The draw order is fixed so a scripted Source reproduces a record exactly:
// name, liquidity, ownership, top holders, honeypot, trading, market cap, id, address.
func (g *Generator) Generate() domain.CoinRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := g.names[g.source.IntN(len(g.names))]

	in := risk.Inputs{
		LiquidityLocked:      g.chance(ProbLiquidityLocked),
		OwnershipRenounced:   g.chance(ProbOwnershipRenounced),
		TopHoldersPercentage: MinTopHolders + g.source.IntN(TopHoldersRange),
		Honeypot:             g.chance(ProbHoneypot),
		TradingEnabled:       g.chance(ProbTradingEnabled),
	}
	marketCap := int64(MinMarketCap + g.source.IntN(MarketCapRange))
	score, level := risk.Assess(in)

	id, err := uuid.NewRandomFromReader(g.source)
	if err != nil {
		panic(fmt.Sprintf("generator: draw coin id: %v", err))
	}
	address, err := NewContractAddress(g.source)
	if err != nil {
		panic(fmt.Sprintf("generator: draw contract address: %v", err))
	}

	return domain.CoinRecord{
		ID:                   id.String(),
		Name:                 name,
		Symbol:               DeriveSymbol(name),
		ContractAddress:      address,
		LaunchTime:           g.now(),
		MarketCap:            marketCap,
		LiquidityLocked:      in.LiquidityLocked,
		OwnershipRenounced:   in.OwnershipRenounced,
		TopHoldersPercentage: in.TopHoldersPercentage,
		Honeypot:             in.Honeypot,
		TradingEnabled:       in.TradingEnabled,
		RiskScore:            score,
		RugPullRisk:          level,
	}
}

// chance reports true with probability p.
func (g *Generator) chance(p float64) bool {
	return g.source.Float64() < p
}

// DeriveSymbol upper-cases the first MaxSymbolLen characters of name.
func DeriveSymbol(name string) string {
	runes := []rune(name)
	if len(runes) > MaxSymbolLen {
		runes = runes[:MaxSymbolLen]
	}
	return strings.ToUpper(string(runes))
}

// NewContractAddress reads AddressBytes from r and formats them as 0x-prefixed lowercase hex.
func NewContractAddress(r io.Reader) (string, error) {
	var buf [AddressBytes]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read address bytes: %w", err)
	}
	return AddressPrefix + hex.EncodeToString(buf[:]), nil
}

// Package terminal renders the coin window as a text dashboard.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/risk"
	"meme-coin-tracker/internal/storage"
)

// EmptyMessage is shown until the first coin arrives.
const EmptyMessage = "Scanning for new meme coins..."

const clearScreen = "\033[H\033[2J"

// Options configures a View.
type Options struct {
	Interval time.Duration
	// Clear redraws from the top of the terminal on every render.
	Clear bool
	Now   func() time.Time
}

// View writes dashboard frames to an io.Writer.
type View struct {
	w        io.Writer
	interval time.Duration
	clear    bool
	now      func() time.Time
	printer  *message.Printer
}

// NewView creates a view writing to w.
func NewView(w io.Writer, opts Options) *View {
	v := &View{
		w:        w,
		interval: opts.Interval,
		clear:    opts.Clear,
		now:      opts.Now,
		printer:  message.NewPrinter(language.English),
	}
	if v.now == nil {
		v.now = time.Now
	}
	return v
}

// Render writes one frame for snap.
func (v *View) Render(snap storage.Snapshot) error {
	_, err := io.WriteString(v.w, v.Frame(snap))
	return err
}

// Frame returns one frame for snap as a string.
func (v *View) Frame(snap storage.Snapshot) string {
	now := v.now()
	display := &strings.Builder{}
	if v.clear {
		display.WriteString(clearScreen)
	}

	display.WriteString("🚀 Meme Coin Rug-Pull Tracker\n")
	lastScan := "never"
	if !snap.LastUpdate.IsZero() {
		lastScan = RelativeTime(snap.LastUpdate, now)
	}
	fmt.Fprintf(display, "Scan interval: every %s | Coins tracked: %d | Last scan: %s\n",
		Every(v.interval), len(snap.Coins), lastScan)

	if len(snap.Coins) == 0 {
		fmt.Fprintf(display, "\n🔍 %s\nNew tokens will appear here every %s\n", EmptyMessage, Every(v.interval))
		return display.String()
	}

	summary := risk.Summarize(snap.Coins)
	parts := make([]string, 0, len(domain.RiskLevels))
	for _, level := range domain.RiskLevels {
		parts = append(parts, fmt.Sprintf("%s %s %d", risk.Emoji(level), level, summary.ByLevel[level]))
	}
	fmt.Fprintf(display, "%s | Avg score: %.1f\n\n", strings.Join(parts, "  "), summary.AverageScore)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Coin", "Risk", "Score", "Liquidity", "Ownership", "Top Holders",
		"Honeypot", "Trading", "Market Cap", "Launched", "Contract"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range snap.Coins {
		flags := risk.Labels(c)
		table.Append([]string{
			fmt.Sprintf("%s ($%s)", c.Name, c.Symbol),
			fmt.Sprintf("%s %s", risk.Emoji(c.RugPullRisk), c.RugPullRisk),
			fmt.Sprintf("%d/100", c.RiskScore),
			flags.Liquidity,
			flags.Ownership,
			fmt.Sprintf("%d%%", c.TopHoldersPercentage),
			flags.Honeypot,
			flags.Trading,
			v.MarketCap(c.MarketCap),
			RelativeTime(c.LaunchTime, now),
			c.ContractAddress,
		})
	}

	table.Render()
	return display.String()
}

// MarketCap formats a dollar amount with thousands separators, for example "$1,234,567".
func (v *View) MarketCap(n int64) string {
	return fmt.Sprintf("$%s", v.printer.Sprintf("%d", n))
}

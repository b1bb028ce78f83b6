package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"meme-coin-tracker/internal/domain"
	"meme-coin-tracker/internal/generator"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate coins without a scheduler and print them as JSON",
	RunE:  runSample,
}

func init() {
	sampleCmd.Flags().IntP("count", "n", 10, "Number of coins to generate")
}

func runSample(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("count")
	if n < 1 {
		return fmt.Errorf("--count must be positive, got %d", n)
	}

	gen := generator.New(generator.Options{
		Source: newSource(cfg.Seed),
		Names:  cfg.Names,
	})

	coins := make([]domain.CoinRecord, 0, n)
	for range n {
		coins = append(coins, gen.Generate())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(coins)
}

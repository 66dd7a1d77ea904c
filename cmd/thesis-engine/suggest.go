// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/items"
	"github.com/pdiddy/thesis-engine/internal/validation"
)

var suggestNoiseCmd = &cobra.Command{
	Use:   "suggest-noise",
	Short: "Suggest an item noise scale for a target Cronbach's alpha",
	Long: `Suggest-noise solves the Spearman-Brown relation for the inter-item
correlation that gives the target alpha with k items, and converts it into
the noise scale the item expander needs. Rounding and clipping lower the
achieved alpha slightly, so aim a little above the band you need.`,
	RunE: runSuggestNoise,
}

func runSuggestNoise(cmd *cobra.Command, args []string) error {
	alpha, _ := cmd.Flags().GetFloat64("alpha")
	k, _ := cmd.Flags().GetInt("items")

	noise := items.SuggestNoiseScale(alpha, k)
	if math.IsNaN(noise) {
		return fmt.Errorf("no noise scale for alpha %v with %d items: need 0 < alpha < 1 and at least 2 items", alpha, k)
	}
	fmt.Printf("target alpha:          %.2f (%s)\n", alpha, validation.ClassifyAlpha(alpha))
	fmt.Printf("items:                 %d\n", k)
	fmt.Printf("inter-item r:          %.3f\n", items.InterItemCorrelation(alpha, k))
	fmt.Printf("noise scale:           %.3f\n", noise)
	return nil
}

func init() {
	suggestNoiseCmd.Flags().Float64("alpha", 0.80, "target Cronbach's alpha")
	suggestNoiseCmd.Flags().Int("items", 5, "items in the subscale")

	rootCmd.AddCommand(suggestNoiseCmd)
}

package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cellar/internal/domain"
)

var (
	pairDish  string
	pairLimit int
	pairUser  string
	pairJSON  bool
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Recommend wines for a dish",
	Long: `Rank catalog wines for a dish. Scores blend a rule table keyed on dish
category and wine style with embedding similarity when embeddings exist.

Examples:
  cellar pair -q "grilled lamb with rosemary"
  cellar pair -q "oysters" --limit 3 --user ana --json`,
	RunE: runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)
	pairCmd.Flags().StringVarP(&pairDish, "query", "q", "", "dish description (required)")
	pairCmd.Flags().IntVarP(&pairLimit, "limit", "k", 0, "number of results (default from config)")
	pairCmd.Flags().StringVar(&pairUser, "user", "", "only consider wines in this user's inventory")
	pairCmd.Flags().BoolVar(&pairJSON, "json", false, "output as JSON")
	pairCmd.MarkFlagRequired("query")
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	st, err := openStore(ctx, GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	pairer, _, err := newPairer(st, embedder, cfg)
	if err != nil {
		return err
	}

	resp, err := pairer.Pair(ctx, domain.PairingQuery{Dish: pairDish, Limit: pairLimit, UserID: pairUser})
	if err != nil {
		return fmt.Errorf("pairing failed: %w", err)
	}

	if pairJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	printPairing(resp)
	return nil
}

func printPairing(resp *domain.PairingResponse) {
	if resp.Degraded {
		fmt.Printf("Note: semantic scores unavailable (%s)\n\n", resp.DegradedReason)
	}
	if len(resp.Results) == 0 {
		fmt.Printf("No wines to rank (%d scanned).\n", resp.TotalWinesScanned)
		return
	}

	fmt.Printf("Top %d of %d wines for: %s [%s]\n\n", len(resp.Results), resp.TotalWinesScanned, resp.Dish, resp.Category)
	for i, r := range resp.Results {
		fmt.Printf("--- [%d] %s (score: %.1f) ---\n", i+1, describeWine(r.Wine), r.Score.Total)
		if r.Score.HasSemantic {
			fmt.Printf("rules: %.1f  semantic: %.1f\n", r.Score.RuleBasedScore, r.Score.SemanticScore)
		}
		fmt.Println(r.Score.Explanation)
		fmt.Println()
	}
}

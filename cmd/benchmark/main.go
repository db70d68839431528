package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"cellar/config"
	"cellar/internal/adapter/embedding"
	"cellar/internal/adapter/pairing"
	"cellar/internal/adapter/store"
	"cellar/internal/domain"
	"cellar/internal/port"
	"cellar/internal/usecase"
)

// referenceDishes cover every food category at least once.
var referenceDishes = []string{
	"grilled ribeye steak",
	"roast chicken with herbs",
	"oysters on the half shell",
	"spaghetti carbonara",
	"aged comte and walnuts",
	"dark chocolate tart",
	"mushroom risotto",
	"spicy thai green curry",
	"toast",
}

func main() {
	dir := flag.String("dir", ".", "Path to cellar directory")
	dish := flag.String("q", "", "Single dish to test (default: reference dishes)")
	topK := flag.Int("k", 3, "Number of results per dish")
	ruleOnly := flag.Bool("rules-only", false, "Disable the embedding provider")
	flag.Parse()

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.NewBoltStore(config.CatalogDBPath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	wines, _ := st.Count(ctx)
	embedded, _ := st.CountEmbeddings(ctx)
	if wines == 0 {
		fmt.Fprintln(os.Stderr, "Catalog is empty - run 'cellar import' first")
		os.Exit(1)
	}

	var embedder port.Embedder
	if !*ruleOnly {
		embedder, err = setupEmbedding(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Semantic scoring not available: %v\n", err)
			embedder = nil
		}
	}

	scorer, err := pairing.NewScorer(cfg.Pairing.RuleWeight, cfg.Pairing.SemanticWeight)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid pairing weights: %v\n", err)
		os.Exit(1)
	}
	uc := usecase.NewPairUseCase(st, st, embedder, scorer, usecase.PairOptions{
		MaxLimit: cfg.Pairing.MaxLimit,
		Workers:  cfg.Pairing.Workers,
		DegradeOnProviderError: false,
	})

	fmt.Println("PAIRING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Wines: %d (embedded: %d)\n", wines, embedded)
	if embedder != nil {
		fmt.Printf("Model: %s (%s), dimension %d\n", embedder.ModelName(), cfg.Embedding.Provider, embedder.Dimension())
	} else {
		fmt.Println("Model: none - rule table only")
	}
	fmt.Println()

	dishes := referenceDishes
	if *dish != "" {
		dishes = []string{*dish}
	}

	var (
		latencies []time.Duration
		agree     int
		semantic  int
	)
	for _, d := range dishes {
		start := time.Now()
		resp, err := uc.Pair(ctx, domain.PairingQuery{Dish: d, Limit: *topK})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pairing %q failed: %v\n", d, err)
			os.Exit(1)
		}
		latencies = append(latencies, elapsed)

		fmt.Printf("%s [%s] %s\n", d, resp.Category, elapsed.Round(time.Microsecond))
		fmt.Println(strings.Repeat("-", 70))
		for i, r := range resp.Results {
			fmt.Printf("%d. [%s %.1f] %s (%s)\n", i+1, rating(r.Score.Total), r.Score.Total, r.Wine.Name, r.Wine.Type)
			if r.Score.HasSemantic {
				fmt.Printf("   rules %.1f  semantic %.1f\n", r.Score.RuleBasedScore, r.Score.SemanticScore)
			}
		}
		fmt.Println()

		if top, ok := topByRule(resp.Results); ok && resp.Results[0].Score.HasSemantic {
			semantic++
			if top == resp.Results[0].Wine.ID {
				agree++
			}
		}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Dishes:          %d\n", len(dishes))
	fmt.Printf("  Median latency:  %s\n", latencies[len(latencies)/2].Round(time.Microsecond))
	fmt.Printf("  Max latency:     %s\n", latencies[len(latencies)-1].Round(time.Microsecond))
	if semantic > 0 {
		fmt.Printf("  Rule/blend top-1 agreement: %d/%d\n", agree, semantic)
	}
}

// topByRule returns the id of the result with the highest rule score.
func topByRule(results []domain.ScoredWine) (string, bool) {
	if len(results) == 0 {
		return "", false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Score.RuleBasedScore > best.Score.RuleBasedScore {
			best = r
		}
	}
	return best.Wine.ID, true
}

func rating(score float64) string {
	switch {
	case score >= 85:
		return "EXCELLENT"
	case score >= 70:
		return "GOOD"
	case score >= 50:
		return "OK"
	default:
		return "POOR"
	}
}

func setupEmbedding(cfg *config.Config) (port.Embedder, error) {
	if !cfg.Embedding.Enabled {
		return nil, fmt.Errorf("embeddings not enabled in config")
	}

	switch cfg.Embedding.Provider {
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, embedding.WithDimension(cfg.Embedding.Dimension))
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, embedding.WithDimension(cfg.Embedding.Dimension))
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Embedding.Provider)
	}
}

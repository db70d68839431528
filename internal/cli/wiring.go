package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"cellar/config"
	"cellar/internal/adapter/cache"
	"cellar/internal/adapter/embedding"
	"cellar/internal/adapter/pairing"
	"cellar/internal/adapter/resolver"
	"cellar/internal/adapter/store"
	"cellar/internal/logging"
	"cellar/internal/port"
	"cellar/internal/usecase"
)

// openStore opens the catalog below dir and brings its schema up to date.
func openStore(ctx context.Context, dir string, cfg *config.Config) (*store.BoltStore, error) {
	if err := config.EnsureCellarDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .cellar directory: %w", err)
	}

	st, err := store.NewBoltStore(config.CatalogDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	res, err := st.Migrate(ctx, cfg.Embedding)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	if res.NeedsMigration || res.ClearEmbeddings {
		logging.Info().
			Int("from", res.OldVersion).
			Int("to", res.NewVersion).
			Bool("embeddings_cleared", res.ClearEmbeddings).
			Msg(res.Reason)
	}
	return st, nil
}

// newEmbedder builds the configured provider behind a circuit breaker.
// It returns nil when embeddings are disabled.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	ec := cfg.Embedding
	if !ec.Enabled {
		return nil, nil
	}

	opts := []embedding.Option{
		embedding.WithTimeout(ec.Timeout),
		embedding.WithBatchSize(ec.BatchSize),
		embedding.WithDimension(ec.Dimension),
	}

	var (
		provider port.Embedder
		err      error
	)
	switch ec.Provider {
	case "openai":
		provider, err = embedding.NewOpenAIEmbedder(ec.APIKeyEnv, ec.Model, opts...)
	case "jina":
		provider, err = embedding.NewJinaEmbedder(ec.APIKeyEnv, ec.Model, opts...)
	case "ollama":
		provider, err = embedding.NewOllamaEmbedder(ec.Model, ec.BaseURL, opts...)
	case "compatible":
		provider, err = embedding.NewOpenAICompatibleEmbedder(ec.APIKeyEnv, ec.Model, ec.BaseURL, opts...)
	case "mock":
		return embedding.NewMockEmbedder(ec.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ec.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	settings := embedding.DefaultBreakerSettings()
	settings.MinRequests = ec.Breaker.MinRequests
	settings.FailureRatio = ec.Breaker.FailureRatio
	if ec.Breaker.OpenTimeout > 0 {
		settings.OpenTimeout = ec.Breaker.OpenTimeout
	}
	return embedding.NewBreakerEmbedder(provider, settings), nil
}

func newResolver(cfg *config.Config) *resolver.Resolver {
	return resolver.New(cfg.Resolve.Threshold, resolver.WithAccentFolding(cfg.Resolve.FoldAccents))
}

// newPairer wires the pairing use case, wrapped in a response cache when
// one is configured.
func newPairer(st *store.BoltStore, embedder port.Embedder, cfg *config.Config) (port.Pairer, *cache.CachedPairer, error) {
	scorer, err := pairing.NewScorer(cfg.Pairing.RuleWeight, cfg.Pairing.SemanticWeight)
	if err != nil {
		return nil, nil, err
	}

	uc := usecase.NewPairUseCase(st, st, embedder, scorer, usecase.PairOptions{
		DefaultLimit:           cfg.Pairing.DefaultLimit,
		MaxLimit:               cfg.Pairing.MaxLimit,
		MaxDishLength:          cfg.Pairing.MaxDishLength,
		Workers:                cfg.Pairing.Workers,
		DegradeOnProviderError: cfg.Pairing.DegradeOnProviderError,
	})
	if cfg.Pairing.CacheSize <= 0 {
		return uc, nil, nil
	}

	cached := cache.NewCachedPairer(uc, cache.NewPairingCache(cfg.Pairing.CacheSize, cfg.Pairing.CacheTTL))
	return cached, cached, nil
}

// newThrottle paces batch calls to the embedding provider.
func newThrottle(cfg *config.Config) port.Throttle {
	if cfg.Batch.Interval <= 0 {
		return nil
	}
	burst := max(cfg.Batch.Burst, 1)
	return rate.NewLimiter(rate.Every(cfg.Batch.Interval), burst)
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

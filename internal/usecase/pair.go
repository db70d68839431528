package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"cellar/internal/adapter/pairing"
	"cellar/internal/adapter/ranking"
	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/metrics"
	"cellar/internal/port"
	"cellar/internal/validation"
)

// PairOptions bounds pairing requests.
type PairOptions struct {
	DefaultLimit           int
	MaxLimit               int
	MaxDishLength          int
	Workers                int
	DegradeOnProviderError bool
}

// PairUseCase ranks catalog wines against a dish.
type PairUseCase struct {
	catalog   port.CatalogStore
	inventory port.InventoryStore
	embedder  port.Embedder
	scorer    *pairing.Scorer
	opts      PairOptions
}

// NewPairUseCase creates a new pairing use case. embedder may be nil, in
// which case wines are ranked by the rule table alone.
func NewPairUseCase(
	catalog port.CatalogStore,
	inventory port.InventoryStore,
	embedder port.Embedder,
	scorer *pairing.Scorer,
	opts PairOptions,
) *PairUseCase {
	if opts.MaxLimit < 1 {
		opts.MaxLimit = 50
	}
	if opts.DefaultLimit < 1 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = min(10, opts.MaxLimit)
	}
	if opts.MaxDishLength < 1 {
		opts.MaxDishLength = 500
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &PairUseCase{
		catalog:   catalog,
		inventory: inventory,
		embedder:  embedder,
		scorer:    scorer,
		opts:      opts,
	}
}

// Pair scores every candidate wine and returns the best matches. With a
// UserID only wines in that user's inventory are considered.
func (u *PairUseCase) Pair(ctx context.Context, q domain.PairingQuery) (*domain.PairingResponse, error) {
	start := time.Now()
	defer func() { metrics.PairingDuration.Observe(time.Since(start).Seconds()) }()

	q, err := u.normalize(q)
	if err != nil {
		metrics.PairingRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}

	resp, err := u.pair(ctx, q)
	switch {
	case err != nil:
		metrics.PairingRequests.WithLabelValues("error").Inc()
	case resp.Degraded:
		metrics.PairingRequests.WithLabelValues("degraded").Inc()
	default:
		metrics.PairingRequests.WithLabelValues("ok").Inc()
	}
	return resp, err
}

func (u *PairUseCase) normalize(q domain.PairingQuery) (domain.PairingQuery, error) {
	q.Dish = strings.TrimSpace(q.Dish)
	q.UserID = strings.TrimSpace(q.UserID)

	if q.Dish == "" {
		return q, domain.NewValidationError("dish", "dish description must not be empty")
	}
	if n := utf8.RuneCountInString(q.Dish); n > u.opts.MaxDishLength {
		return q, domain.NewValidationError("dish", fmt.Sprintf("dish description is %d characters, the maximum is %d", n, u.opts.MaxDishLength))
	}

	switch {
	case q.Limit <= 0:
		q.Limit = u.opts.DefaultLimit
	case q.Limit > u.opts.MaxLimit:
		q.Limit = u.opts.MaxLimit
	}

	if err := validation.Struct(&q); err != nil {
		return q, err
	}
	return q, nil
}

func (u *PairUseCase) pair(ctx context.Context, q domain.PairingQuery) (*domain.PairingResponse, error) {
	resp := &domain.PairingResponse{
		Dish:     q.Dish,
		Category: u.scorer.Classify(q.Dish),
		Results:  []domain.ScoredWine{},
	}

	wines, err := u.candidates(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	resp.TotalWinesScanned = len(wines)
	metrics.PairingCandidates.Observe(float64(len(wines)))
	if len(wines) == 0 {
		return resp, nil
	}

	dishEmbedding, err := u.embedDish(ctx, q.Dish, wines)
	if err != nil {
		if !domain.IsProviderError(err) || !u.opts.DegradeOnProviderError {
			return nil, fmt.Errorf("failed to embed dish: %w", err)
		}
		resp.Degraded = true
		resp.DegradedReason = err.Error()
		logging.Warn().Err(err).Str("dish", q.Dish).Msg("embedding provider unavailable, ranking by rules only")
	}

	scored := make([]domain.ScoredWine, len(wines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Workers)
	for i := range wines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := u.scorer.Score(q.Dish, resp.Category, wines[i], dishEmbedding)
			if err != nil {
				return err
			}
			wine := wines[i]
			wine.Embedding = nil
			scored[i] = domain.ScoredWine{Wine: wine, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.Results = ranking.Rank(scored, q.Limit)
	return resp, nil
}

func (u *PairUseCase) candidates(ctx context.Context, userID string) ([]domain.CatalogWine, error) {
	filter := domain.WineFilter{}
	if userID != "" {
		if u.inventory == nil {
			return nil, domain.NewValidationError("user_id", "inventories are not available")
		}
		ids, err := u.inventory.InventoryWineIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		filter.IDs = ids
	}

	wines, err := u.catalog.GetWinesWithEmbeddings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load wines: %w", err)
	}
	return wines, nil
}

// embedDish embeds the dish once per request. It returns nil without
// calling the provider when no candidate could use the vector.
func (u *PairUseCase) embedDish(ctx context.Context, dish string, wines []domain.CatalogWine) ([]float32, error) {
	if u.embedder == nil {
		return nil, nil
	}
	needed := false
	for i := range wines {
		if wines[i].HasEmbedding() {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}

	vectors, err := u.embedder.Embed(ctx, []string{dish})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: provider returned %d vectors for one dish", domain.ErrInvalidVector, len(vectors))
	}
	if err := pairing.ValidateVector(vectors[0]); err != nil {
		return nil, err
	}
	return vectors[0], nil
}

package usecase

import (
	"context"
	"fmt"

	"cellar/internal/adapter/resolver"
	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/metrics"
	"cellar/internal/port"
	"cellar/internal/validation"
)

// ResolveUseCase maps an observed wine onto the catalog.
type ResolveUseCase struct {
	catalog  port.CatalogStore
	resolver *resolver.Resolver
}

// NewResolveUseCase creates a new resolve use case.
func NewResolveUseCase(catalog port.CatalogStore, r *resolver.Resolver) *ResolveUseCase {
	return &ResolveUseCase{catalog: catalog, resolver: r}
}

// Resolve returns the matching catalog wine, or domain.NoMatch when the
// observation describes a wine the catalog does not know yet.
func (u *ResolveUseCase) Resolve(ctx context.Context, target domain.WineDescriptor) (domain.MatchResult, error) {
	if err := validation.Struct(&target); err != nil {
		return domain.NoMatch, err
	}

	candidates, err := u.catalog.FindCandidates(ctx, candidateHint(target))
	if err != nil {
		return domain.NoMatch, fmt.Errorf("failed to load candidates: %w", err)
	}

	result := u.resolver.Resolve(target, candidates)
	if result.Matched() {
		metrics.ResolveOutcomes.WithLabelValues("matched").Inc()
		logging.Debug().Str("name", target.Name).Str("wine", result.Wine.ID).Float64("score", result.Score).Msg("resolved observation")
	} else {
		metrics.ResolveOutcomes.WithLabelValues("new").Inc()
		logging.Debug().Str("name", target.Name).Int("candidates", len(candidates)).Msg("no catalog match")
	}
	return result, nil
}

func candidateHint(d domain.WineDescriptor) string {
	return d.Name + " " + d.ProducerName
}

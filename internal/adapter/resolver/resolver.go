// Package resolver decides whether an observed wine is already in the
// catalog.
package resolver

import (
	"cellar/internal/adapter/analyzer"
	"cellar/internal/domain"
)

// DefaultThreshold is the combined similarity a candidate must exceed.
const DefaultThreshold = 0.85

// Resolver matches wine descriptors against catalog candidates using
// name and producer edit-distance similarity plus an exact vintage check.
type Resolver struct {
	threshold   float64
	foldAccents bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAccentFolding strips diacritics before comparing names.
func WithAccentFolding(enabled bool) Option {
	return func(r *Resolver) {
		r.foldAccents = enabled
	}
}

// New creates a Resolver. A threshold outside (0,1) falls back to
// DefaultThreshold.
func New(threshold float64, opts ...Option) *Resolver {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	r := &Resolver{threshold: threshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the configured match threshold.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Score returns the combined name/producer similarity of two descriptors.
// Vintage is not considered.
func (r *Resolver) Score(target, candidate domain.WineDescriptor) float64 {
	nameScore := analyzer.Similarity(r.prepare(candidate.Name), r.prepare(target.Name))
	producerScore := analyzer.Similarity(r.prepare(candidate.ProducerName), r.prepare(target.ProducerName))
	return (nameScore + producerScore) / 2
}

// Match returns the index of the best eligible candidate and its score, or
// -1 when no candidate is eligible. Candidates tying on score resolve to
// the earliest one.
func (r *Resolver) Match(target domain.WineDescriptor, candidates []domain.WineDescriptor) (int, float64) {
	best := -1
	bestScore := 0.0

	for i, c := range candidates {
		if target.HasVintage() && !target.VintageEquals(c) {
			continue
		}
		combined := r.Score(target, c)
		if combined <= r.threshold {
			continue
		}
		if best == -1 || combined > bestScore {
			best = i
			bestScore = combined
		}
	}

	if best == -1 {
		return -1, 0
	}
	return best, bestScore
}

// Resolve finds the catalog wine that target refers to. It returns
// domain.NoMatch when target should become a new catalog entry.
func (r *Resolver) Resolve(target domain.WineDescriptor, candidates []domain.CatalogWine) domain.MatchResult {
	descriptors := make([]domain.WineDescriptor, len(candidates))
	for i := range candidates {
		descriptors[i] = candidates[i].WineDescriptor
	}

	idx, score := r.Match(target, descriptors)
	if idx < 0 {
		return domain.NoMatch
	}

	wine := candidates[idx]
	return domain.MatchResult{Wine: &wine, Score: score}
}

func (r *Resolver) prepare(s string) string {
	if r.foldAccents {
		return analyzer.FoldAccents(s)
	}
	return s
}

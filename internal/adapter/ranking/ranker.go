// Package ranking orders scored wines into a recommendation list.
package ranking

import (
	"sort"

	"cellar/internal/domain"
)

// Rank returns the top limit wines ordered by total score. Ties fall back
// to the semantic score and then to the wine id so equal inputs always
// produce the same order. The input slice is left untouched.
func Rank(scored []domain.ScoredWine, limit int) []domain.ScoredWine {
	if limit <= 0 || len(scored) == 0 {
		return []domain.ScoredWine{}
	}

	ranked := make([]domain.ScoredWine, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if a.Score.SemanticScore != b.Score.SemanticScore {
			return a.Score.SemanticScore > b.Score.SemanticScore
		}
		return a.Wine.ID < b.Wine.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Package pairing scores catalog wines against a dish by blending a static
// food/wine rule table with embedding similarity.
package pairing

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"cellar/internal/adapter/analyzer"
	"cellar/internal/domain"
)

const (
	// DefaultRuleWeight and DefaultSemanticWeight are the blend weights
	// used when none are configured.
	DefaultRuleWeight     = 0.4
	DefaultSemanticWeight = 0.6

	// PairingNotesBonus is added when the wine's listed food pairings
	// lexically match the dish.
	PairingNotesBonus = 10.0

	pairingNotesMinSimilarity = 0.8
	pairingNotesMinRunes      = 4
)

// Scorer computes PairingScores. It holds no per-query state and is safe
// for concurrent use.
type Scorer struct {
	ruleWeight     float64
	semanticWeight float64
	classifier     *Classifier
}

// NewScorer validates the blend weights and creates a Scorer. Weights must
// sum to 1 and the semantic weight must be at least the rule weight.
func NewScorer(ruleWeight, semanticWeight float64) (*Scorer, error) {
	if ruleWeight < 0 || semanticWeight < 0 {
		return nil, fmt.Errorf("pairing weights must be non-negative (rule=%v, semantic=%v)", ruleWeight, semanticWeight)
	}
	if math.Abs(ruleWeight+semanticWeight-1) > 1e-9 {
		return nil, fmt.Errorf("pairing weights must sum to 1 (rule=%v, semantic=%v)", ruleWeight, semanticWeight)
	}
	if semanticWeight < ruleWeight {
		return nil, fmt.Errorf("semantic weight %v must not be lower than rule weight %v", semanticWeight, ruleWeight)
	}
	return &Scorer{
		ruleWeight:     ruleWeight,
		semanticWeight: semanticWeight,
		classifier:     NewClassifier(),
	}, nil
}

// Classify derives the FoodCategory of dish.
func (s *Scorer) Classify(dish string) domain.FoodCategory {
	return s.classifier.Classify(dish)
}

// Score rates wine against dish. The semantic signal is only blended in
// when both dishEmbedding and the wine's embedding are present; otherwise
// Total equals RuleBasedScore.
func (s *Scorer) Score(dish string, category domain.FoodCategory, wine domain.CatalogWine, dishEmbedding []float32) (domain.PairingScore, error) {
	breakdown := make(map[string]float64)

	base, reason := baseRule(category, wine.Type)
	breakdown[domain.FactorRuleBase] = base
	raw := base

	var notes []string
	if wine.Type != domain.WineTypeUnknown {
		for _, adj := range secondaryRules(category, wine.Enrichment) {
			breakdown[adj.factor] = adj.value
			raw += adj.value
			notes = append(notes, adj.note)
		}
	}

	if wine.Enrichment != nil {
		if pairing, ok := s.matchPairingNotes(dish, wine.Enrichment.FoodPairings); ok {
			breakdown[domain.FactorPairingNotes] = PairingNotesBonus
			raw += PairingNotesBonus
			notes = append(notes, fmt.Sprintf("tasting notes recommend it with %s", pairing))
		}
	}

	rule := math.Max(0, math.Min(100, raw))
	if rule != raw {
		breakdown[domain.FactorClamp] = rule - raw
	}

	score := domain.PairingScore{
		Total:          rule,
		RuleBasedScore: rule,
		Breakdown:      breakdown,
		PairingReason:  reason,
	}

	if len(dishEmbedding) > 0 && wine.HasEmbedding() {
		cos, err := Cosine(dishEmbedding, wine.Embedding)
		if err != nil {
			return domain.PairingScore{}, fmt.Errorf("semantic score for wine %s: %w", wine.ID, err)
		}
		semantic := rescale(cos)
		score.SemanticScore = semantic
		score.HasSemantic = true
		score.Total = s.ruleWeight*rule + s.semanticWeight*semantic
		breakdown[domain.FactorSemantic] = semantic
		breakdown[domain.FactorRuleWeight] = s.ruleWeight
		breakdown[domain.FactorSemanticWeight] = s.semanticWeight
	}

	score.Explanation = s.explain(reason, notes, score)
	return score, nil
}

func (s *Scorer) explain(reason string, notes []string, score domain.PairingScore) string {
	parts := append([]string{reason}, notes...)
	text := strings.Join(parts, "; ") + "."
	if score.HasSemantic && s.semanticWeight*score.SemanticScore > s.ruleWeight*score.RuleBasedScore {
		text += " Similarity between the dish description and this wine's profile also contributed."
	}
	return text
}

// matchPairingNotes reports the first listed food pairing that shares a
// near-identical word with the dish. Edit-distance tolerance absorbs
// typos and inflections the tokenizer does not fold.
func (s *Scorer) matchPairingNotes(dish string, pairings []string) (string, bool) {
	if len(pairings) == 0 {
		return "", false
	}
	dishTokens := significant(s.classifier.Tokens(dish))
	if len(dishTokens) == 0 {
		return "", false
	}

	for _, p := range pairings {
		for _, pt := range significant(s.classifier.Tokens(p)) {
			for _, dt := range dishTokens {
				if analyzer.Similarity(pt, dt) >= pairingNotesMinSimilarity {
					return p, true
				}
			}
		}
	}
	return "", false
}

func significant(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= pairingNotesMinRunes {
			out = append(out, t)
		}
	}
	return out
}

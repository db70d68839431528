package domain

import (
	"strings"
	"time"
)

// WineDescriptor is the identity of a wine as observed on a label or
// stored in the catalog.
type WineDescriptor struct {
	Name         string `json:"name" yaml:"name" validate:"max=200"`
	ProducerName string `json:"producer_name" yaml:"producer" validate:"max=200"`
	Vintage      *int   `json:"vintage,omitempty" yaml:"vintage,omitempty" validate:"omitempty,min=1000,max=2200"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty" validate:"max=100"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty" validate:"max=100"`
	Grape        string `json:"grape,omitempty" yaml:"grape,omitempty" validate:"max=100"`
}

// HasVintage reports whether a vintage year was supplied.
func (d WineDescriptor) HasVintage() bool {
	return d.Vintage != nil
}

// VintageEquals reports whether both descriptors carry the same vintage.
// Two non-vintage descriptors are considered equal.
func (d WineDescriptor) VintageEquals(other WineDescriptor) bool {
	if d.Vintage == nil || other.Vintage == nil {
		return d.Vintage == nil && other.Vintage == nil
	}
	return *d.Vintage == *other.Vintage
}

// Year is a convenience constructor for an optional vintage.
func Year(y int) *int {
	return &y
}

// WineType is the style of a wine used by the pairing rule table.
type WineType string

const (
	WineTypeUnknown   WineType = ""
	WineTypeRed       WineType = "red"
	WineTypeWhite     WineType = "white"
	WineTypeRose      WineType = "rose"
	WineTypeSparkling WineType = "sparkling"
	WineTypeDessert   WineType = "dessert"
	WineTypeFortified WineType = "fortified"
)

// ParseWineType maps free-form style names onto a WineType.
func ParseWineType(s string) WineType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "rouge", "tinto", "rosso":
		return WineTypeRed
	case "white", "blanc", "blanco", "bianco":
		return WineTypeWhite
	case "rose", "rosé", "rosado", "rosato":
		return WineTypeRose
	case "sparkling", "champagne", "cava", "prosecco", "cremant", "crémant", "sekt":
		return WineTypeSparkling
	case "dessert", "sweet", "late harvest", "ice wine", "icewine":
		return WineTypeDessert
	case "fortified", "port", "sherry", "madeira", "marsala":
		return WineTypeFortified
	default:
		return WineTypeUnknown
	}
}

// EnrichmentPayload holds structured tasting and pairing attributes.
type EnrichmentPayload struct {
	Summary      string   `json:"summary,omitempty" yaml:"summary,omitempty" validate:"max=4000"`
	TastingNotes string   `json:"tasting_notes,omitempty" yaml:"tasting_notes,omitempty" validate:"max=4000"`
	Sweetness    string   `json:"sweetness,omitempty" yaml:"sweetness,omitempty" validate:"omitempty,oneof=dry off-dry medium sweet"`
	Body         string   `json:"body,omitempty" yaml:"body,omitempty" validate:"omitempty,oneof=light medium full"`
	Acidity      string   `json:"acidity,omitempty" yaml:"acidity,omitempty" validate:"omitempty,oneof=low medium high"`
	Tannin       string   `json:"tannin,omitempty" yaml:"tannin,omitempty" validate:"omitempty,oneof=low medium high"`
	Aromas       []string `json:"aromas,omitempty" yaml:"aromas,omitempty" validate:"max=32,dive,max=64"`
	FoodPairings []string `json:"food_pairings,omitempty" yaml:"food_pairings,omitempty" validate:"max=32,dive,max=64"`
	ServingTempC *float64 `json:"serving_temp_c,omitempty" yaml:"serving_temp_c,omitempty" validate:"omitempty,min=0,max=25"`
}

// CatalogWine is a persisted catalog entry.
type CatalogWine struct {
	ID string `json:"id"`
	WineDescriptor
	Type       WineType           `json:"type,omitempty"`
	Enrichment *EnrichmentPayload `json:"enrichment,omitempty"`
	Embedding  []float32          `json:"-"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// HasEmbedding reports whether an embedding vector is attached.
func (w CatalogWine) HasEmbedding() bool {
	return len(w.Embedding) > 0
}

// MatchResult is the outcome of entity resolution. The zero value means
// no catalog entry matched and a new wine should be created.
type MatchResult struct {
	Wine  *CatalogWine `json:"wine,omitempty"`
	Score float64      `json:"score"`
}

// NoMatch is the explicit "new entity" outcome.
var NoMatch = MatchResult{}

// Matched reports whether a catalog wine was found.
func (m MatchResult) Matched() bool {
	return m.Wine != nil
}

// PairingQuery is a dish description plus a result limit.
type PairingQuery struct {
	Dish   string `json:"dish" validate:"required"`
	Limit  int    `json:"limit" validate:"min=0"`
	UserID string `json:"user_id,omitempty" validate:"max=128"`
}

// FoodCategory is the coarse dish class driving the rule table.
type FoodCategory string

const (
	FoodRedMeat    FoodCategory = "red-meat"
	FoodPoultry    FoodCategory = "poultry"
	FoodSeafood    FoodCategory = "seafood"
	FoodPasta      FoodCategory = "pasta"
	FoodCheese     FoodCategory = "cheese"
	FoodDessert    FoodCategory = "dessert"
	FoodVegetarian FoodCategory = "vegetarian"
	FoodSpicy      FoodCategory = "spicy"
	FoodOther      FoodCategory = "other"
)

// Breakdown keys recorded by the pairing scorer.
const (
	FactorRuleBase       = "rule.base"
	FactorSweetness      = "rule.sweetness"
	FactorBody           = "rule.body"
	FactorAcidity        = "rule.acidity"
	FactorTannin         = "rule.tannin"
	FactorPairingNotes   = "rule.pairing_notes"
	FactorClamp          = "rule.clamp"
	FactorSemantic       = "semantic"
	FactorRuleWeight     = "weight.rule"
	FactorSemanticWeight = "weight.semantic"
)

// PairingScore is the scored fit of one wine against one dish.
type PairingScore struct {
	Total          float64            `json:"total"`
	RuleBasedScore float64            `json:"rule_based_score"`
	SemanticScore  float64            `json:"semantic_score"`
	HasSemantic    bool               `json:"has_semantic"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Explanation    string             `json:"explanation"`
	PairingReason  string             `json:"pairing_reason"`
}

// Reconstruct recomputes the total from the breakdown.
func (s PairingScore) Reconstruct() float64 {
	var rule float64
	for k, v := range s.Breakdown {
		if strings.HasPrefix(k, "rule.") {
			rule += v
		}
	}
	ws, ok := s.Breakdown[FactorSemanticWeight]
	if !ok {
		return rule
	}
	return s.Breakdown[FactorRuleWeight]*rule + ws*s.Breakdown[FactorSemantic]
}

// ScoredWine pairs a catalog wine with its score for one query.
type ScoredWine struct {
	Wine  CatalogWine  `json:"wine"`
	Score PairingScore `json:"score"`
}

// PairingResponse is the ranked output for one dish.
type PairingResponse struct {
	Dish              string       `json:"dish"`
	Category          FoodCategory `json:"category"`
	Results           []ScoredWine `json:"results"`
	TotalWinesScanned int          `json:"total_wines_scanned"`
	Degraded          bool         `json:"degraded,omitempty"`
	DegradedReason    string       `json:"degraded_reason,omitempty"`
}

// ItemError records a single failed item in a batch.
type ItemError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult summarizes a batch embedding run.
type BatchResult struct {
	Processed int         `json:"processed"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// WineFilter narrows catalog listings.
type WineFilter struct {
	IDs           []string
	Types         []WineType
	WithEmbedding bool
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

func sampleResponse() *domain.PairingResponse {
	return &domain.PairingResponse{
		Dish:     "duck confit",
		Category: domain.FoodPoultry,
		Results: []domain.ScoredWine{{
			Wine: domain.CatalogWine{
				ID:             "w1",
				WineDescriptor: domain.WineDescriptor{Name: "Cahors", ProducerName: "Clos Triguedina", Vintage: domain.Year(2017)},
				Type:           domain.WineTypeRed,
				Enrichment:     &domain.EnrichmentPayload{Aromas: []string{"plum", "violet"}},
			},
			Score: domain.PairingScore{
				Total:          72.5,
				RuleBasedScore: 65,
				SemanticScore:  77.5,
				HasSemantic:    true,
				Explanation:    "Works well: red wine suits poultry.",
				PairingReason:  "Works well: red wine suits poultry",
			},
		}},
		TotalWinesScanned: 4,
	}
}

func TestRenderCard_Text(t *testing.T) {
	out, err := renderCard("templates/card.txt", sampleResponse())
	require.NoError(t, err)

	assert.Contains(t, out, "Dish: duck confit")
	assert.Contains(t, out, "1. Cahors - Clos Triguedina 2017 (red)")
	assert.Contains(t, out, "Score 72.5 (rules 65.0, semantic 77.5)")
	assert.Contains(t, out, "Aromas: plum, violet")
}

func TestRenderCard_Markdown(t *testing.T) {
	out, err := renderCard("templates/card.md", sampleResponse())
	require.NoError(t, err)

	assert.Contains(t, out, "# Pairing for *duck confit*")
	assert.Contains(t, out, "| 1 | Cahors - Clos Triguedina 2017 (red) | 72.5 | Works well: red wine suits poultry |")
}

func TestRenderCard_Empty(t *testing.T) {
	out, err := renderCard("templates/card.txt", &domain.PairingResponse{Dish: "toast", Category: domain.FoodOther})
	require.NoError(t, err)
	assert.Contains(t, out, "No wines ranked.")
}

func TestDescribeWine_NonVintage(t *testing.T) {
	w := domain.CatalogWine{WineDescriptor: domain.WineDescriptor{Name: "Grande Cuvee", ProducerName: "Krug"}, Type: domain.WineTypeSparkling}
	assert.Equal(t, "Grande Cuvee - Krug NV (sparkling)", describeWine(w))
}

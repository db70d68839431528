package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

func wine(id, name, producer string, vintage *int) domain.CatalogWine {
	return domain.CatalogWine{
		ID: id,
		WineDescriptor: domain.WineDescriptor{
			Name:         name,
			ProducerName: producer,
			Vintage:      vintage,
		},
	}
}

func TestResolve_ExactVintageFilter(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Barolo", ProducerName: "Gaja", Vintage: domain.Year(2018)}
	candidates := []domain.CatalogWine{
		wine("w-2018", "Barolo", "Gaja", domain.Year(2018)),
		wine("w-2015", "Barolo", "Gaja", domain.Year(2015)),
	}

	res := r.Resolve(target, candidates)
	require.True(t, res.Matched())
	assert.Equal(t, "w-2018", res.Wine.ID)
	assert.Equal(t, 1.0, res.Score)

	// Order must not matter for the vintage filter.
	res = r.Resolve(target, []domain.CatalogWine{candidates[1], candidates[0]})
	require.True(t, res.Matched())
	assert.Equal(t, "w-2018", res.Wine.ID)
}

func TestResolve_NoVintageOnTargetMatchesAny(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Barolo", ProducerName: "Gaja"}
	res := r.Resolve(target, []domain.CatalogWine{
		wine("w-2015", "Barolo", "Gaja", domain.Year(2015)),
	})
	require.True(t, res.Matched())
	assert.Equal(t, "w-2015", res.Wine.ID)
}

func TestResolve_VintageMissingOnCandidate(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Barolo", ProducerName: "Gaja", Vintage: domain.Year(2018)}
	res := r.Resolve(target, []domain.CatalogWine{wine("nv", "Barolo", "Gaja", nil)})
	assert.False(t, res.Matched())
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	r := New(DefaultThreshold)

	// Name identical (1.0); producer has 3 substitutions out of 10 runes
	// (0.7); combined is exactly 0.85.
	target := domain.WineDescriptor{Name: "Sassicaia", ProducerName: "abcdefghij"}
	atBoundary := wine("edge", "Sassicaia", "abcdefgxyz", nil)
	require.Equal(t, 0.85, r.Score(target, atBoundary.WineDescriptor))

	res := r.Resolve(target, []domain.CatalogWine{atBoundary})
	assert.False(t, res.Matched(), "combined == threshold must not match")

	// 3 of 4 runes kept on the producer: combined 0.875.
	target = domain.WineDescriptor{Name: "Sassicaia", ProducerName: "abcd"}
	above := wine("above", "Sassicaia", "abcx", nil)
	res = r.Resolve(target, []domain.CatalogWine{above})
	require.True(t, res.Matched())
	assert.InDelta(t, 0.875, res.Score, 1e-12)
}

func TestResolve_CustomThresholdJustAbove(t *testing.T) {
	target := domain.WineDescriptor{Name: "Sassicaia", ProducerName: "abcdefghij"}
	candidate := wine("edge", "Sassicaia", "abcdefgxyz", nil)

	res := New(0.849).Resolve(target, []domain.CatalogWine{candidate})
	assert.True(t, res.Matched())

	res = New(0.851).Resolve(target, []domain.CatalogWine{candidate})
	assert.False(t, res.Matched())
}

func TestResolve_TieKeepsFirst(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Tignanello", ProducerName: "Antinori"}
	res := r.Resolve(target, []domain.CatalogWine{
		wine("first", "Tignanello", "Antinori", domain.Year(2019)),
		wine("second", "Tignanello", "Antinori", domain.Year(2020)),
	})
	require.True(t, res.Matched())
	assert.Equal(t, "first", res.Wine.ID)
}

func TestResolve_PicksHighestScore(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Chateau Margaux", ProducerName: "Chateau Margaux"}
	res := r.Resolve(target, []domain.CatalogWine{
		wine("typo", "Chateu Margaux", "Chateau Margaux", nil),
		wine("exact", "Chateau Margaux", "Chateau Margaux", nil),
	})
	require.True(t, res.Matched())
	assert.Equal(t, "exact", res.Wine.ID)
}

func TestResolve_OCRNoise(t *testing.T) {
	r := New(DefaultThreshold)

	target := domain.WineDescriptor{Name: "Chateu Margaux", ProducerName: "Chateau Margaux", Vintage: domain.Year(2015)}
	res := r.Resolve(target, []domain.CatalogWine{
		wine("cm15", "Chateau Margaux", "Chateau Margaux", domain.Year(2015)),
		wine("pav", "Pavillon Rouge", "Chateau Margaux", domain.Year(2015)),
	})
	require.True(t, res.Matched())
	assert.Equal(t, "cm15", res.Wine.ID)
	assert.Greater(t, res.Score, 0.95)
}

func TestResolve_EmptyCandidates(t *testing.T) {
	r := New(DefaultThreshold)

	res := r.Resolve(domain.WineDescriptor{Name: "Barolo", ProducerName: "Gaja"}, nil)
	assert.False(t, res.Matched())
	assert.Equal(t, domain.NoMatch, res)
}

func TestResolve_EmptyNameScoresLow(t *testing.T) {
	r := New(DefaultThreshold)

	res := r.Resolve(domain.WineDescriptor{}, []domain.CatalogWine{wine("w", "Barolo", "Gaja", nil)})
	assert.False(t, res.Matched())
}

func TestResolve_DoesNotMutateCandidates(t *testing.T) {
	r := New(DefaultThreshold)

	candidates := []domain.CatalogWine{wine("w", "Barolo", "Gaja", domain.Year(2018))}
	res := r.Resolve(domain.WineDescriptor{Name: "Barolo", ProducerName: "Gaja"}, candidates)
	require.True(t, res.Matched())

	res.Wine.Name = "changed"
	assert.Equal(t, "Barolo", candidates[0].Name)
}

func TestResolve_AccentFolding(t *testing.T) {
	target := domain.WineDescriptor{Name: "Château d'Yquem", ProducerName: "Château d'Yquem"}
	candidate := wine("yq", "Chateau d'Yquem", "Chateau d'Yquem", nil)

	plain := New(0.95)
	assert.False(t, plain.Resolve(target, []domain.CatalogWine{candidate}).Matched())

	folded := New(0.95, WithAccentFolding(true))
	res := folded.Resolve(target, []domain.CatalogWine{candidate})
	require.True(t, res.Matched())
	assert.Equal(t, 1.0, res.Score)
}

func TestNew_InvalidThresholdFallsBack(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(0).Threshold())
	assert.Equal(t, DefaultThreshold, New(1.5).Threshold())
	assert.Equal(t, 0.9, New(0.9).Threshold())
}

func TestMatch_ReturnsIndex(t *testing.T) {
	r := New(DefaultThreshold)

	idx, score := r.Match(
		domain.WineDescriptor{Name: "Opus One", ProducerName: "Opus One Winery"},
		[]domain.WineDescriptor{
			{Name: "Insignia", ProducerName: "Joseph Phelps"},
			{Name: "Opus One", ProducerName: "Opus One Winery"},
		},
	)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1.0, score)

	idx, score = r.Match(domain.WineDescriptor{Name: "Opus One"}, nil)
	assert.Equal(t, -1, idx)
	assert.Zero(t, score)
}

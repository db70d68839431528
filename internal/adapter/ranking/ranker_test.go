package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

func scored(id string, total, semantic float64) domain.ScoredWine {
	return domain.ScoredWine{
		Wine:  domain.CatalogWine{ID: id},
		Score: domain.PairingScore{Total: total, SemanticScore: semantic},
	}
}

func ids(ws []domain.ScoredWine) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Wine.ID
	}
	return out
}

func TestRank_OrdersByTotalThenSemanticThenID(t *testing.T) {
	in := []domain.ScoredWine{
		scored("c", 70, 10),
		scored("a", 90, 0),
		scored("d", 70, 40),
		scored("b", 70, 40),
		scored("e", 20, 90),
	}

	got := Rank(in, 10)
	assert.Equal(t, []string{"a", "b", "d", "c", "e"}, ids(got))
}

func TestRank_Truncates(t *testing.T) {
	in := []domain.ScoredWine{scored("a", 10, 0), scored("b", 30, 0), scored("c", 20, 0)}

	got := Rank(in, 2)
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestRank_NonPositiveLimit(t *testing.T) {
	in := []domain.ScoredWine{scored("a", 10, 0)}

	assert.Empty(t, Rank(in, 0))
	assert.Empty(t, Rank(in, -3))
	assert.NotNil(t, Rank(in, 0))
}

func TestRank_EmptyInput(t *testing.T) {
	got := Rank(nil, 5)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []domain.ScoredWine{scored("a", 10, 0), scored("b", 30, 0)}

	_ = Rank(in, 2)
	assert.Equal(t, []string{"a", "b"}, ids(in))
}

func TestRank_Deterministic(t *testing.T) {
	forward := []domain.ScoredWine{scored("x", 50, 50), scored("y", 50, 50), scored("z", 50, 50)}
	reversed := []domain.ScoredWine{forward[2], forward[1], forward[0]}

	assert.Equal(t, ids(Rank(forward, 3)), ids(Rank(reversed, 3)))
	assert.Equal(t, []string{"x", "y", "z"}, ids(Rank(reversed, 3)))
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/adapter/embedding"
	"cellar/internal/adapter/memstore"
	"cellar/internal/adapter/pairing"
	"cellar/internal/domain"
)

// stubEmbedder returns err for every call and counts calls.
type stubEmbedder struct {
	dim   int
	err   error
	calls atomic.Int32
}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, e.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int    { return e.dim }
func (e *stubEmbedder) ModelName() string { return "stub" }

func seedWines(t *testing.T, store *memstore.MemoryStore, wines ...domain.CatalogWine) {
	t.Helper()
	for _, w := range wines {
		require.NoError(t, store.PutWine(context.Background(), w))
	}
}

func typedWine(id string, wineType domain.WineType, emb []float32) domain.CatalogWine {
	return domain.CatalogWine{
		ID:             id,
		WineDescriptor: domain.WineDescriptor{Name: "Wine " + id, ProducerName: "Producer"},
		Type:           wineType,
		Embedding:      emb,
	}
}

func newPairUseCase(t *testing.T, store *memstore.MemoryStore, emb *stubEmbedder, opts PairOptions) *PairUseCase {
	t.Helper()
	scorer, err := pairing.NewScorer(pairing.DefaultRuleWeight, pairing.DefaultSemanticWeight)
	require.NoError(t, err)
	if emb == nil {
		return NewPairUseCase(store, store, nil, scorer, opts)
	}
	return NewPairUseCase(store, store, emb, scorer, opts)
}

func TestPair_RanksRedFirstForSteak(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store,
		typedWine("red", domain.WineTypeRed, nil),
		typedWine("white", domain.WineTypeWhite, nil),
		typedWine("fizz", domain.WineTypeSparkling, nil),
	)
	uc := newPairUseCase(t, store, nil, PairOptions{Workers: 2})

	resp, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "  grilled steak  "})
	require.NoError(t, err)

	assert.Equal(t, "grilled steak", resp.Dish)
	assert.Equal(t, domain.FoodRedMeat, resp.Category)
	assert.Equal(t, 3, resp.TotalWinesScanned)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "red", resp.Results[0].Wine.ID)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score.Total, resp.Results[i].Score.Total)
	}
}

func TestPair_Validation(t *testing.T) {
	uc := newPairUseCase(t, memstore.NewMemoryStore(), nil, PairOptions{MaxDishLength: 10})

	_, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = uc.Pair(context.Background(), domain.PairingQuery{Dish: strings.Repeat("a", 11)})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "maximum is 10")
}

func TestPair_LimitClamp(t *testing.T) {
	store := memstore.NewMemoryStore()
	for i := range 6 {
		seedWines(t, store, typedWine(fmt.Sprintf("w%d", i), domain.WineTypeRed, nil))
	}
	uc := newPairUseCase(t, store, nil, PairOptions{DefaultLimit: 2, MaxLimit: 4})

	resp, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "beef stew"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	resp, err = uc.Pair(context.Background(), domain.PairingQuery{Dish: "beef stew", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 4)
	assert.Equal(t, 6, resp.TotalWinesScanned)

	resp, err = uc.Pair(context.Background(), domain.PairingQuery{Dish: "beef stew", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestPair_EmptyCatalog(t *testing.T) {
	uc := newPairUseCase(t, memstore.NewMemoryStore(), nil, PairOptions{})

	resp, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "roast chicken"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalWinesScanned)
}

func TestPair_InventoryScope(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryStore()
	seedWines(t, store,
		typedWine("a", domain.WineTypeRed, nil),
		typedWine("b", domain.WineTypeWhite, nil),
	)
	require.NoError(t, store.AddToInventory(ctx, "ana", "b"))
	uc := newPairUseCase(t, store, nil, PairOptions{})

	resp, err := uc.Pair(ctx, domain.PairingQuery{Dish: "grilled steak", UserID: "ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalWinesScanned)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "b", resp.Results[0].Wine.ID)

	resp, err = uc.Pair(ctx, domain.PairingQuery{Dish: "grilled steak", UserID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalWinesScanned)
	assert.Empty(t, resp.Results)
}

func TestPair_SemanticBlend(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryStore()
	mock := embedding.NewMockEmbedder(32)
	vecs, err := mock.Embed(ctx, []string{"grilled steak with pepper sauce", "lemon sorbet"})
	require.NoError(t, err)
	seedWines(t, store,
		typedWine("close", domain.WineTypeRed, vecs[0]),
		typedWine("far", domain.WineTypeRed, vecs[1]),
		typedWine("plain", domain.WineTypeRed, nil),
	)

	scorer, err := pairing.NewScorer(pairing.DefaultRuleWeight, pairing.DefaultSemanticWeight)
	require.NoError(t, err)
	uc := NewPairUseCase(store, store, mock, scorer, PairOptions{})

	resp, err := uc.Pair(ctx, domain.PairingQuery{Dish: "grilled steak with pepper sauce"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	byID := make(map[string]domain.PairingScore)
	for _, r := range resp.Results {
		byID[r.Wine.ID] = r.Score
		assert.Nil(t, r.Wine.Embedding)
		assert.InDelta(t, r.Score.Total, r.Score.Reconstruct(), 1e-9)
	}
	assert.True(t, byID["close"].HasSemantic)
	assert.InDelta(t, 100, byID["close"].SemanticScore, 1e-3)
	assert.False(t, byID["plain"].HasSemantic)
	assert.Equal(t, "close", resp.Results[0].Wine.ID)
	assert.Greater(t, byID["close"].Total, byID["far"].Total)
}

func TestPair_SkipsProviderWhenNoWineHasEmbedding(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store, typedWine("a", domain.WineTypeRed, nil))
	emb := &stubEmbedder{dim: 4}
	uc := newPairUseCase(t, store, emb, PairOptions{})

	_, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "lamb chops"})
	require.NoError(t, err)
	assert.Zero(t, emb.calls.Load())
}

func TestPair_DegradesOnProviderError(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store,
		typedWine("a", domain.WineTypeRed, []float32{1, 0, 0, 0}),
		typedWine("b", domain.WineTypeWhite, []float32{0, 1, 0, 0}),
	)
	emb := &stubEmbedder{dim: 4, err: fmt.Errorf("%w: HTTP 503", domain.ErrProviderUnavailable)}
	uc := newPairUseCase(t, store, emb, PairOptions{DegradeOnProviderError: true})

	resp, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "lamb chops"})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.DegradedReason, "unavailable")
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.False(t, r.Score.HasSemantic)
		assert.Equal(t, r.Score.RuleBasedScore, r.Score.Total)
	}
	assert.Equal(t, "a", resp.Results[0].Wine.ID)
}

func TestPair_ProviderErrorWithoutDegrade(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store, typedWine("a", domain.WineTypeRed, []float32{1, 0}))
	emb := &stubEmbedder{dim: 2, err: &domain.RateLimitError{Message: "quota"}}
	uc := newPairUseCase(t, store, emb, PairOptions{DegradeOnProviderError: false})

	_, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "lamb chops"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestPair_NonProviderErrorIsNotDegraded(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store, typedWine("a", domain.WineTypeRed, []float32{1, 0}))
	emb := &stubEmbedder{dim: 2, err: fmt.Errorf("bad request")}
	uc := newPairUseCase(t, store, emb, PairOptions{DegradeOnProviderError: true})

	_, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "lamb chops"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed dish")
}

func TestPair_DimensionMismatchFails(t *testing.T) {
	store := memstore.NewMemoryStore()
	seedWines(t, store, typedWine("a", domain.WineTypeRed, []float32{1, 0, 0}))
	uc := newPairUseCase(t, store, &stubEmbedder{dim: 2}, PairOptions{})

	_, err := uc.Pair(context.Background(), domain.PairingQuery{Dish: "lamb chops"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

type countingPairer struct {
	calls    int
	degraded bool
	err      error
}

func (p *countingPairer) Pair(ctx context.Context, q domain.PairingQuery) (*domain.PairingResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.PairingResponse{Dish: q.Dish, Degraded: p.degraded}, nil
}

func TestPairingCache_GetPut(t *testing.T) {
	c := NewPairingCache(10, time.Minute)
	q := domain.PairingQuery{Dish: "grilled salmon", Limit: 5}

	_, hit := c.Get(q)
	assert.False(t, hit)

	c.Put(q, &domain.PairingResponse{Dish: "grilled salmon"}, c.Generation())

	got, hit := c.Get(domain.PairingQuery{Dish: "  grilled salmon ", Limit: 5})
	require.True(t, hit, "surrounding whitespace is trimmed")
	assert.Equal(t, "grilled salmon", got.Dish)

	_, hit = c.Get(domain.PairingQuery{Dish: "Grilled Salmon", Limit: 5})
	assert.False(t, hit, "case changes the embedded text")

	_, hit = c.Get(domain.PairingQuery{Dish: "grilled salmon", Limit: 6})
	assert.False(t, hit)
	_, hit = c.Get(domain.PairingQuery{Dish: "grilled salmon", Limit: 5, UserID: "u"})
	assert.False(t, hit)
}

func TestPairingCache_Eviction(t *testing.T) {
	c := NewPairingCache(2, time.Minute)
	gen := c.Generation()
	a := domain.PairingQuery{Dish: "a"}
	b := domain.PairingQuery{Dish: "b"}
	d := domain.PairingQuery{Dish: "d"}

	c.Put(a, &domain.PairingResponse{}, gen)
	c.Put(b, &domain.PairingResponse{}, gen)
	_, _ = c.Get(a) // a becomes most recent
	c.Put(d, &domain.PairingResponse{}, gen)

	_, hitA := c.Get(a)
	_, hitB := c.Get(b)
	assert.True(t, hitA)
	assert.False(t, hitB)
	assert.Equal(t, 2, c.Size())
}

func TestPairingCache_TTL(t *testing.T) {
	c := NewPairingCache(10, time.Millisecond)
	q := domain.PairingQuery{Dish: "x"}
	c.Put(q, &domain.PairingResponse{}, c.Generation())

	time.Sleep(5 * time.Millisecond)
	_, hit := c.Get(q)
	assert.False(t, hit)
	assert.Zero(t, c.Size())
}

func TestPairingCache_StalePutDiscarded(t *testing.T) {
	c := NewPairingCache(10, time.Minute)
	q := domain.PairingQuery{Dish: "x"}

	gen := c.Generation()
	c.Invalidate()
	c.Put(q, &domain.PairingResponse{}, gen)

	_, hit := c.Get(q)
	assert.False(t, hit)
}

func TestCachedPairer(t *testing.T) {
	inner := &countingPairer{}
	p := NewCachedPairer(inner, NewPairingCache(10, time.Minute))
	q := domain.PairingQuery{Dish: "steak", Limit: 3}

	_, err := p.Pair(context.Background(), q)
	require.NoError(t, err)
	_, err = p.Pair(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	p.Invalidate()
	_, err = p.Pair(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPairer_SkipsDegradedAndErrors(t *testing.T) {
	inner := &countingPairer{degraded: true}
	p := NewCachedPairer(inner, NewPairingCache(10, time.Minute))
	q := domain.PairingQuery{Dish: "steak"}

	_, _ = p.Pair(context.Background(), q)
	_, _ = p.Pair(context.Background(), q)
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("boom")
	_, err := p.Pair(context.Background(), q)
	assert.Error(t, err)
}

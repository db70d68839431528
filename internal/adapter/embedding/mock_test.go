package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/adapter/pairing"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(32)

	a, err := e.Embed(context.Background(), []string{"grilled salmon", "grilled salmon"})
	require.NoError(t, err)
	assert.Equal(t, a[0], a[1])
	assert.Len(t, a[0], 32)
}

func TestMockEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewMockEmbedder(128)

	out, err := e.Embed(context.Background(), []string{
		"grilled salmon with lemon",
		"Pairs with: grilled salmon, sushi",
		"dark chocolate torte",
	})
	require.NoError(t, err)

	near, err := pairing.Cosine(out[0], out[1])
	require.NoError(t, err)
	far, err := pairing.Cosine(out[0], out[2])
	require.NoError(t, err)
	assert.Greater(t, near, far)
}

func TestMockEmbedder_EmptyText(t *testing.T) {
	out, err := NewMockEmbedder(8).Embed(context.Background(), []string{""})
	require.NoError(t, err)
	assert.Equal(t, float32(1), out[0][0])
}

func TestMockEmbedder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockEmbedder(8).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

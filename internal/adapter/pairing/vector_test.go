package pairing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosine_Errors(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = Cosine(nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidVector)

	_, err = Cosine([]float32{float32(math.NaN()), 1}, []float32{1, 1})
	assert.ErrorIs(t, err, domain.ErrInvalidVector)

	_, err = Cosine([]float32{1, 1}, []float32{float32(math.Inf(1)), 1})
	assert.ErrorIs(t, err, domain.ErrInvalidVector)
}

func TestValidateVector(t *testing.T) {
	assert.NoError(t, ValidateVector([]float32{0.1, -0.2}))
	assert.ErrorIs(t, ValidateVector(nil), domain.ErrInvalidVector)
	assert.ErrorIs(t, ValidateVector([]float32{float32(math.Inf(-1))}), domain.ErrInvalidVector)
}

func TestRescale(t *testing.T) {
	assert.Equal(t, 0.0, rescale(-1))
	assert.Equal(t, 50.0, rescale(0))
	assert.Equal(t, 100.0, rescale(1))
}

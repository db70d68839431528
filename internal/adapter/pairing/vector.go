package pairing

import (
	"fmt"
	"math"

	"cellar/internal/domain"
)

// Cosine returns the cosine similarity of a and b in [-1,1]. Vectors of
// different length or with NaN/Inf components are rejected. A zero vector
// has no direction and yields 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vector", domain.ErrInvalidVector)
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if !finite(x) || !finite(y) {
			return 0, fmt.Errorf("%w: non-finite component at index %d", domain.ErrInvalidVector, i)
		}
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, cos)), nil
}

// ValidateVector rejects empty vectors and non-finite components.
func ValidateVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrInvalidVector)
	}
	for i, x := range v {
		if !finite(float64(x)) {
			return fmt.Errorf("%w: non-finite component at index %d", domain.ErrInvalidVector, i)
		}
	}
	return nil
}

// rescale maps a cosine in [-1,1] onto the 0-100 score scale.
func rescale(cos float64) float64 {
	return (cos + 1) * 50
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

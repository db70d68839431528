package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWineType(t *testing.T) {
	tests := []struct {
		in   string
		want WineType
	}{
		{"Red", WineTypeRed},
		{" rosé ", WineTypeRose},
		{"Champagne", WineTypeSparkling},
		{"port", WineTypeFortified},
		{"orange", WineTypeUnknown},
		{"", WineTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseWineType(tt.in), tt.in)
	}
}

func TestVintageEquals(t *testing.T) {
	a := WineDescriptor{Vintage: Year(2018)}
	assert.True(t, a.VintageEquals(WineDescriptor{Vintage: Year(2018)}))
	assert.False(t, a.VintageEquals(WineDescriptor{Vintage: Year(2015)}))
	assert.False(t, a.VintageEquals(WineDescriptor{}))
	assert.True(t, WineDescriptor{}.VintageEquals(WineDescriptor{}))
}

func TestPairingScoreReconstruct(t *testing.T) {
	ruleOnly := PairingScore{
		Total: 75,
		Breakdown: map[string]float64{
			FactorRuleBase: 70,
			FactorBody:     5,
		},
	}
	assert.InDelta(t, 75, ruleOnly.Reconstruct(), 1e-9)

	blended := PairingScore{
		Total: 0.4*80 + 0.6*50,
		Breakdown: map[string]float64{
			FactorRuleBase:       85,
			FactorClamp:          -5,
			FactorSemantic:       50,
			FactorRuleWeight:     0.4,
			FactorSemanticWeight: 0.6,
		},
	}
	assert.InDelta(t, blended.Total, blended.Reconstruct(), 1e-9)
}

func TestRateLimitErrorIs(t *testing.T) {
	err := fmt.Errorf("embed: %w", &RateLimitError{RetryAfter: 2 * time.Second, Message: "slow down"})
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrProviderUnavailable))
	assert.True(t, IsProviderError(err))
	assert.Contains(t, err.Error(), "retry after 2s")
}

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("pair: %w", NewValidationError("dish", "must not be empty"))
	assert.True(t, IsValidation(err))
	assert.Equal(t, "pair: dish: must not be empty", err.Error())
	assert.False(t, IsValidation(errors.New("other")))
}

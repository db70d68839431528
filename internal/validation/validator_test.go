package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
)

func TestStruct_Valid(t *testing.T) {
	q := domain.PairingQuery{Dish: "grilled salmon", Limit: 5}
	assert.NoError(t, Struct(&q))
}

func TestStruct_RequiredDish(t *testing.T) {
	err := Struct(&domain.PairingQuery{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dish", ve.Field)
	assert.Equal(t, "dish is required", ve.Message)
}

func TestStruct_EnrichmentEnums(t *testing.T) {
	e := domain.EnrichmentPayload{Sweetness: "bone-dry", Body: "full"}

	err := Struct(&e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweetness must be one of: dry off-dry medium sweet")
}

func TestStruct_CollectsAllFailures(t *testing.T) {
	e := domain.EnrichmentPayload{
		Body:    "huge",
		Acidity: "zesty",
	}

	err := Struct(&e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body")
	assert.Contains(t, err.Error(), "acidity")
}

func TestStruct_MaxLength(t *testing.T) {
	q := domain.PairingQuery{Dish: "soup", UserID: strings.Repeat("u", 129)}

	err := Struct(&q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id must be at most 128 characters")
}

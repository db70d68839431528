package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHintTerms(t *testing.T) {
	assert.Equal(t, []string{"chateau", "margaux"}, HintTerms("Château Margaux de la 2015"))
	assert.Empty(t, HintTerms("Le Pin"))
	assert.Equal(t, []string{"opus"}, HintTerms("OPUS opus"))
}

func TestMatchesHint(t *testing.T) {
	terms := HintTerms("Chateau Margau")
	assert.True(t, MatchesHint(terms, "Château Margaux", "Château Margaux SA"))
	assert.False(t, MatchesHint(terms, "Opus One", "Opus One Winery"))
	assert.True(t, MatchesHint(nil, "anything"))

	assert.True(t, MatchesHint(HintTerms("ridge"), "Monte Bello", "Ridge Vineyards"))

	assert.True(t, MatchesHint(HintTerms("Chateu Margux"), "Château Margaux", "Château Margaux"))
	assert.False(t, MatchesHint(HintTerms("Chablis"), "Chinon", "Olga Raffault"))
}

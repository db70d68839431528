// Package enrichment decides when a wine's enrichment data is complete
// enough to embed, and builds the text that gets embedded.
package enrichment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cellar/internal/domain"
)

const (
	// MinDescriptionRunes is the shortest description worth embedding.
	MinDescriptionRunes = 12
	// MinDescriptionWords is the fewest words a description needs.
	MinDescriptionWords = 3
)

// IsReadyForEmbedding reports whether enrichment carries a non-trivial
// summary or tasting note. Nil and empty payloads are never ready.
func IsReadyForEmbedding(e *domain.EnrichmentPayload) bool {
	if e == nil {
		return false
	}
	return substantial(e.Summary) || substantial(e.TastingNotes)
}

func substantial(s string) bool {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < MinDescriptionRunes {
		return false
	}
	return len(strings.Fields(s)) >= MinDescriptionWords
}

// EmbeddingText renders the wine into the text sent to the embedding
// provider. Output is deterministic for identical inputs.
func EmbeddingText(d domain.WineDescriptor, wineType domain.WineType, e *domain.EnrichmentPayload) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(d.Name))
	if d.ProducerName != "" {
		fmt.Fprintf(&b, " by %s", strings.TrimSpace(d.ProducerName))
	}
	if d.Vintage != nil {
		fmt.Fprintf(&b, " %d", *d.Vintage)
	}
	b.WriteString(".")

	writeField(&b, "Type", string(wineType))
	writeField(&b, "Grape", d.Grape)
	writeField(&b, "Region", joinNonEmpty(", ", d.Region, d.Country))

	if e == nil {
		return b.String()
	}

	writeField(&b, "Summary", e.Summary)
	writeField(&b, "Tasting notes", e.TastingNotes)
	writeField(&b, "Sweetness", e.Sweetness)
	writeField(&b, "Body", e.Body)
	writeField(&b, "Acidity", e.Acidity)
	writeField(&b, "Tannin", e.Tannin)
	writeField(&b, "Aromas", strings.Join(e.Aromas, ", "))
	writeField(&b, "Pairs with", strings.Join(e.FoodPairings, ", "))

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "\n%s: %s", label, value)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

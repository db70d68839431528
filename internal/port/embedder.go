package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text. Provider failures
	// wrap domain.ErrProviderUnavailable or domain.ErrRateLimited.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Throttle paces calls to an external provider.
// *rate.Limiter from golang.org/x/time/rate satisfies it.
type Throttle interface {
	Wait(ctx context.Context) error
}

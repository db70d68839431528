package port

import (
	"context"

	"cellar/internal/domain"
)

// CatalogStore is the canonical store of known wines and their embeddings.
type CatalogStore interface {
	// FindCandidates returns catalog wines that could be the wine named by
	// nameHint. It may over-approximate; the resolver decides.
	FindCandidates(ctx context.Context, nameHint string) ([]domain.CatalogWine, error)

	// GetWinesWithEmbeddings lists wines matching filter with their
	// embedding attached when one exists.
	GetWinesWithEmbeddings(ctx context.Context, filter domain.WineFilter) ([]domain.CatalogWine, error)

	// SaveEmbedding stores the embedding for an existing wine.
	SaveEmbedding(ctx context.Context, wineID string, vector []float32) error

	GetWine(ctx context.Context, id string) (domain.CatalogWine, error)

	PutWine(ctx context.Context, wine domain.CatalogWine) error

	ListWines(ctx context.Context) ([]domain.CatalogWine, error)

	// ClearEmbeddings drops every stored embedding.
	ClearEmbeddings(ctx context.Context) error

	Count(ctx context.Context) (int, error)
}

// InventoryStore records which wines a user owns.
type InventoryStore interface {
	AddToInventory(ctx context.Context, userID, wineID string) error

	RemoveFromInventory(ctx context.Context, userID, wineID string) error

	InventoryWineIDs(ctx context.Context, userID string) ([]string, error)
}

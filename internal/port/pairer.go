package port

import (
	"context"

	"cellar/internal/domain"
)

// Pairer ranks catalog wines against a dish description.
type Pairer interface {
	Pair(ctx context.Context, query domain.PairingQuery) (*domain.PairingResponse, error)
}

// Package memstore is an in-memory CatalogStore and InventoryStore for
// tests and throwaway runs.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"cellar/internal/adapter/analyzer"
	"cellar/internal/domain"
)

type MemoryStore struct {
	mu         sync.RWMutex
	wines      map[string]domain.CatalogWine
	embeddings map[string][]float32
	inventory  map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wines:      make(map[string]domain.CatalogWine),
		embeddings: make(map[string][]float32),
		inventory:  make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) PutWine(ctx context.Context, wine domain.CatalogWine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if wine.ID == "" {
		return domain.NewValidationError("id", "wine id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if wine.CreatedAt.IsZero() {
		wine.CreatedAt = now
	}
	wine.UpdatedAt = now
	if wine.HasEmbedding() {
		s.embeddings[wine.ID] = slices.Clone(wine.Embedding)
	}
	wine.Embedding = nil
	s.wines[wine.ID] = wine
	return nil
}

func (s *MemoryStore) GetWine(ctx context.Context, id string) (domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogWine{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wines[id]
	if !ok {
		return domain.CatalogWine{}, fmt.Errorf("wine %s: %w", id, domain.ErrNotFound)
	}
	w.Embedding = slices.Clone(s.embeddings[id])
	return w, nil
}

func (s *MemoryStore) ListWines(ctx context.Context) ([]domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
}

func (s *MemoryStore) FindCandidates(ctx context.Context, nameHint string) ([]domain.CatalogWine, error) {
	wines, err := s.ListWines(ctx)
	if err != nil {
		return nil, err
	}

	terms := analyzer.HintTerms(nameHint)
	out := wines[:0]
	for _, w := range wines {
		if analyzer.MatchesHint(terms, w.Name, w.ProducerName) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetWinesWithEmbeddings(ctx context.Context, filter domain.WineFilter) ([]domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids map[string]struct{}
	if len(filter.IDs) > 0 {
		ids = make(map[string]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = struct{}{}
		}
	}

	var out []domain.CatalogWine
	for _, w := range s.sorted() {
		if ids != nil {
			if _, ok := ids[w.ID]; !ok {
				continue
			}
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, w.Type) {
			continue
		}
		vec := s.embeddings[w.ID]
		if filter.WithEmbedding && len(vec) == 0 {
			continue
		}
		w.Embedding = slices.Clone(vec)
		out = append(out, w)
	}
	return out, nil
}

func (s *MemoryStore) SaveEmbedding(ctx context.Context, wineID string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vector) == 0 {
		return fmt.Errorf("wine %s: %w: empty vector", wineID, domain.ErrInvalidVector)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wines[wineID]; !ok {
		return fmt.Errorf("wine %s: %w", wineID, domain.ErrNotFound)
	}
	s.embeddings[wineID] = slices.Clone(vector)
	return nil
}

func (s *MemoryStore) ClearEmbeddings(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings = make(map[string][]float32)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wines), nil
}

func (s *MemoryStore) AddToInventory(ctx context.Context, userID, wineID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return domain.NewValidationError("user_id", "user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wines[wineID]; !ok {
		return fmt.Errorf("wine %s: %w", wineID, domain.ErrNotFound)
	}
	owned, ok := s.inventory[userID]
	if !ok {
		owned = make(map[string]struct{})
		s.inventory[userID] = owned
	}
	owned[wineID] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveFromInventory(ctx context.Context, userID, wineID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.inventory[userID]
	if _, ok := owned[wineID]; !ok {
		return fmt.Errorf("wine %s in inventory of %s: %w", wineID, userID, domain.ErrNotFound)
	}
	delete(owned, wineID)
	return nil
}

func (s *MemoryStore) InventoryWineIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.inventory[userID]))
	for id := range s.inventory[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// sorted returns the wines in id order. Caller holds the lock.
func (s *MemoryStore) sorted() []domain.CatalogWine {
	out := make([]domain.CatalogWine, 0, len(s.wines))
	for _, w := range s.wines {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

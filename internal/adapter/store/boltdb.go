package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"cellar/internal/adapter/analyzer"
	"cellar/internal/domain"
)

var (
	bucketWines      = []byte("wines")
	bucketEmbeddings = []byte("embeddings")
	bucketInventory  = []byte("inventory")
	bucketMeta       = []byte("meta")
)

// BoltStore persists the catalog, embeddings and inventories in one bbolt
// file. It implements port.CatalogStore and port.InventoryStore.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketWines, bucketEmbeddings, bucketInventory, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) PutWine(ctx context.Context, wine domain.CatalogWine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if wine.ID == "" {
		return domain.NewValidationError("id", "wine id is required")
	}

	now := s.now().UTC()
	if wine.CreatedAt.IsZero() {
		wine.CreatedAt = now
	}
	wine.UpdatedAt = now

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(wine)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketWines).Put([]byte(wine.ID), data); err != nil {
			return err
		}
		if wine.HasEmbedding() {
			return putVector(tx, wine.ID, wine.Embedding)
		}
		return nil
	})
}

func (s *BoltStore) GetWine(ctx context.Context, id string) (domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogWine{}, err
	}

	var wine domain.CatalogWine
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketWines).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("wine %s: %w", id, domain.ErrNotFound)
		}
		if err := json.Unmarshal(data, &wine); err != nil {
			return fmt.Errorf("decode wine %s: %w", id, err)
		}
		vec, err := getVector(tx, id)
		if err != nil {
			return err
		}
		wine.Embedding = vec
		return nil
	})
	return wine, err
}

// ListWines returns every wine in id order, without embeddings.
func (s *BoltStore) ListWines(ctx context.Context) ([]domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wines []domain.CatalogWine
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWines).ForEach(func(k, v []byte) error {
			var wine domain.CatalogWine
			if err := json.Unmarshal(v, &wine); err != nil {
				return fmt.Errorf("decode wine %s: %w", k, err)
			}
			wines = append(wines, wine)
			return nil
		})
	})
	return wines, err
}

// FindCandidates returns wines whose name or producer shares a lookup term
// with nameHint. A hint without usable terms returns the whole catalog.
func (s *BoltStore) FindCandidates(ctx context.Context, nameHint string) ([]domain.CatalogWine, error) {
	wines, err := s.ListWines(ctx)
	if err != nil {
		return nil, err
	}

	terms := analyzer.HintTerms(nameHint)
	candidates := wines[:0]
	for _, w := range wines {
		if analyzer.MatchesHint(terms, w.Name, w.ProducerName) {
			candidates = append(candidates, w)
		}
	}
	return candidates, nil
}

// GetWinesWithEmbeddings lists wines matching filter in id order with their
// embeddings attached.
func (s *BoltStore) GetWinesWithEmbeddings(ctx context.Context, filter domain.WineFilter) ([]domain.CatalogWine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wines []domain.CatalogWine
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketWines)

		visit := func(k, v []byte) error {
			var wine domain.CatalogWine
			if err := json.Unmarshal(v, &wine); err != nil {
				return fmt.Errorf("decode wine %s: %w", k, err)
			}
			if !typeAllowed(filter.Types, wine.Type) {
				return nil
			}
			vec, err := getVector(tx, wine.ID)
			if err != nil {
				return err
			}
			if filter.WithEmbedding && len(vec) == 0 {
				return nil
			}
			wine.Embedding = vec
			wines = append(wines, wine)
			return nil
		}

		if len(filter.IDs) == 0 {
			return b.ForEach(visit)
		}
		for _, id := range sortedUnique(filter.IDs) {
			if v := b.Get([]byte(id)); v != nil {
				if err := visit([]byte(id), v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return wines, err
}

// SaveEmbedding stores vector for an existing wine, replacing any previous one.
func (s *BoltStore) SaveEmbedding(ctx context.Context, wineID string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vector) == 0 {
		return fmt.Errorf("wine %s: %w: empty vector", wineID, domain.ErrInvalidVector)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketWines).Get([]byte(wineID)) == nil {
			return fmt.Errorf("wine %s: %w", wineID, domain.ErrNotFound)
		}
		return putVector(tx, wineID, vector)
	})
}

func (s *BoltStore) ClearEmbeddings(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(clearEmbeddings)
}

func clearEmbeddings(tx *bbolt.Tx) error {
	if err := tx.DeleteBucket(bucketEmbeddings); err != nil && err != bbolt.ErrBucketNotFound {
		return err
	}
	_, err := tx.CreateBucket(bucketEmbeddings)
	return err
}

func (s *BoltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketWines).Stats().KeyN
		return nil
	})
	return n, err
}

// CountEmbeddings returns the number of stored embeddings.
func (s *BoltStore) CountEmbeddings(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEmbeddings).Stats().KeyN
		return nil
	})
	return n, err
}

type storedVector struct {
	Vector []float32 `json:"v"`
}

func putVector(tx *bbolt.Tx, id string, vector []float32) error {
	data, err := json.Marshal(storedVector{Vector: vector})
	if err != nil {
		return err
	}
	return tx.Bucket(bucketEmbeddings).Put([]byte(id), data)
}

func getVector(tx *bbolt.Tx, id string) ([]float32, error) {
	data := tx.Bucket(bucketEmbeddings).Get([]byte(id))
	if data == nil {
		return nil, nil
	}
	var stored storedVector
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode embedding %s: %w", id, err)
	}
	return stored.Vector, nil
}

func typeAllowed(types []domain.WineType, t domain.WineType) bool {
	if len(types) == 0 {
		return true
	}
	for _, allowed := range types {
		if allowed == t {
			return true
		}
	}
	return false
}

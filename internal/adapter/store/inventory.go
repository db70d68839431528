package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"cellar/internal/domain"
)

// Inventories live in one nested bucket per user, keyed by wine id with
// the time the wine was added as value.

func (s *BoltStore) AddToInventory(ctx context.Context, userID, wineID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return domain.NewValidationError("user_id", "user id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketWines).Get([]byte(wineID)) == nil {
			return fmt.Errorf("wine %s: %w", wineID, domain.ErrNotFound)
		}
		user, err := tx.Bucket(bucketInventory).CreateBucketIfNotExists([]byte(userID))
		if err != nil {
			return err
		}
		if user.Get([]byte(wineID)) != nil {
			return nil
		}
		return user.Put([]byte(wineID), []byte(s.now().UTC().Format(time.RFC3339)))
	})
}

func (s *BoltStore) RemoveFromInventory(ctx context.Context, userID, wineID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		user := tx.Bucket(bucketInventory).Bucket([]byte(userID))
		if user == nil || user.Get([]byte(wineID)) == nil {
			return fmt.Errorf("wine %s in inventory of %s: %w", wineID, userID, domain.ErrNotFound)
		}
		return user.Delete([]byte(wineID))
	})
}

// InventoryWineIDs returns the wine ids owned by userID in id order. An
// unknown user has an empty inventory.
func (s *BoltStore) InventoryWineIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		user := tx.Bucket(bucketInventory).Bucket([]byte(userID))
		if user == nil {
			return nil
		}
		return user.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

func sortedUnique(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

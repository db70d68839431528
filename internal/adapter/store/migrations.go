package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"cellar/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keyEmbeddingHash = []byte("embedding_hash")
)

// SchemaInfo stores the schema version and the hash of the embedding
// configuration the stored vectors were produced with.
type SchemaInfo struct {
	Version       int    `json:"version"`
	EmbeddingHash string `json:"embedding_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}
		if hashData := b.Get(keyEmbeddingHash); hashData != nil {
			info.EmbeddingHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putSchemaInfo(tx, info)
	})
}

func putSchemaInfo(tx *bbolt.Tx, info *SchemaInfo) error {
	b := tx.Bucket(bucketMeta)
	versionData, err := json.Marshal(info.Version)
	if err != nil {
		return err
	}
	if err := b.Put(keySchemaVersion, versionData); err != nil {
		return err
	}
	return b.Put(keyEmbeddingHash, []byte(info.EmbeddingHash))
}

// ComputeEmbeddingHash hashes the settings that determine vector space.
// Vectors produced under a different hash are not comparable.
func ComputeEmbeddingHash(cfg config.EmbeddingConfig) string {
	relevant := struct {
		Provider  string `json:"provider"`
		Model     string `json:"model"`
		Dimension int    `json:"dimension"`
	}{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Dimension: cfg.Dimension,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration  bool
	ClearEmbeddings bool
	Unsupported     bool
	OldVersion      int
	NewVersion      int
	Reason          string
}

// CheckMigration reports what Migrate would do.
func (s *BoltStore) CheckMigration(cfg config.EmbeddingConfig) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.Unsupported = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.EmbeddingHash != "" && info.EmbeddingHash != ComputeEmbeddingHash(cfg) {
		result.ClearEmbeddings = true
		result.Reason = "embedding model changed"
	}

	return result, nil
}

// Migrate upgrades the schema and drops embeddings produced by a different
// embedding configuration.
func (s *BoltStore) Migrate(ctx context.Context, cfg config.EmbeddingConfig) (*MigrationResult, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return nil, err
	}
	if result.Unsupported {
		return result, fmt.Errorf("cannot open catalog: %s", result.Reason)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		for v := result.OldVersion; v < CurrentSchemaVersion; v++ {
			if err := runMigration(tx, v, v+1); err != nil {
				return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
			}
		}
		if result.ClearEmbeddings {
			if err := clearEmbeddings(tx); err != nil {
				return err
			}
		}
		return putSchemaInfo(tx, &SchemaInfo{
			Version:       CurrentSchemaVersion,
			EmbeddingHash: ComputeEmbeddingHash(cfg),
		})
	})
	return result, err
}

func runMigration(tx *bbolt.Tx, from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 had no inventories.
		_, err := tx.CreateBucketIfNotExists(bucketInventory)
		return err
	default:
		return nil
	}
}

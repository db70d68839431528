package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cellar/internal/adapter/fs"
	"cellar/internal/adapter/resolver"
	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/metrics"
	"cellar/internal/port"
	"cellar/internal/validation"
)

// Observation is a wine seen on a label or listed in a catalog file.
type Observation struct {
	Descriptor domain.WineDescriptor
	Type       domain.WineType
	Enrichment *domain.EnrichmentPayload
	// Source identifies the observation in error reports.
	Source string
}

// ImportResult contains the results of an import run.
type ImportResult struct {
	Created int                `json:"created"`
	Linked  int                `json:"linked"`
	Failed  int                `json:"failed"`
	Errors  []domain.ItemError `json:"errors"`
	// WineIDs holds the catalog id of each successful observation, in order.
	WineIDs []string `json:"wine_ids"`
}

// ImportUseCase links observations to existing catalog wines or creates
// new ones.
type ImportUseCase struct {
	catalog   port.CatalogStore
	inventory port.InventoryStore
	resolver  *resolver.Resolver
	walker    *fs.Walker
	newID     func() string
	onChange  func()
}

// NewImportUseCase creates a new import use case. inventory may be nil
// when no owner is ever given.
func NewImportUseCase(
	catalog port.CatalogStore,
	inventory port.InventoryStore,
	r *resolver.Resolver,
	walker *fs.Walker,
) *ImportUseCase {
	return &ImportUseCase{
		catalog:   catalog,
		inventory: inventory,
		resolver:  r,
		walker:    walker,
		newID:     uuid.NewString,
	}
}

// OnCatalogChange registers fn to run after an import changed the catalog.
func (u *ImportUseCase) OnCatalogChange(fn func()) {
	u.onChange = fn
}

// ImportPath imports every catalog file found under root. A file that
// cannot be parsed is reported as one failed item.
func (u *ImportUseCase) ImportPath(ctx context.Context, root, owner string, progress func(done, total int)) (*ImportResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalog files: %w", err)
	}

	result := &ImportResult{}
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		records, err := fs.LoadCatalogFile(file.Path)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{ID: file.Path, Reason: err.Error()})
			logging.Warn().Err(err).Str("file", file.Path).Msg("skipping catalog file")
		} else {
			obs := make([]Observation, len(records))
			for j, rec := range records {
				obs[j] = Observation{
					Descriptor: rec.WineDescriptor,
					Type:       domain.ParseWineType(rec.Type),
					Enrichment: rec.Enrichment,
					Source:     fmt.Sprintf("%s#%d", filepath.Base(file.Path), j+1),
				}
			}

			part, err := u.Import(ctx, obs, owner)
			result.merge(part)
			if err != nil {
				return result, err
			}
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return result, nil
}

// Import resolves each observation in order. Wines created earlier in the
// batch are candidates for later observations, so duplicates within one
// batch link to the same catalog entry.
func (u *ImportUseCase) Import(ctx context.Context, obs []Observation, owner string) (*ImportResult, error) {
	result := &ImportResult{}
	changed := false

	for i, o := range obs {
		if err := ctx.Err(); err != nil {
			u.notify(changed)
			return result, err
		}

		source := o.Source
		if source == "" {
			source = fmt.Sprintf("#%d %s", i+1, o.Descriptor.Name)
		}

		id, created, err := u.importOne(ctx, o, owner)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{ID: source, Reason: err.Error()})
			metrics.ImportedWines.WithLabelValues("failed").Inc()
			continue
		}

		changed = true
		result.WineIDs = append(result.WineIDs, id)
		if created {
			result.Created++
			metrics.ImportedWines.WithLabelValues("created").Inc()
		} else {
			result.Linked++
			metrics.ImportedWines.WithLabelValues("linked").Inc()
		}
	}

	u.notify(changed)
	return result, nil
}

func (u *ImportUseCase) importOne(ctx context.Context, o Observation, owner string) (string, bool, error) {
	if err := validateObservation(&o); err != nil {
		return "", false, err
	}

	candidates, err := u.catalog.FindCandidates(ctx, candidateHint(o.Descriptor))
	if err != nil {
		return "", false, fmt.Errorf("failed to load candidates: %w", err)
	}

	var (
		id      string
		created bool
	)
	if match := u.resolver.Resolve(o.Descriptor, candidates); match.Matched() {
		wine := *match.Wine
		id = wine.ID
		if fillMissing(&wine, o) {
			if err := u.catalog.PutWine(ctx, wine); err != nil {
				return "", false, fmt.Errorf("failed to update wine %s: %w", id, err)
			}
		}
		logging.Debug().Str("name", o.Descriptor.Name).Str("wine", id).Float64("score", match.Score).Msg("linked observation")
	} else {
		wine := domain.CatalogWine{
			ID:             u.newID(),
			WineDescriptor: o.Descriptor,
			Type:           o.Type,
			Enrichment:     o.Enrichment,
		}
		if err := u.catalog.PutWine(ctx, wine); err != nil {
			return "", false, fmt.Errorf("failed to create wine: %w", err)
		}
		id, created = wine.ID, true
		logging.Debug().Str("name", o.Descriptor.Name).Str("wine", id).Msg("created catalog wine")
	}

	if owner != "" {
		if u.inventory == nil {
			return "", false, domain.NewValidationError("owner", "inventories are not available")
		}
		if err := u.inventory.AddToInventory(ctx, owner, id); err != nil {
			return "", false, fmt.Errorf("failed to add wine %s to inventory: %w", id, err)
		}
	}
	return id, created, nil
}

func validateObservation(o *Observation) error {
	o.Descriptor.Name = strings.TrimSpace(o.Descriptor.Name)
	o.Descriptor.ProducerName = strings.TrimSpace(o.Descriptor.ProducerName)
	if o.Descriptor.Name == "" {
		return domain.NewValidationError("name", "wine name is required")
	}
	if err := validation.Struct(&o.Descriptor); err != nil {
		return err
	}
	if o.Enrichment != nil {
		if err := validation.Struct(o.Enrichment); err != nil {
			return err
		}
	}
	return nil
}

// fillMissing copies fields the catalog wine lacks from the observation.
// Existing values are never overwritten. It reports whether wine changed.
func fillMissing(wine *domain.CatalogWine, o Observation) bool {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&wine.Country, o.Descriptor.Country)
	fill(&wine.Region, o.Descriptor.Region)
	fill(&wine.Grape, o.Descriptor.Grape)

	if wine.Type == domain.WineTypeUnknown && o.Type != domain.WineTypeUnknown {
		wine.Type = o.Type
		changed = true
	}
	if wine.Enrichment == nil && o.Enrichment != nil {
		wine.Enrichment = o.Enrichment
		changed = true
	}
	return changed
}

func (u *ImportUseCase) notify(changed bool) {
	if changed && u.onChange != nil {
		u.onChange()
	}
}

func (r *ImportResult) merge(other *ImportResult) {
	if other == nil {
		return
	}
	r.Created += other.Created
	r.Linked += other.Linked
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
	r.WineIDs = append(r.WineIDs, other.WineIDs...)
}

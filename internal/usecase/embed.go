package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"cellar/internal/adapter/enrichment"
	"cellar/internal/adapter/pairing"
	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/metrics"
	"cellar/internal/port"
)

// EmbedUseCase generates embeddings for enriched catalog wines.
type EmbedUseCase struct {
	catalog  port.CatalogStore
	embedder port.Embedder
	throttle port.Throttle
	workers  int
	onChange func()
}

// NewEmbedUseCase creates a new embedding use case. throttle may be nil.
func NewEmbedUseCase(catalog port.CatalogStore, embedder port.Embedder, throttle port.Throttle, workers int) *EmbedUseCase {
	if workers < 1 {
		workers = 1
	}
	return &EmbedUseCase{
		catalog:  catalog,
		embedder: embedder,
		throttle: throttle,
		workers:  workers,
	}
}

// OnCatalogChange registers fn to run after a batch stored new embeddings.
func (u *EmbedUseCase) OnCatalogChange(fn func()) {
	u.onChange = fn
}

// EmbedOptions controls a batch run.
type EmbedOptions struct {
	// Force re-embeds wines that already have an embedding.
	Force bool
	// Progress is called after each wine is handled.
	Progress func(done, total int)
}

type embedJob struct {
	id   string
	text string
}

// EmbedAll embeds every wine that passes the readiness gate. Failures are
// collected per wine and never stop the batch. When ctx is canceled no new
// wines are dispatched and the partial result is returned with ctx's error.
func (u *EmbedUseCase) EmbedAll(ctx context.Context, opts EmbedOptions) (domain.BatchResult, error) {
	var result domain.BatchResult

	wines, err := u.catalog.GetWinesWithEmbeddings(ctx, domain.WineFilter{})
	if err != nil {
		return result, fmt.Errorf("failed to list wines: %w", err)
	}

	total := len(wines)
	var jobs []embedJob
	for _, w := range wines {
		switch {
		case w.HasEmbedding() && !opts.Force:
			result.Skipped++
		case !enrichment.IsReadyForEmbedding(w.Enrichment):
			result.Skipped++
		default:
			jobs = append(jobs, embedJob{
				id:   w.ID,
				text: enrichment.EmbeddingText(w.WineDescriptor, w.Type, w.Enrichment),
			})
		}
	}
	metrics.BatchItems.WithLabelValues("skipped").Add(float64(result.Skipped))

	var mu sync.Mutex
	done := result.Skipped
	report := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{ID: id, Reason: err.Error()})
			metrics.BatchItems.WithLabelValues("failed").Inc()
			logging.Warn().Err(err).Str("wine", id).Msg("failed to embed wine")
		} else {
			result.Processed++
			metrics.BatchItems.WithLabelValues("processed").Inc()
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, total)
		}
	}
	if opts.Progress != nil && done > 0 {
		opts.Progress(done, total)
	}

	var g errgroup.Group
	g.SetLimit(u.workers)
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := u.embedOne(ctx, job); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				report(job.id, err)
				return nil
			}
			report(job.id, nil)
			return nil
		})
	}
	_ = g.Wait()

	if result.Processed > 0 && u.onChange != nil {
		u.onChange()
	}

	logging.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("embedding batch finished")

	return result, ctx.Err()
}

func (u *EmbedUseCase) embedOne(ctx context.Context, job embedJob) error {
	if u.throttle != nil {
		if err := u.throttle.Wait(ctx); err != nil {
			return err
		}
	}

	vectors, err := u.embedder.Embed(ctx, []string{job.text})
	if err != nil {
		return err
	}
	if len(vectors) != 1 {
		return fmt.Errorf("%w: provider returned %d vectors", domain.ErrInvalidVector, len(vectors))
	}
	vec := vectors[0]
	if err := pairing.ValidateVector(vec); err != nil {
		return err
	}
	if dim := u.embedder.Dimension(); dim > 0 && len(vec) != dim {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dim, len(vec))
	}
	return u.catalog.SaveEmbedding(ctx, job.id, vec)
}

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/metrics"
	"cellar/internal/port"
)

// BreakerSettings configures BreakerEmbedder.
type BreakerSettings struct {
	// MinRequests is the number of calls in a window before the breaker
	// may open.
	MinRequests uint32
	// FailureRatio opens the breaker once reached.
	FailureRatio float64
	// Interval resets the closed-state counts.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:      5,
		FailureRatio:     0.6,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerEmbedder guards an Embedder with a circuit breaker. Only provider
// outages count as failures; rate limits, bad requests and cancellations
// pass through without tripping it. Rejected calls wrap
// domain.ErrProviderUnavailable.
type BreakerEmbedder struct {
	next port.Embedder
	cb   *gobreaker.CircuitBreaker[[][]float32]
	name string
}

func NewBreakerEmbedder(next port.Embedder, s BreakerSettings) *BreakerEmbedder {
	def := DefaultBreakerSettings()
	if s.MinRequests == 0 {
		s.MinRequests = def.MinRequests
	}
	if s.FailureRatio <= 0 || s.FailureRatio > 1 {
		s.FailureRatio = def.FailureRatio
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = def.OpenTimeout
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = def.HalfOpenRequests
	}

	name := next.ModelName()
	metrics.EmbeddingBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("embedding circuit breaker state change")
			metrics.EmbeddingBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrProviderUnavailable)
		},
	})

	return &BreakerEmbedder{next: next, cb: cb, name: name}
}

func (b *BreakerEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := b.cb.Execute(func() ([][]float32, error) {
		return b.next.Embed(ctx, texts)
	})
	switch {
	case err == nil:
		metrics.EmbeddingCalls.WithLabelValues(b.name, "success").Inc()
		return out, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.EmbeddingCalls.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	default:
		metrics.EmbeddingCalls.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
}

// State reports the breaker state ("closed", "half-open", "open").
func (b *BreakerEmbedder) State() string {
	return b.cb.State().String()
}

func (b *BreakerEmbedder) Dimension() int {
	return b.next.Dimension()
}

func (b *BreakerEmbedder) ModelName() string {
	return b.next.ModelName()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

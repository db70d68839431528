// Package httpapi exposes resolution, pairing and inventories over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cellar/internal/domain"
	"cellar/internal/logging"
	"cellar/internal/port"
	"cellar/internal/usecase"
)

// Resolver maps an observed wine onto the catalog.
type Resolver interface {
	Resolve(ctx context.Context, target domain.WineDescriptor) (domain.MatchResult, error)
}

// Importer links or creates catalog wines from observations.
type Importer interface {
	Import(ctx context.Context, obs []usecase.Observation, owner string) (*usecase.ImportResult, error)
}

// BatchEmbedder runs the embedding batch over the catalog.
type BatchEmbedder interface {
	EmbedAll(ctx context.Context, opts usecase.EmbedOptions) (domain.BatchResult, error)
}

// Options configures the router.
type Options struct {
	// RequestsPerMinute limits each client IP. Zero disables the limit.
	RequestsPerMinute int
	// OnInventoryChange runs after an inventory was modified.
	OnInventoryChange func()
	// Importer enables POST /v1/wines.
	Importer Importer
	// Embedder enables POST /v1/embeddings.
	Embedder BatchEmbedder
}

// Handler serves the cellar API.
type Handler struct {
	resolver  Resolver
	pairer    port.Pairer
	catalog   port.CatalogStore
	inventory port.InventoryStore
	opts      Options
}

func NewHandler(resolver Resolver, pairer port.Pairer, catalog port.CatalogStore, inventory port.InventoryStore, opts Options) *Handler {
	return &Handler{
		resolver:  resolver,
		pairer:    pairer,
		catalog:   catalog,
		inventory: inventory,
		opts:      opts,
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if h.opts.RequestsPerMinute > 0 {
			r.Use(httprate.Limit(
				h.opts.RequestsPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				}),
			))
		}

		r.Post("/resolve", h.resolve)
		r.Post("/pairings", h.pair)
		r.Get("/wines/{id}", h.getWine)
		if h.opts.Importer != nil {
			r.Post("/wines", h.importWines)
		}
		if h.opts.Embedder != nil {
			r.Post("/embeddings", h.embedAll)
		}

		r.Route("/users/{user}/inventory", func(r chi.Router) {
			r.Get("/", h.listInventory)
			r.Put("/{wine}", h.addToInventory)
			r.Delete("/{wine}", h.removeFromInventory)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

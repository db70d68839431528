package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cellar/internal/domain"
	"cellar/internal/usecase"
)

type resolveResponse struct {
	Matched bool                `json:"matched"`
	Score   float64             `json:"score"`
	Wine    *domain.CatalogWine `json:"wine,omitempty"`
}

type inventoryResponse struct {
	UserID  string   `json:"user_id"`
	WineIDs []string `json:"wine_ids"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "UNHEALTHY", "catalog unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "wines": n})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	var target domain.WineDescriptor
	if !decodeBody(w, r, &target) {
		return
	}

	res, err := h.resolver.Resolve(r.Context(), target)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resolveResponse{Matched: res.Matched(), Score: res.Score, Wine: res.Wine})
}

func (h *Handler) pair(w http.ResponseWriter, r *http.Request) {
	var q domain.PairingQuery
	if !decodeBody(w, r, &q) {
		return
	}

	resp, err := h.pairer.Pair(r.Context(), q)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getWine(w http.ResponseWriter, r *http.Request) {
	wine, err := h.catalog.GetWine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wine)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	ids, err := h.inventory.InventoryWineIDs(r.Context(), user)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondJSON(w, http.StatusOK, inventoryResponse{UserID: user, WineIDs: ids})
}

func (h *Handler) addToInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.AddToInventory(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "wine")); err != nil {
		respondDomainError(w, err)
		return
	}
	h.inventoryChanged()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFromInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.RemoveFromInventory(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "wine")); err != nil {
		respondDomainError(w, err)
		return
	}
	h.inventoryChanged()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) inventoryChanged() {
	if h.opts.OnInventoryChange != nil {
		h.opts.OnInventoryChange()
	}
}

type importRequest struct {
	Owner string       `json:"owner,omitempty"`
	Wines []importWine `json:"wines"`
}

type importWine struct {
	domain.WineDescriptor
	Type       string                    `json:"type,omitempty"`
	Enrichment *domain.EnrichmentPayload `json:"enrichment,omitempty"`
}

type embedRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) importWines(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Wines) == 0 {
		respondDomainError(w, domain.NewValidationError("wines", "at least one wine is required"))
		return
	}

	obs := make([]usecase.Observation, len(req.Wines))
	for i, iw := range req.Wines {
		obs[i] = usecase.Observation{
			Descriptor: iw.WineDescriptor,
			Type:       domain.ParseWineType(iw.Type),
			Enrichment: iw.Enrichment,
		}
	}

	result, err := h.opts.Importer.Import(r.Context(), obs, req.Owner)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []domain.ItemError{}
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) embedAll(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	result, err := h.opts.Embedder.EmbedAll(r.Context(), usecase.EmbedOptions{Force: req.Force})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

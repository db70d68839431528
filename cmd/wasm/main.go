//go:build js && wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/goccy/go-json"

	"cellar/internal/adapter/memstore"
	"cellar/internal/adapter/pairing"
	"cellar/internal/adapter/resolver"
	"cellar/internal/domain"
	"cellar/internal/usecase"
)

var (
	store     *memstore.MemoryStore
	scorer    *pairing.Scorer
	importUC  *usecase.ImportUseCase
	pairUC    *usecase.PairUseCase
	resolveUC *usecase.ResolveUseCase
)

func init() {
	var err error
	scorer, err = pairing.NewScorer(pairing.DefaultRuleWeight, pairing.DefaultSemanticWeight)
	if err != nil {
		panic(err)
	}
	reset()
}

// reset swaps in an empty catalog. The browser build has no embedding
// provider, so pairing uses the rule table only.
func reset() {
	store = memstore.NewMemoryStore()
	r := resolver.New(resolver.DefaultThreshold, resolver.WithAccentFolding(true))
	importUC = usecase.NewImportUseCase(store, store, r, nil)
	pairUC = usecase.NewPairUseCase(store, store, nil, scorer, usecase.PairOptions{})
	resolveUC = usecase.NewResolveUseCase(store, r)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("cellarAdd", js.FuncOf(addWines))
	js.Global().Set("cellarResolve", js.FuncOf(resolveWine))
	js.Global().Set("cellarPair", js.FuncOf(pairDish))
	js.Global().Set("cellarClear", js.FuncOf(clearCatalog))
	js.Global().Set("cellarStats", js.FuncOf(getStats))

	<-c
}

type wineInput struct {
	domain.WineDescriptor
	Type       string                    `json:"type"`
	Enrichment *domain.EnrichmentPayload `json:"enrichment"`
}

// addWines takes a JSON array of wines and links or creates each one.
func addWines(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cellarAdd(winesJSON, [owner])")
	}

	var in []wineInput
	if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
		return makeError("invalid wines JSON: " + err.Error())
	}
	owner := ""
	if len(args) > 1 {
		owner = args[1].String()
	}

	obs := make([]usecase.Observation, len(in))
	for i, w := range in {
		obs[i] = usecase.Observation{
			Descriptor: w.WineDescriptor,
			Type:       domain.ParseWineType(w.Type),
			Enrichment: w.Enrichment,
		}
	}

	result, err := importUC.Import(context.Background(), obs, owner)
	if err != nil {
		return makeError("import failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"created": result.Created,
		"linked":  result.Linked,
		"failed":  result.Failed,
		"errors":  result.Errors,
		"ids":     result.WineIDs,
	})
}

func resolveWine(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cellarResolve(wineJSON)")
	}

	var target domain.WineDescriptor
	if err := json.Unmarshal([]byte(args[0].String()), &target); err != nil {
		return makeError("invalid wine JSON: " + err.Error())
	}

	res, err := resolveUC.Resolve(context.Background(), target)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"matched": res.Matched(),
		"score":   res.Score,
		"wine":    res.Wine,
	})
}

func pairDish(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: cellarPair(dish, [limit], [user])")
	}

	q := domain.PairingQuery{Dish: args[0].String()}
	if len(args) > 1 {
		q.Limit = args[1].Int()
	}
	if len(args) > 2 {
		q.UserID = args[2].String()
	}

	resp, err := pairUC.Pair(context.Background(), q)
	if err != nil {
		return makeError(err.Error())
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return makeError(err.Error())
	}
	return string(data)
}

func clearCatalog(this js.Value, args []js.Value) interface{} {
	reset()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	wines, _ := store.ListWines(context.Background())

	names := make([]string, len(wines))
	for i, w := range wines {
		names[i] = w.Name
	}

	return makeResult(map[string]interface{}{
		"totalWines": len(wines),
		"wines":      names,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}

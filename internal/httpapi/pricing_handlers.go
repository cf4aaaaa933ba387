package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"priceoptim-engine/internal/config"
	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/pricing"
	"priceoptim-engine/internal/store"
)

type PricingHandler struct {
	Store  *store.Store
	Pricer *pricing.Engine
	CfgVal *atomic.Value // config.Config
}

// constraintsOr fills in the configured defaults when the request carries
// no constraints.
func (h PricingHandler) constraintsOr(c *domain.Constraints) domain.Constraints {
	if c != nil {
		return *c
	}
	out := domain.DefaultConstraints()
	cfg := h.CfgVal.Load().(config.Config)
	if cfg.Pricing.MinMarginPercent > 0 {
		out.MinMarginPercent = cfg.Pricing.MinMarginPercent
	}
	if cfg.Pricing.MaxPriceIncreasePercent > 0 {
		out.MaxPriceIncreasePercent = cfg.Pricing.MaxPriceIncreasePercent
	}
	if cfg.Pricing.Strategy != "" {
		out.Strategy = cfg.Pricing.Strategy
	}
	out.PsychologicalPricing = cfg.Pricing.PsychologicalPricing
	return out
}

func (h PricingHandler) OptimizeSingle(w http.ResponseWriter, r *http.Request) {
	var req OptimizeSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	prod, err := h.Store.GetProduct(r.Context(), req.ProductID)
	if errors.Is(err, store.ErrProductNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if prod.UnitCost <= 0 || prod.CurrentPrice <= 0 {
		WriteError(w, r, http.StatusUnprocessableEntity, "invalid_product", "product needs a positive unit cost and current price")
		return
	}

	comp := h.competitorPrices(r.Context(), prod.ID)
	rec := h.Pricer.CalcRecommendation(
		r.Context(),
		prod.UnitCost, prod.CurrentPrice, comp,
		h.constraintsOr(req.Constraints),
		pricing.ProductMeta{ID: prod.ID, Name: prod.Name, Category: prod.Category, Brand: prod.Brand},
		true,
	)

	if err := h.Store.InsertRecommendation(r.Context(), rec); err != nil {
		log.Printf("[pricing] persist recommendation for %s: %v", prod.ID, err)
	}
	writeJSON(w, rec)
}

func (h PricingHandler) OptimizeBatch(w http.ResponseWriter, r *http.Request) {
	var req OptimizeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if len(req.ProductIDs) > 0 {
		want := make(map[string]bool, len(req.ProductIDs))
		for _, id := range req.ProductIDs {
			want[id] = true
		}
		kept := products[:0]
		for _, p := range products {
			if want[p.ID] {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	// Optionally reuse recent recommendations instead of recomputing.
	useCache := r.URL.Query().Get("use_cache") != "false"
	maxAge := 24
	if v := r.URL.Query().Get("cache_max_age_hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxAge = n
		}
	}
	cached := map[string]domain.Recommendation{}
	if useCache {
		recent, err := h.Store.LatestRecommendationsSince(r.Context(), time.Now().Add(-time.Duration(maxAge)*time.Hour))
		if err == nil {
			for _, rec := range recent {
				cached[rec.ProductID] = rec
			}
		}
	}

	constraints := h.constraintsOr(req.Constraints)
	var resp OptimizeBatchResponse
	for _, p := range products {
		if rec, ok := cached[p.ID]; ok {
			resp.Recommendations = append(resp.Recommendations, rec)
			continue
		}
		if p.UnitCost <= 0 || p.CurrentPrice <= 0 {
			resp.Skipped = append(resp.Skipped, p.ID)
			continue
		}
		comp := h.competitorPrices(r.Context(), p.ID)
		rec := h.Pricer.CalcRecommendation(
			r.Context(),
			p.UnitCost, p.CurrentPrice, comp,
			constraints,
			pricing.ProductMeta{ID: p.ID, Name: p.Name, Category: p.Category, Brand: p.Brand},
			true,
		)
		if err := h.Store.InsertRecommendation(r.Context(), rec); err != nil {
			log.Printf("[pricing] persist recommendation for %s: %v", p.ID, err)
		}
		resp.Recommendations = append(resp.Recommendations, rec)
	}
	writeJSON(w, resp)
}

func (h PricingHandler) Cached(w http.ResponseWriter, r *http.Request) {
	maxAge := 24
	if v := r.URL.Query().Get("max_age_hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxAge = n
		}
	}
	recs, err := h.Store.LatestRecommendationsSince(r.Context(), time.Now().Add(-time.Duration(maxAge)*time.Hour))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{
		"recommendations": recs,
		"cache_info": map[string]any{
			"cached_products": len(recs),
			"cache_age_hours": maxAge,
		},
	})
}

// competitorPrices returns the matched prices for one product from the
// latest finished run. No finished run means no competitor signal.
func (h PricingHandler) competitorPrices(ctx context.Context, productID string) []float64 {
	run, err := h.Store.LatestFinishedRun(ctx)
	if err != nil {
		return nil
	}
	prices, err := h.Store.CompetitorPrices(ctx, run.ID, productID)
	if err != nil {
		return nil
	}
	return prices
}

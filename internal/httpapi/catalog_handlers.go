package httpapi

import (
	"errors"
	"net/http"
	"time"

	"priceoptim-engine/internal/store"
)

type CatalogHandler struct {
	Store *store.Store
}

func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	out := make([]ProductOut, 0, len(products))
	for _, p := range products {
		margin := 0.0
		if p.CurrentPrice > 0 {
			margin = (p.CurrentPrice - p.UnitCost) / p.CurrentPrice * 100
		}
		out = append(out, ProductOut{
			ID:           p.ID,
			Name:         p.Name,
			Category:     p.Category,
			Brand:        p.Brand,
			UnitCost:     p.UnitCost,
			CurrentPrice: p.CurrentPrice,
			Currency:     p.Currency,
			Margin:       margin,
		})
	}
	writeJSON(w, out)
}

func (h CatalogHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SeedCatalog(r.Context()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	entries, err := h.Store.ListCatalog(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "products": len(entries)})
}

func (h CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListCatalog(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"products": len(entries), "seeded": len(entries) > 0})
}

// DashboardStats aggregates the KPI card numbers for the front page.
func (h CatalogHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	var margins []float64
	var totalRevenue float64
	for _, p := range products {
		if p.CurrentPrice > 0 {
			margins = append(margins, (p.CurrentPrice-p.UnitCost)/p.CurrentPrice*100)
			totalRevenue += p.CurrentPrice
		}
	}
	avgMargin := 0.0
	for _, m := range margins {
		avgMargin += m
	}
	if len(margins) > 0 {
		avgMargin /= float64(len(margins))
	}

	// Recent recommendations feed the uplift estimate.
	recs, _ := h.Store.LatestRecommendationsSince(r.Context(), time.Now().Add(-7*24*time.Hour))
	var profitUplift, absChange float64
	for _, rec := range recs {
		if rec.ExpectedProfitChange > 0 {
			profitUplift += rec.ExpectedProfitChange
		}
		if rec.PriceChangePercent < 0 {
			absChange -= rec.PriceChangePercent
		} else {
			absChange += rec.PriceChangePercent
		}
	}
	potentialUplift := 0.0
	if totalRevenue > 0 && profitUplift > 0 {
		potentialUplift = profitUplift / totalRevenue * 100
	}
	avgPriceChange := 0.0
	if len(recs) > 0 {
		avgPriceChange = absChange / float64(len(recs))
	}

	out := map[string]any{
		"total_products":   len(products),
		"avg_margin":       round1(avgMargin),
		"potential_uplift": round1(potentialUplift),
		"avg_price_change": round1(avgPriceChange),
	}
	if run, err := h.Store.LatestFinishedRun(r.Context()); err == nil {
		if run.CompletedAt != nil {
			out["last_scrape_date"] = run.CompletedAt.Format(time.RFC3339)
		}
		out["scraping_stats"] = map[string]any{
			"stores_scraped": run.StoresCompleted,
			"stores_total":   run.StoresTotal,
			"products_found": run.ProductsFound,
		}
	} else if errors.Is(err, store.ErrRunNotFound) {
		out["last_scrape_date"] = nil
		out["scraping_stats"] = nil
	}
	writeJSON(w, out)
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}

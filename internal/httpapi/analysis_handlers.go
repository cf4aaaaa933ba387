package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"priceoptim-engine/internal/store"
)

type AnalysisHandler struct {
	Store *store.Store
}

// Categories compares our average price against competitor spread per
// category, over the latest finished run.
func (h AnalysisHandler) Categories(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.LatestFinishedRun(r.Context())
	if errors.Is(err, store.ErrRunNotFound) {
		writeJSON(w, []CategoryAnalysisOut{})
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	rows, err := h.Store.CategoryPriceRows(r.Context(), run.ID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	type bucket struct {
		ours []float64
		comp []float64
	}
	byCat := map[string]*bucket{}
	var order []string
	for _, row := range rows {
		b, ok := byCat[row.Category]
		if !ok {
			b = &bucket{}
			byCat[row.Category] = b
			order = append(order, row.Category)
		}
		b.ours = append(b.ours, row.OurPrice)
		b.comp = append(b.comp, row.CompPrice)
	}

	out := make([]CategoryAnalysisOut, 0, len(order))
	for _, cat := range order {
		b := byCat[cat]
		ourAvg := avg(b.ours)

		var compMin, compMax, compMedian float64
		position := "unknown"
		opportunity := 0.0
		if len(b.comp) > 0 {
			sorted := append([]float64(nil), b.comp...)
			sort.Float64s(sorted)
			compMin = sorted[0]
			compMax = sorted[len(sorted)-1]
			compMedian = sorted[len(sorted)/2]

			switch {
			case ourAvg < compMedian*0.9:
				position = "below"
			case ourAvg > compMedian*1.1:
				position = "above"
			default:
				position = "competitive"
			}
			if ourAvg > 0 {
				opportunity = (compMedian - ourAvg) / ourAvg * 100
				if opportunity < 0 {
					opportunity = 0
				}
			}
		}

		out = append(out, CategoryAnalysisOut{
			Category:             cat,
			OurAvgPrice:          round2(ourAvg),
			CompetitorMin:        round2(compMin),
			CompetitorMax:        round2(compMax),
			CompetitorMedian:     round2(compMedian),
			MarketPosition:       position,
			Opportunity:          round1(opportunity),
			Products:             distinct(b.ours),
			CompetitorDataPoints: len(b.comp),
		})
	}
	writeJSON(w, out)
}

// Stores profiles each competitor store by price level and catalog overlap
// over the latest finished run.
func (h AnalysisHandler) Stores(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.LatestFinishedRun(r.Context())
	if errors.Is(err, store.ErrRunNotFound) {
		writeJSON(w, []StoreAnalysisOut{})
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	rows, err := h.Store.StorePriceRows(r.Context(), run.ID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	type bucket struct {
		prices  []float64
		matched map[string]bool
		total   int
	}
	byStore := map[string]*bucket{}
	var order []string
	for _, row := range rows {
		b, ok := byStore[row.StoreName]
		if !ok {
			b = &bucket{matched: map[string]bool{}}
			byStore[row.StoreName] = b
			order = append(order, row.StoreName)
		}
		b.prices = append(b.prices, row.Price)
		b.total++
		if row.MatchedID != "" {
			b.matched[row.MatchedID] = true
		}
	}

	out := make([]StoreAnalysisOut, 0, len(order))
	for _, name := range order {
		b := byStore[name]
		avgPrice := avg(b.prices)

		priceRange := "€0-€0"
		if len(b.prices) > 0 {
			lo, hi := b.prices[0], b.prices[0]
			for _, p := range b.prices[1:] {
				if p < lo {
					lo = p
				}
				if p > hi {
					hi = p
				}
			}
			priceRange = fmt.Sprintf("€%.0f-€%.0f", lo, hi)
		}

		positioning := "value"
		if avgPrice > 80 {
			positioning = "luxury"
		} else if avgPrice > 50 {
			positioning = "premium"
		}

		overlapPct := 0.0
		if b.total > 0 {
			overlapPct = float64(len(b.matched)) / float64(b.total) * 100
		}

		out = append(out, StoreAnalysisOut{
			Store:          name,
			AvgPrice:       round2(avgPrice),
			PriceRange:     priceRange,
			Products:       b.total,
			Overlap:        len(b.matched),
			OverlapPercent: round1(overlapPct),
			Positioning:    positioning,
		})
	}
	writeJSON(w, out)
}

func avg(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func distinct(xs []float64) int {
	seen := map[float64]bool{}
	for _, x := range xs {
		seen[x] = true
	}
	return len(seen)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}

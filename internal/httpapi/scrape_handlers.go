package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"priceoptim-engine/internal/config"
	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/events"
	"priceoptim-engine/internal/store"
)

type RunsHandler struct {
	Store    *store.Store
	Hub      *events.Hub
	CfgVal   *atomic.Value // config.Config
	StartRun func(runID string, terms, stores []string)
	StopRun  func(runID string)
}

func (h RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartScrapingRequest
	// Empty body means defaults; a malformed one is a client error.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	terms := req.TargetTerms
	if len(terms) == 0 {
		cfg := h.CfgVal.Load().(config.Config)
		terms = cfg.Scraping.DefaultTerms
	}

	runID, err := h.Store.CreateRun(r.Context(), terms)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	h.Hub.Publish(events.MakeEvent(runID, events.TypeRunStarted, map[string]any{"terms": terms}))
	h.StartRun(runID, terms, req.Stores)

	writeJSON(w, StartScrapingResponse{RunID: runID})
}

func (h RunsHandler) StopByPath(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/routes/stop-scraping/")
	if runID == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "run id required")
		return
	}

	if err := h.Store.StopRun(r.Context(), runID); err != nil {
		WriteError(w, r, http.StatusBadRequest, "cannot_stop", err.Error())
		return
	}
	if h.StopRun != nil {
		h.StopRun(runID)
	}

	h.Hub.Publish(events.MakeEvent(runID, events.TypeRunStopped, nil))
	writeJSON(w, map[string]any{"message": "scraping run stopped", "run_id": runID})
}

func (h RunsHandler) ProgressByPath(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/routes/scraping-progress/")
	run, err := h.Store.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "scraping run not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, ScrapingProgress{
		Status:          run.Status,
		StoresTotal:     run.StoresTotal,
		StoresCompleted: run.StoresCompleted,
		ProductsFound:   run.ProductsFound,
	})
}

func (h RunsHandler) ResultsByPath(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/routes/scraping-results/")
	items, err := h.Store.ListScrapedByRun(r.Context(), runID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, i := range items {
		out = append(out, map[string]any{
			"run_id":             i.RunID,
			"store_name":         i.StoreName,
			"product_url":        i.ProductURL,
			"title":              i.Title,
			"price":              i.Price,
			"currency":           i.Currency,
			"brand":              i.Brand,
			"material":           i.Material,
			"size":               i.Size,
			"search_term":        i.SearchTerm,
			"matched_catalog_id": i.MatchedCatalogID,
			"similarity_score":   i.SimilarityScore,
			"match_reason":       i.MatchReason,
			"created_at":         i.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, out)
}

func (h RunsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.LatestRun(r.Context())
	if errors.Is(err, store.ErrRunNotFound) {
		writeJSON(w, nil)
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, runSummary(run))
}

func (h RunsHandler) ExportCSVByPath(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/routes/runs/"), "/export.csv")
	items, err := h.Store.ListScrapedByRun(r.Context(), runID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"run_id", "store_name", "product_url", "title", "price", "currency",
		"brand", "material", "size", "search_term",
		"matched_catalog_id", "similarity_score", "match_reason", "created_at",
	})
	for _, i := range items {
		_ = cw.Write([]string{
			i.RunID, i.StoreName, i.ProductURL, i.Title,
			fmt.Sprintf("%g", i.Price), i.Currency,
			i.Brand, i.Material, i.Size, i.SearchTerm,
			i.MatchedCatalogID, fmt.Sprintf("%g", i.SimilarityScore), i.MatchReason,
			i.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}

func runSummary(run domain.ScrapingRun) RunSummary {
	var completed *string
	if run.CompletedAt != nil {
		s := run.CompletedAt.Format(time.RFC3339)
		completed = &s
	}
	return RunSummary{
		ID:              run.ID,
		Status:          run.Status,
		StartedAt:       run.StartedAt.Format(time.RFC3339),
		CompletedAt:     completed,
		TargetTerms:     run.TargetTerms,
		StoresTotal:     run.StoresTotal,
		StoresCompleted: run.StoresCompleted,
		ProductsFound:   run.ProductsFound,
	}
}

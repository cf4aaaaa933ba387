package scrape

import (
	"context"

	"priceoptim-engine/internal/domain"
)

// Engine is the per-store adapter: platform detection, predictive-search
// JSON endpoints when the platform supports them, HTML/JSON-LD fallback
// otherwise. Results come back already relevance-filtered.
type Engine struct {
	fetcher  *Fetcher
	detector *PlatformDetector
}

func NewEngine(metrics *Metrics) (*Engine, error) {
	fetcher := NewFetcher(metrics)
	detector, err := NewPlatformDetector(fetcher)
	if err != nil {
		return nil, err
	}
	return &Engine{fetcher: fetcher, detector: detector}, nil
}

// Fetcher exposes the underlying fetcher so tests can swap the transport.
func (e *Engine) Fetcher() *Fetcher { return e.fetcher }

// Search runs one (store, term) query: predictive first on platform stores,
// HTML fallback in every other case or when predictive finds nothing.
func (e *Engine) Search(ctx context.Context, baseURL, term string) []domain.Listing {
	if e.detector.Detect(ctx, baseURL) {
		if res := e.SearchPredictive(ctx, baseURL, term); len(res) > 0 {
			return res
		}
	}
	return e.SearchHTML(ctx, baseURL, term)
}

package scrape

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/events"
	"priceoptim-engine/internal/match"
)

const (
	maxConcurrentStores = 3
	maxTermVariants     = 5
	enoughResults       = 15
	persistCapPerTerm   = 20
)

// Titles that mark obvious test or placeholder listings.
var junkTitleWords = []string{"test", "sample", "demo", "lorem", "ipsum", "dummy", "placeholder", "coming soon"}

// RunStore is what the orchestrator needs from persistence. Counter
// mutations must be relative (x = x + 1) on the store side so concurrent
// workers never lose updates.
type RunStore interface {
	ListCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	SetStoresTotal(ctx context.Context, runID string, total int) error
	MarkRunFailed(ctx context.Context, runID string, runErr domain.RunError) error
	AppendScraped(ctx context.Context, items []domain.ScrapedProduct) error
	AddProductsFound(ctx context.Context, runID string, n int) error
	AppendRunErrors(ctx context.Context, runID string, errs []domain.RunError) error
	// CompleteStore increments stores_completed and finalizes the run to
	// completed when every store is done. Returns true on finalization.
	CompleteStore(ctx context.Context, runID string) (bool, error)
	// FinalizeIfDone finalizes a run whose store count is already satisfied
	// (the zero-store case).
	FinalizeIfDone(ctx context.Context, runID string) (bool, error)
}

// Searcher is the per-store search capability (the Engine in production,
// a stub in tests).
type Searcher interface {
	Search(ctx context.Context, baseURL, term string) []domain.Listing
}

// Orchestrator drives one scraping run: bounded-concurrency store workers,
// term expansion, filtering, matching and per-term-batch persistence.
type Orchestrator struct {
	Store    RunStore
	Searcher Searcher
	Limiter  *StoreLimiter
	Registry []Store
	Metrics  *Metrics

	// Semantic is optional; when nil (or disabled) the fuzzy matcher runs
	// exclusively.
	Semantic *match.SemanticMatcher
	Fuzzy    match.FuzzyMatcher

	// Notify receives run-progress event payloads. Optional.
	Notify func(event string)
}

// Run executes the scraping run to a terminal state. Per-store failures are
// recorded on the run and never abort sibling stores.
func (o *Orchestrator) Run(ctx context.Context, runID string, targetTerms []string, storeFilter []string) error {
	log.Printf("[run:%s] starting for %d terms: %v", runID, len(targetTerms), targetTerms)
	if o.Metrics != nil {
		o.Metrics.RunsStartedTotal.Inc()
	}

	if len(targetTerms) == 0 {
		log.Printf("[run:%s] no target terms provided, failing run", runID)
		if err := o.Store.MarkRunFailed(ctx, runID, domain.RunError{Error: "no target terms provided"}); err != nil {
			return err
		}
		o.publish(events.MakeEvent(runID, events.TypeRunFailed, map[string]any{"error": "no target terms provided"}))
		return nil
	}

	catalog, err := o.Store.ListCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Printf("[run:%s] loaded %d catalog products for matching", runID, len(catalog))

	toScrape := FilterStores(o.Registry, storeFilter)
	if err := o.Store.SetStoresTotal(ctx, runID, len(toScrape)); err != nil {
		return fmt.Errorf("set stores_total: %w", err)
	}
	log.Printf("[run:%s] will scrape %d stores", runID, len(toScrape))

	if len(toScrape) == 0 {
		_, err := o.Store.FinalizeIfDone(ctx, runID)
		return err
	}

	sem := semaphore.NewWeighted(maxConcurrentStores)
	var g errgroup.Group
	for _, st := range toScrape {
		st := st
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				// Context gone: still count the store so the run terminates.
				o.completeStore(runID, st.Name)
				return nil
			}
			if o.Metrics != nil {
				o.Metrics.StoresInFlight.Inc()
			}
			defer func() {
				if o.Metrics != nil {
					o.Metrics.StoresInFlight.Dec()
				}
				sem.Release(1)
			}()

			if err := o.scrapeStore(ctx, runID, st, targetTerms, catalog); err != nil {
				log.Printf("[%s] fatal error during scraping: %v", st.Name, err)
				o.recordStoreError(runID, st.Name, err)
			}
			o.completeStore(runID, st.Name)
			return nil
		})
	}
	_ = g.Wait()
	log.Printf("[run:%s] finished", runID)
	return nil
}

func (o *Orchestrator) scrapeStore(ctx context.Context, runID string, st Store, terms []string, catalog []domain.CatalogEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store worker panic: %v", r)
		}
	}()

	log.Printf("[%s] starting scrape", st.Name)
	o.publish(events.MakeEvent(runID, events.TypeStoreStarted, map[string]any{"store": st.Name}))
	for idx, term := range terms {
		log.Printf("[%s] searching for %q (%d/%d)", st.Name, term, idx+1, len(terms))

		results, termErrs := o.searchTerm(ctx, st, term)
		if len(results) == 0 {
			log.Printf("[%s] no results for any variation of %q", st.Name, term)
			termErrs = append(termErrs, domain.RunError{Store: st.Name, Term: term, Error: "no results found"})
			o.appendErrors(runID, termErrs)
			continue
		}

		saved, matched := o.persistTerm(ctx, runID, st, term, results, catalog)
		log.Printf("[%s] saved %d products for %q (%d matched to catalog)", st.Name, saved, term, matched)
		o.appendErrors(runID, termErrs)
	}
	return nil
}

// searchTerm tries up to maxTermVariants variations, deduplicating by URL,
// stopping early once enough distinct results accumulated.
func (o *Orchestrator) searchTerm(ctx context.Context, st Store, term string) ([]domain.Listing, []domain.RunError) {
	var all []domain.Listing
	var errs []domain.RunError
	seenURLs := make(map[string]bool)

	variants := ExpandTerms(term)
	if len(variants) > maxTermVariants {
		variants = variants[:maxTermVariants]
	}
	for _, variant := range variants {
		if err := o.Limiter.Wait(ctx, st.Name); err != nil {
			errs = append(errs, domain.RunError{Store: st.Name, Term: term, Error: err.Error()})
			break
		}
		results := o.Searcher.Search(ctx, st.BaseURL, variant)
		if len(results) == 0 {
			continue
		}
		log.Printf("[%s] found %d results for %q", st.Name, len(results), variant)
		for _, r := range results {
			if r.ProductURL == "" || seenURLs[r.ProductURL] {
				continue
			}
			seenURLs[r.ProductURL] = true
			all = append(all, r)
		}
		if len(all) >= enoughResults {
			break
		}
	}
	return all, errs
}

// persistTerm filters, matches and stores one term's results as a single
// batch so partial progress survives a later failure.
func (o *Orchestrator) persistTerm(ctx context.Context, runID string, st Store, term string, results []domain.Listing, catalog []domain.CatalogEntry) (saved, matched int) {
	if len(results) > persistCapPerTerm {
		results = results[:persistCapPerTerm]
	}

	var batch []domain.ScrapedProduct
	for _, item := range results {
		if isJunkTitle(item.Title) {
			continue
		}
		if item.Price <= 0 {
			continue
		}
		// Re-verify: individual extraction paths should have filtered, but
		// the matcher must never see unrelated noise.
		if !IsRelevant(item.Title, term) {
			continue
		}

		res := o.matchListing(ctx, item.Title, catalog)
		if res.ProductID != "" {
			matched++
		}

		url := item.ProductURL
		if url == "" {
			url = st.BaseURL
		}
		batch = append(batch, domain.ScrapedProduct{
			RunID:            runID,
			StoreName:        st.Name,
			ProductURL:       url,
			Title:            item.Title,
			Price:            item.Price,
			Currency:         orDefault(item.Currency, "USD"),
			SearchTerm:       term,
			MatchedCatalogID: res.ProductID,
			SimilarityScore:  res.Score,
			MatchReason:      res.Reason,
			CreatedAt:        time.Now().UTC(),
		})
	}
	if len(batch) == 0 {
		return 0, 0
	}

	if err := o.Store.AppendScraped(ctx, batch); err != nil {
		log.Printf("[%s] persist error for %q: %v", st.Name, term, err)
		o.appendErrors(runID, []domain.RunError{{Store: st.Name, Term: term, Error: "persist: " + err.Error()}})
		return 0, 0
	}
	if err := o.Store.AddProductsFound(ctx, runID, len(batch)); err != nil {
		log.Printf("[run:%s] counter update failed: %v", runID, err)
	}
	if o.Metrics != nil {
		o.Metrics.AddItemsSaved(len(batch))
	}
	o.publish(events.MakeEvent(runID, events.TypeProductsSaved, map[string]any{"store": st.Name, "count": len(batch)}))
	return len(batch), matched
}

// matchListing prefers the semantic matcher when configured, degrading
// per-item to the fuzzy matcher on backend failure.
func (o *Orchestrator) matchListing(ctx context.Context, title string, catalog []domain.CatalogEntry) match.Result {
	if o.Semantic != nil {
		return o.Semantic.Match(ctx, title, "", catalog)
	}
	return o.Fuzzy.Match(title, "", catalog)
}

func (o *Orchestrator) completeStore(runID, storeName string) {
	// Completion bookkeeping must survive a cancelled run context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	finalized, err := o.Store.CompleteStore(ctx, runID)
	if err != nil {
		log.Printf("[%s] failed to mark store completed: %v", storeName, err)
		return
	}
	o.publish(events.MakeEvent(runID, events.TypeStoreCompleted, map[string]any{"store": storeName}))
	if finalized {
		log.Printf("[run:%s] completed", runID)
		o.publish(events.MakeEvent(runID, events.TypeRunCompleted, nil))
	}
}

func (o *Orchestrator) recordStoreError(runID, storeName string, err error) {
	o.appendErrors(runID, []domain.RunError{{
		Store: storeName,
		Error: "fatal error: " + err.Error(),
		At:    time.Now().UTC().Format(time.RFC3339),
	}})
}

func (o *Orchestrator) appendErrors(runID string, errs []domain.RunError) {
	if len(errs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.Store.AppendRunErrors(ctx, runID, errs); err != nil {
		log.Printf("[run:%s] failed to append errors: %v", runID, err)
	}
}

func (o *Orchestrator) publish(event string) {
	if o.Notify != nil {
		o.Notify(event)
	}
}

func isJunkTitle(title string) bool {
	low := strings.ToLower(title)
	for _, w := range junkTitleWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

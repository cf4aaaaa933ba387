package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"priceoptim-engine/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := Migrate(s.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, []string{"sunglasses", "bottle"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != domain.RunRunning {
		t.Fatalf("status = %q, want running", run.Status)
	}
	if len(run.TargetTerms) != 2 || run.TargetTerms[0] != "sunglasses" {
		t.Fatalf("terms = %v", run.TargetTerms)
	}
	if run.CompletedAt != nil {
		t.Fatalf("fresh run has completed_at: %v", run.CompletedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRun(context.Background(), "no-such-run"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
	if _, err := s.LatestFinishedRun(context.Background()); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("latest on empty db: err = %v, want ErrRunNotFound", err)
	}
}

func TestRelativeCountersAndFinalize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, []string{"mug"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := s.SetStoresTotal(ctx, id, 2); err != nil {
		t.Fatalf("set total: %v", err)
	}
	if err := s.AddProductsFound(ctx, id, 3); err != nil {
		t.Fatalf("add products: %v", err)
	}
	if err := s.AddProductsFound(ctx, id, 2); err != nil {
		t.Fatalf("add products: %v", err)
	}

	finalized, err := s.CompleteStore(ctx, id)
	if err != nil {
		t.Fatalf("complete store: %v", err)
	}
	if finalized {
		t.Fatalf("run finalized with one of two stores done")
	}
	finalized, err = s.CompleteStore(ctx, id)
	if err != nil {
		t.Fatalf("complete store: %v", err)
	}
	if !finalized {
		t.Fatalf("run not finalized after last store")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != domain.RunCompleted || run.CompletedAt == nil {
		t.Fatalf("run = %+v, want completed with timestamp", run)
	}
	if run.ProductsFound != 5 || run.StoresCompleted != 2 {
		t.Fatalf("counters: products=%d stores=%d", run.ProductsFound, run.StoresCompleted)
	}
}

func TestStopRunIsNeverReversed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, []string{"mug"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if err := s.SetStoresTotal(ctx, id, 1); err != nil {
		t.Fatalf("set total: %v", err)
	}
	if err := s.StopRun(ctx, id); err != nil {
		t.Fatalf("stop run: %v", err)
	}

	// The straggling worker still reports completion; the stopped status
	// must survive it.
	finalized, err := s.CompleteStore(ctx, id)
	if err != nil {
		t.Fatalf("complete store: %v", err)
	}
	if finalized {
		t.Fatalf("stopped run reported as finalized")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run.Status != domain.RunStopped {
		t.Fatalf("status = %q, want stopped", run.Status)
	}
	if len(run.Errors) != 1 || run.Errors[0].Error != "scraping stopped by user" {
		t.Fatalf("stop note missing: %+v", run.Errors)
	}

	if err := s.StopRun(ctx, id); err == nil {
		t.Fatalf("stopping a stopped run should fail")
	}
}

func TestZeroStoreRunFinalizes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, []string{"mug"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	finalized, err := s.FinalizeIfDone(ctx, id)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !finalized {
		t.Fatalf("zero-store run not finalized")
	}
}

func TestAppendScrapedAndCompetitorPrices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateRun(ctx, []string{"sunglasses"})
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	items := []domain.ScrapedProduct{
		{RunID: id, StoreName: "S1", ProductURL: "u1", Title: "Bamboo Shades", Price: 79.99, Currency: "EUR", SearchTerm: "sunglasses", MatchedCatalogID: "ECO-SUN-001", SimilarityScore: 0.8},
		{RunID: id, StoreName: "S2", ProductURL: "u2", Title: "Wood Sunglasses", Price: 95, Currency: "EUR", SearchTerm: "sunglasses", MatchedCatalogID: "ECO-SUN-001"},
		{RunID: id, StoreName: "S2", ProductURL: "u3", Title: "Unmatched Shades", Price: 50, Currency: "EUR", SearchTerm: "sunglasses"},
	}
	if err := s.AppendScraped(ctx, items); err != nil {
		t.Fatalf("append scraped: %v", err)
	}

	listed, err := s.ListScrapedByRun(ctx, id)
	if err != nil {
		t.Fatalf("list scraped: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed %d items, want 3", len(listed))
	}
	if listed[2].MatchedCatalogID != "" {
		t.Fatalf("unmatched item got a catalog id: %+v", listed[2])
	}

	prices, err := s.CompetitorPrices(ctx, id, "ECO-SUN-001")
	if err != nil {
		t.Fatalf("competitor prices: %v", err)
	}
	if len(prices) != 2 || prices[0] != 79.99 || prices[1] != 95 {
		t.Fatalf("prices = %v", prices)
	}
}

func TestSeedCatalogIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SeedCatalog(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.SeedCatalog(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	catalog, err := s.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(catalog) != 6 {
		t.Fatalf("catalog size = %d, want 6", len(catalog))
	}

	p, err := s.GetProduct(ctx, "ECO-SUN-001")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Name != "Bamboo Sunglasses Classic" || p.CurrentPrice != 89.99 {
		t.Fatalf("product = %+v", p)
	}

	if _, err := s.GetProduct(ctx, "NOPE"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestLatestRecommendationsSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := domain.Recommendation{
		ProductID: "P1", CurrentPrice: 20, RecommendedPrice: 21, RiskLevel: "low",
		ConfidenceScore: 0.7, Scenarios: map[string]domain.Scenario{"recommended": {Price: 21}},
		ConstraintFlags: []string{}, CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	fresh := old
	fresh.RecommendedPrice = 22
	fresh.CreatedAt = time.Now().UTC()
	other := old
	other.ProductID = "P2"
	other.CreatedAt = time.Now().UTC()

	for _, r := range []domain.Recommendation{old, fresh, other} {
		if err := s.InsertRecommendation(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.LatestRecommendationsSince(ctx, time.Now().UTC().Add(-30*time.Minute))
	if err != nil {
		t.Fatalf("latest since: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d recommendations, want 2 (one per product): %+v", len(got), got)
	}
	if got[0].ProductID != "P1" || got[0].RecommendedPrice != 22 {
		t.Fatalf("stale recommendation won: %+v", got[0])
	}
	if got[0].Scenarios["recommended"].Price != 21 {
		t.Fatalf("scenarios not round-tripped: %+v", got[0].Scenarios)
	}

	none, err := s.LatestRecommendationsSince(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("latest since future: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("future cutoff returned %d recommendations", len(none))
	}

	history, err := s.ListRecommendations(ctx, "P1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].RecommendedPrice != 22 {
		t.Fatalf("history order wrong: %+v", history)
	}
}

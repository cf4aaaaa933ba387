package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"priceoptim-engine/internal/config"
	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/pricing"
	"priceoptim-engine/internal/store"
)

func newPricingHandler(s *store.Store) PricingHandler {
	var cfg atomic.Value
	cfg.Store(config.Config{})
	return PricingHandler{Store: s, Pricer: &pricing.Engine{}, CfgVal: &cfg}
}

func TestOptimizeSingleRejectsNonPositiveEconomics(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertProduct(context.Background(), domain.Product{
		ID: "ECO-MUG-003", Name: "Ceramic Mug", Category: "Mugs",
		UnitCost: 0, CurrentPrice: 24.99, Currency: "EUR",
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	h := newPricingHandler(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/routes/pricing/optimize", strings.NewReader(`{"product_id":"ECO-MUG-003"}`))
	h.OptimizeSingle(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var out APIError
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error.Code != "invalid_product" {
		t.Fatalf("error code = %q, want invalid_product", out.Error.Code)
	}
}

func TestOptimizeSingleComputesRecommendation(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertProduct(context.Background(), domain.Product{
		ID: "ECO-MUG-003", Name: "Ceramic Mug", Category: "Mugs",
		UnitCost: 10, CurrentPrice: 20, Currency: "EUR",
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	h := newPricingHandler(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/routes/pricing/optimize", strings.NewReader(`{"product_id":"ECO-MUG-003"}`))
	h.OptimizeSingle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out domain.Recommendation
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ProductID != "ECO-MUG-003" || out.RecommendedPrice <= 0 {
		t.Fatalf("unexpected recommendation: %+v", out)
	}
}

func TestOptimizeSingleUnknownProduct(t *testing.T) {
	s := newTestStore(t)
	h := newPricingHandler(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/routes/pricing/optimize", strings.NewReader(`{"product_id":"NOPE"}`))
	h.OptimizeSingle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

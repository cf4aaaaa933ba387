package pricing

import (
	"context"
	"testing"

	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/insight"
)

// stubInsight always answers with a fixed insight.
type stubInsight struct {
	ins *domain.MarketInsight
}

func (s *stubInsight) TryGetInsight(context.Context, domain.PricingContext) (*domain.MarketInsight, bool) {
	if s.ins == nil {
		return nil, false
	}
	return s.ins, true
}

func plainConstraints() domain.Constraints {
	c := domain.DefaultConstraints()
	c.PsychologicalPricing = false
	return c
}

func TestCalcRecommendationCompetitiveMedian(t *testing.T) {
	e := &Engine{}
	rec := e.CalcRecommendation(context.Background(), 10, 20, []float64{18, 22, 25},
		plainConstraints(), ProductMeta{ID: "P1", Name: "Mug"}, false)

	if rec.RecommendedPrice != 22 {
		t.Fatalf("recommended = %v, want 22 (median of competitors)", rec.RecommendedPrice)
	}
	if len(rec.ConstraintFlags) != 0 {
		t.Fatalf("unexpected flags: %v", rec.ConstraintFlags)
	}
	if rec.ConfidenceScore != 0.7 {
		t.Fatalf("confidence = %v, want 0.7 (0.4 + 0.1 per competitor)", rec.ConfidenceScore)
	}
	if rec.RiskLevel != "low" {
		t.Fatalf("risk = %q, want low", rec.RiskLevel)
	}
	if rec.PriceChangePercent != 10 {
		t.Fatalf("price change = %v%%, want 10", rec.PriceChangePercent)
	}
	if rec.ExpectedProfitChange != 2 {
		t.Fatalf("profit change = %v, want 2", rec.ExpectedProfitChange)
	}
}

func TestCalcRecommendationNoCompetitorsCapped(t *testing.T) {
	e := &Engine{}
	rec := e.CalcRecommendation(context.Background(), 10, 10, nil,
		plainConstraints(), ProductMeta{ID: "P1"}, false)

	// Min-margin target of 14 exceeds the 20% increase cap over 10.
	if rec.RecommendedPrice != 12 {
		t.Fatalf("recommended = %v, want 12 (capped)", rec.RecommendedPrice)
	}
	if !hasFlag(rec.ConstraintFlags, "capped_by_max_increase") {
		t.Fatalf("missing cap flag: %v", rec.ConstraintFlags)
	}
	if rec.ConfidenceScore != 0.3 {
		t.Fatalf("confidence = %v, want 0.3", rec.ConfidenceScore)
	}
	if rec.RiskLevel != "high" {
		t.Fatalf("risk = %q, want high", rec.RiskLevel)
	}
	if rec.PriceChangePercent != 20 {
		t.Fatalf("price change = %v%%, want 20", rec.PriceChangePercent)
	}
}

func TestCalcRecommendationNegativePricesIgnored(t *testing.T) {
	e := &Engine{}
	rec := e.CalcRecommendation(context.Background(), 10, 20, []float64{-5, 0, 18, 22, 25},
		plainConstraints(), ProductMeta{ID: "P1"}, false)
	if rec.RecommendedPrice != 22 {
		t.Fatalf("non-positive prices should be dropped, recommended = %v", rec.RecommendedPrice)
	}
	if rec.ConfidenceScore != 0.7 {
		t.Fatalf("confidence counts only positive prices: %v", rec.ConfidenceScore)
	}
}

func TestCalcRecommendationScenarios(t *testing.T) {
	e := &Engine{}
	rec := e.CalcRecommendation(context.Background(), 10, 20, []float64{18, 22, 25},
		plainConstraints(), ProductMeta{ID: "P1"}, false)

	cons, ok := rec.Scenarios["conservative"]
	if !ok {
		t.Fatalf("missing conservative scenario: %v", rec.Scenarios)
	}
	if cons.Price != round2(22*0.98) {
		t.Fatalf("conservative price = %v, want %v", cons.Price, round2(22*0.98))
	}
	aggr := rec.Scenarios["aggressive"]
	if aggr.Price != round2(22*1.03) {
		t.Fatalf("aggressive price = %v, want %v", aggr.Price, round2(22*1.03))
	}
	if recd := rec.Scenarios["recommended"]; recd.Price != 22 {
		t.Fatalf("recommended scenario = %v, want 22", recd.Price)
	}
	wantMargin := round2((22 - 10.0) / 22 * 100)
	if recd := rec.Scenarios["recommended"]; recd.ExpectedMargin != wantMargin {
		t.Fatalf("margin = %v, want %v", recd.ExpectedMargin, wantMargin)
	}
}

func TestCalcRecommendationInsightStrategyOverride(t *testing.T) {
	e := &Engine{Insight: &stubInsight{ins: &domain.MarketInsight{
		BrandPositioning: domain.PositioningLuxury,
		MarketSaturation: "low",
		SeasonalFactor:   1.0,
		Confidence:       0.9,
	}}}
	rec := e.CalcRecommendation(context.Background(), 10, 20, []float64{18, 20, 22, 24, 25},
		plainConstraints(), ProductMeta{ID: "P1", Name: "Silk Stole"}, true)

	// Luxury positioning promotes the strategy to premium: 75th percentile
	// (24) instead of the competitive median (22).
	if !hasFlag(rec.ConstraintFlags, "insight_luxury_positioning") {
		t.Fatalf("missing positioning flag: %v", rec.ConstraintFlags)
	}
	if rec.RecommendedPrice != 24 {
		t.Fatalf("recommended = %v, want 24 (premium percentile)", rec.RecommendedPrice)
	}
	if !hasFlag(rec.ConstraintFlags, "high_insight_confidence") {
		t.Fatalf("missing high-confidence flag: %v", rec.ConstraintFlags)
	}
	if rec.Insight == nil {
		t.Fatalf("insight not attached to recommendation")
	}
}

func TestCalcRecommendationElasticityDampensIncrease(t *testing.T) {
	e := &Engine{Insight: &stubInsight{ins: &domain.MarketInsight{
		DemandElasticity: -1.5,
		BrandPositioning: domain.PositioningCompetitive,
		SeasonalFactor:   1.0,
		Confidence:       0.6,
	}}}
	rec := e.CalcRecommendation(context.Background(), 5, 20, []float64{18, 22, 25},
		plainConstraints(), ProductMeta{ID: "P1"}, true)

	// Elastic demand: only 70% of the step from 20 to the 22 target.
	want := round2(20 + (22-20)*0.7)
	if rec.RecommendedPrice != want {
		t.Fatalf("recommended = %v, want %v (dampened)", rec.RecommendedPrice, want)
	}
	if !hasFlag(rec.ConstraintFlags, "insight_elasticity_adjustment") {
		t.Fatalf("missing elasticity flag: %v", rec.ConstraintFlags)
	}
}

func TestCalcRecommendationIgnoresInsightWhenDisabled(t *testing.T) {
	e := &Engine{Insight: &stubInsight{ins: &domain.MarketInsight{
		BrandPositioning: domain.PositioningLuxury,
		SeasonalFactor:   1.0,
		Confidence:       0.95,
	}}}
	rec := e.CalcRecommendation(context.Background(), 10, 20, []float64{18, 22, 25},
		plainConstraints(), ProductMeta{ID: "P1"}, false)
	if rec.Insight != nil {
		t.Fatalf("insight consulted despite useInsight=false")
	}
	if rec.RecommendedPrice != 22 {
		t.Fatalf("recommended = %v, want 22", rec.RecommendedPrice)
	}
}

func TestClassifyPosition(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		comp    []float64
		want    string
	}{
		{"no data", 10, nil, "unknown"},
		{"below", 15, []float64{18, 22, 25}, "below"},
		{"above", 30, []float64{18, 22, 25}, "above"},
		{"competitive", 22, []float64{18, 22, 25}, "competitive"},
	}
	for _, tt := range tests {
		if got := classifyPosition(tt.current, tt.comp); got != tt.want {
			t.Fatalf("%s: position = %q, want %q", tt.name, got, tt.want)
		}
	}
}

var _ insight.Provider = (*stubInsight)(nil)

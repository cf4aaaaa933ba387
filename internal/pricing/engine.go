package pricing

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"priceoptim-engine/internal/domain"
	"priceoptim-engine/internal/insight"
)

// ProductMeta is the descriptive context the engine passes to the insight
// provider and the psychological-pricing class lookup.
type ProductMeta struct {
	ID       string
	Name     string
	Category string
	Brand    string
}

// Engine computes price recommendations from competitor statistics,
// business constraints and an optional market-insight signal.
type Engine struct {
	// Insight is optional; a nil provider means rule-based pricing only.
	Insight insight.Provider
}

// CalcRecommendation computes a bounded, explainable recommendation.
// Callers must pass positive unitCost and currentPrice; for valid inputs
// the computation never fails — missing insight or competitor data only
// degrades confidence.
func (e *Engine) CalcRecommendation(
	ctx context.Context,
	unitCost, currentPrice float64,
	competitorPrices []float64,
	constraints domain.Constraints,
	meta ProductMeta,
	useInsight bool,
) domain.Recommendation {
	comp := make([]float64, 0, len(competitorPrices))
	for _, p := range competitorPrices {
		if p > 0 {
			comp = append(comp, p)
		}
	}

	var flags []string
	marketPosition := classifyPosition(currentPrice, comp)

	var ins *domain.MarketInsight
	if useInsight && e.Insight != nil {
		insCtx := domain.PricingContext{
			ProductName:      meta.Name,
			Category:         meta.Category,
			Brand:            meta.Brand,
			CurrentPrice:     currentPrice,
			UnitCost:         unitCost,
			CompetitorPrices: comp,
			MarketPosition:   marketPosition,
		}
		if got, ok := e.Insight.TryGetInsight(ctx, insCtx); ok {
			ins = got
			log.Printf("[pricing] insight for %s: positioning=%s elasticity=%.1f",
				meta.Name, ins.BrandPositioning, ins.DemandElasticity)
		}
	}

	target, flags := e.deriveTarget(unitCost, currentPrice, comp, constraints, ins, flags)

	// Never raise faster than the business allows.
	maxAllowed := currentPrice * (1 + constraints.MaxPriceIncreasePercent/100)
	if target > maxAllowed {
		target = maxAllowed
		flags = append(flags, "capped_by_max_increase")
	}

	insightPositioning := ""
	if ins != nil {
		insightPositioning = ins.BrandPositioning
	}

	var recPrice float64
	var psych *domain.PsychAnalysis
	if constraints.PsychologicalPricing {
		p, analysis := PsychRound(target, meta.Category, insightPositioning)
		recPrice = p
		psych = &analysis
	} else {
		recPrice = round2(target)
	}

	scenarios := e.buildScenarios(recPrice, unitCost, constraints, meta.Category, insightPositioning, ins)

	priceChangePct := 0.0
	if currentPrice != 0 {
		priceChangePct = (recPrice - currentPrice) / currentPrice * 100
	}
	expectedProfitChange := (recPrice - unitCost) - (currentPrice - unitCost)

	confidence := math.Min(1.0, 0.4+0.1*float64(len(comp)))
	if hasFlag(flags, "capped_by_max_increase") {
		confidence -= 0.1
	}
	if ins != nil {
		confidence = math.Min(1.0, confidence+0.2*ins.Confidence)
		if ins.Confidence > 0.8 {
			flags = append(flags, "high_insight_confidence")
		}
	}
	confidence = round2(math.Max(0.0, confidence))

	risk := "high"
	switch {
	case confidence >= 0.7:
		risk = "low"
	case confidence >= 0.4:
		risk = "medium"
	}

	rationale, sections := buildRationale(len(comp), constraints, ins)

	return domain.Recommendation{
		ProductID:            meta.ID,
		CurrentPrice:         round2(currentPrice),
		RecommendedPrice:     recPrice,
		PriceChangePercent:   round2(priceChangePct),
		ExpectedProfitChange: round2(expectedProfitChange),
		RiskLevel:            risk,
		ConfidenceScore:      confidence,
		Scenarios:            scenarios,
		Rationale:            rationale,
		RationaleSections:    sections,
		ConstraintFlags:      flags,
		Psych:                psych,
		Insight:              ins,
		CreatedAt:            time.Now().UTC(),
	}
}

func classifyPosition(currentPrice float64, comp []float64) string {
	if len(comp) == 0 {
		return "unknown"
	}
	med := medianOf(comp)
	switch {
	case currentPrice < med*0.9:
		return "below"
	case currentPrice > med*1.1:
		return "above"
	default:
		return "competitive"
	}
}

// deriveTarget computes the pre-cap target price: percentile anchor within
// the clamped competitor range, insight adjustments, min-margin floor.
func (e *Engine) deriveTarget(unitCost, currentPrice float64, comp []float64, constraints domain.Constraints, ins *domain.MarketInsight, flags []string) (float64, []string) {
	minPrice := unitCost * (1 + constraints.MinMarginPercent/100)

	if len(comp) == 0 {
		return math.Max(currentPrice, minPrice), flags
	}

	lower := minOf(comp) * 0.8
	upper := maxOf(comp) * 1.2

	strategy := constraints.Strategy
	if ins != nil && ins.Confidence > 0.6 {
		switch ins.BrandPositioning {
		case domain.PositioningLuxury:
			strategy = domain.StrategyPremium
			flags = append(flags, "insight_luxury_positioning")
		case domain.PositioningPremium:
			strategy = domain.StrategyPremium
			flags = append(flags, "insight_premium_positioning")
		case domain.PositioningValue:
			strategy = domain.StrategyValue
			flags = append(flags, "insight_value_positioning")
		}
	}

	base := PickTargetPercentile(comp, strategy)
	target := math.Min(math.Max(base, lower), upper)

	if ins != nil && ins.Confidence > 0.5 {
		if ins.DemandElasticity < -1.0 && target > currentPrice {
			// Elastic demand punishes increases; take only 70% of the step.
			target = currentPrice + (target-currentPrice)*0.7
			flags = append(flags, "insight_elasticity_adjustment")
		} else if ins.DemandElasticity > 0.5 && target < currentPrice*1.1 {
			target = math.Min(target*1.2, upper)
			flags = append(flags, "insight_inelastic_boost")
		}
	}

	if ins != nil && ins.SeasonalFactor != 1.0 {
		target *= ins.SeasonalFactor
		if ins.SeasonalFactor > 1.0 {
			flags = append(flags, "insight_seasonal_boost")
		} else {
			flags = append(flags, "insight_seasonal_discount")
		}
	}

	if target < minPrice {
		flags = append(flags, "raised_to_min_margin")
		target = minPrice
	}
	return target, flags
}

// buildScenarios derives conservative/aggressive prices around the
// recommendation with elasticity-informed multipliers, each re-rounded
// psychologically when enabled.
func (e *Engine) buildScenarios(recPrice, unitCost float64, constraints domain.Constraints, category, insightPositioning string, ins *domain.MarketInsight) map[string]domain.Scenario {
	consFactor, aggrFactor := 0.98, 1.03
	if ins != nil && ins.DemandElasticity != 0 {
		if ins.DemandElasticity < -1.0 {
			consFactor = 0.98
		} else {
			consFactor = 0.97
		}
		if ins.DemandElasticity > 0.5 {
			aggrFactor = 1.05
		}
	}

	mk := func(price float64) domain.Scenario {
		var psych *domain.PsychAnalysis
		if constraints.PsychologicalPricing {
			p, analysis := PsychRound(price, category, insightPositioning)
			price = p
			psych = &analysis
		} else {
			price = round2(price)
		}
		return domain.Scenario{
			Price:          price,
			ExpectedMargin: round2(marginPct(price, unitCost)),
			Psych:          psych,
		}
	}

	return map[string]domain.Scenario{
		"conservative": mk(recPrice * consFactor),
		"recommended":  mk(recPrice),
		"aggressive":   mk(recPrice * aggrFactor),
	}
}

func marginPct(price, unitCost float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - unitCost) / price * 100
}

func buildRationale(compCount int, constraints domain.Constraints, ins *domain.MarketInsight) (string, domain.RationaleSections) {
	parts := []string{
		fmt.Sprintf("Used %d competitor prices", compCount),
		fmt.Sprintf("aimed for %s positioning", constraints.Strategy),
		fmt.Sprintf("enforced min margin %.0f%% and max increase %.0f%%",
			constraints.MinMarginPercent, constraints.MaxPriceIncreasePercent),
	}

	var insParts []string
	if ins != nil {
		insParts = append(insParts,
			fmt.Sprintf("Market analysis: %s positioning", ins.BrandPositioning),
			fmt.Sprintf("demand elasticity %.1f", ins.DemandElasticity),
			fmt.Sprintf("market saturation %s", ins.MarketSaturation),
		)
		if ins.SeasonalFactor != 1.0 {
			insParts = append(insParts, fmt.Sprintf("seasonal factor %.1f", ins.SeasonalFactor))
		}
		if ins.Reasoning != "" {
			insParts = append(insParts, "Reasoning: "+ins.Reasoning)
		}
	}

	sections := domain.RationaleSections{
		CompetitiveAnalysis: strings.Join(parts, "; "),
		Insights:            strings.Join(insParts, "; "),
	}
	return strings.Join(append(parts, insParts...), "; "), sections
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

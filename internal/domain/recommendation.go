package domain

import "time"

// Pricing strategies.
const (
	StrategyValue       = "value"
	StrategyCompetitive = "competitive"
	StrategyPremium     = "premium"
)

// Constraints are the business rules a recommendation must respect.
type Constraints struct {
	MinMarginPercent        float64 `json:"min_margin_percent"`
	MaxPriceIncreasePercent float64 `json:"max_price_increase_percent"`
	PsychologicalPricing    bool    `json:"psychological_pricing"`
	Strategy                string  `json:"strategy"` // value|competitive|premium
}

// DefaultConstraints mirror the defaults the business runs with.
func DefaultConstraints() Constraints {
	return Constraints{
		MinMarginPercent:        40.0,
		MaxPriceIncreasePercent: 20.0,
		PsychologicalPricing:    true,
		Strategy:                StrategyCompetitive,
	}
}

// PsychAnalysis describes how psychological rounding shaped a price.
type PsychAnalysis struct {
	Class           string  `json:"class"`             // luxury|premium|value|tech|fashion|food|default
	Technique       string  `json:"technique"`         // charm|prestige|plain
	BehavioralScore float64 `json:"behavioral_score"`  // higher is better
	LeadingDigitCut bool    `json:"leading_digit_cut"` // rounding dropped the leading digit
}

// Scenario is one price path in the 3-way scenario analysis.
type Scenario struct {
	Price          float64        `json:"price"`
	ExpectedMargin float64        `json:"expected_margin"`
	Psych          *PsychAnalysis `json:"psychological_analysis,omitempty"`
}

// RationaleSections split the rationale for structured display while the
// flat Rationale string stays for backward compatibility.
type RationaleSections struct {
	CompetitiveAnalysis string `json:"competitive_analysis"`
	Insights            string `json:"insights,omitempty"`
}

// Recommendation is one pricing computation result. Treated as an immutable
// audit record once persisted.
type Recommendation struct {
	ProductID            string              `json:"product_id"`
	CurrentPrice         float64             `json:"current_price"`
	RecommendedPrice     float64             `json:"recommended_price"`
	PriceChangePercent   float64             `json:"price_change_percent"`
	ExpectedProfitChange float64             `json:"expected_profit_change"`
	RiskLevel            string              `json:"risk_level"` // low|medium|high
	ConfidenceScore      float64             `json:"confidence_score"`
	Scenarios            map[string]Scenario `json:"scenarios"` // conservative|recommended|aggressive
	Rationale            string              `json:"rationale"`
	RationaleSections    RationaleSections   `json:"rationale_sections"`
	ConstraintFlags      []string            `json:"constraint_flags"`
	Psych                *PsychAnalysis      `json:"psychological_analysis,omitempty"`
	Insight              *MarketInsight      `json:"insights,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
}

package domain

// Brand positioning buckets produced by the insight provider.
const (
	PositioningValue       = "value"
	PositioningCompetitive = "competitive"
	PositioningPremium     = "premium"
	PositioningLuxury      = "luxury"
)

// MarketInsight is the structured signal an external reasoning capability
// returns for a pricing context. All numeric fields arrive pre-clamped to
// their documented ranges.
type MarketInsight struct {
	DemandElasticity float64 `json:"demand_elasticity"` // -2.0..2.0, negative = elastic
	BrandPositioning string  `json:"brand_positioning"` // value|competitive|premium|luxury
	MarketSaturation string  `json:"market_saturation"` // low|medium|high
	SeasonalFactor   float64 `json:"seasonal_factor"`   // 0.5..2.0, 1.0 = neutral
	Confidence       float64 `json:"confidence"`        // 0.0..1.0
	Reasoning        string  `json:"reasoning"`
}

// PricingContext is everything the insight provider gets to reason about.
type PricingContext struct {
	ProductName      string
	Category         string
	Brand            string
	CurrentPrice     float64
	UnitCost         float64
	CompetitorPrices []float64
	MarketPosition   string // below|competitive|above|unknown
}

package httpapi

import "priceoptim-engine/internal/domain"

type StartScrapingRequest struct {
	TargetTerms []string `json:"target_terms"`
	Stores      []string `json:"stores"`
}

type StartScrapingResponse struct {
	RunID string `json:"run_id"`
}

type ScrapingProgress struct {
	Status          string `json:"status"`
	StoresTotal     int    `json:"stores_total"`
	StoresCompleted int    `json:"stores_completed"`
	ProductsFound   int    `json:"products_found"`
}

type OptimizeSingleRequest struct {
	ProductID   string              `json:"product_id"`
	Constraints *domain.Constraints `json:"constraints,omitempty"`
}

type OptimizeBatchRequest struct {
	ProductIDs  []string            `json:"product_ids,omitempty"`
	Constraints *domain.Constraints `json:"constraints,omitempty"`
}

type OptimizeBatchResponse struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Skipped         []string                `json:"skipped,omitempty"`
}

type CategoryAnalysisOut struct {
	Category             string  `json:"category"`
	OurAvgPrice          float64 `json:"our_avg_price"`
	CompetitorMin        float64 `json:"competitor_min"`
	CompetitorMax        float64 `json:"competitor_max"`
	CompetitorMedian     float64 `json:"competitor_median"`
	MarketPosition       string  `json:"market_position"`
	Opportunity          float64 `json:"opportunity"`
	Products             int     `json:"products"`
	CompetitorDataPoints int     `json:"competitor_data_points"`
}

type StoreAnalysisOut struct {
	Store          string  `json:"store"`
	AvgPrice       float64 `json:"avg_price"`
	PriceRange     string  `json:"price_range"`
	Products       int     `json:"products"`
	Overlap        int     `json:"overlap"`
	OverlapPercent float64 `json:"overlap_percent"`
	Positioning    string  `json:"positioning"`
}

type RunSummary struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	StartedAt       string   `json:"started_at"`
	CompletedAt     *string  `json:"completed_at"`
	TargetTerms     []string `json:"target_terms,omitempty"`
	StoresTotal     int      `json:"stores_total"`
	StoresCompleted int      `json:"stores_completed"`
	ProductsFound   int      `json:"products_found"`
}

type ProductOut struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Brand        string  `json:"brand"`
	UnitCost     float64 `json:"unit_cost"`
	CurrentPrice float64 `json:"current_price"`
	Currency     string  `json:"currency"`
	Margin       float64 `json:"margin"`
}

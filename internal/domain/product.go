package domain

import "time"

// Product is a catalog entry. The scraping and pricing pipeline reads the
// catalog but never mutates it.
type Product struct {
	ID           string
	Name         string
	Category     string
	Brand        string
	UnitCost     float64
	CurrentPrice float64
	Currency     string
}

// CatalogEntry is the slim projection the matchers work against.
type CatalogEntry struct {
	ID       string
	Name     string
	Brand    string
	Category string
}

// Listing is one raw scraped search hit before filtering/matching.
type Listing struct {
	Title      string
	Price      float64
	Currency   string
	ProductURL string
}

// ScrapedProduct is one surviving scraped listing, linked to the run that
// produced it and (optionally) to a catalog product. Immutable once stored.
type ScrapedProduct struct {
	ID               int64
	RunID            string
	StoreName        string
	ProductURL       string
	Title            string
	Price            float64
	Currency         string
	Brand            string
	Material         string
	Size             string
	SearchTerm       string
	MatchedCatalogID string
	SimilarityScore  float64
	MatchReason      string
	CreatedAt        time.Time
}

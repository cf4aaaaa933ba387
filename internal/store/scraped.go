package store

import (
	"context"
	"database/sql"
	"time"

	"priceoptim-engine/internal/domain"
)

// AppendScraped persists one term's surviving listings in a single
// transaction.
func (s *Store) AppendScraped(ctx context.Context, items []domain.ScrapedProduct) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		created := it.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		var matched any
		if it.MatchedCatalogID != "" {
			matched = it.MatchedCatalogID
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scraped_products(
  run_id, store_name, product_url, title, price, currency,
  brand, material, size, search_term,
  matched_catalog_id, similarity_score, match_reason, created_at
) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
			it.RunID, it.StoreName, it.ProductURL, it.Title, it.Price, it.Currency,
			it.Brand, it.Material, it.Size, it.SearchTerm,
			matched, it.SimilarityScore, it.MatchReason, created.Format(time.RFC3339),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListScrapedByRun returns every scraped listing of one run ordered by
// insertion.
func (s *Store) ListScrapedByRun(ctx context.Context, runID string) ([]domain.ScrapedProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, run_id, store_name, product_url, title, price, currency,
       brand, material, size, search_term,
       matched_catalog_id, similarity_score, match_reason, created_at
FROM scraped_products WHERE run_id = ? ORDER BY id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScraped(rows)
}

// CompetitorPrices returns the matched competitor prices for one catalog
// product within one run, the input to a pricing recommendation.
func (s *Store) CompetitorPrices(ctx context.Context, runID, productID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT price FROM scraped_products
WHERE run_id = ? AND matched_catalog_id = ? AND price > 0
ORDER BY id;`, runID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// CategoryPriceRow pairs our catalog price with one matched competitor
// price in the same category.
type CategoryPriceRow struct {
	Category  string
	OurPrice  float64
	CompPrice float64
}

// CategoryPriceRows returns one row per matched listing of a run, joined
// against the catalog. The analysis math lives with the handler.
func (s *Store) CategoryPriceRows(ctx context.Context, runID string) ([]CategoryPriceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.category, p.current_price, sp.price
FROM scraped_products sp
JOIN products p ON p.id = sp.matched_catalog_id
WHERE sp.run_id = ?
ORDER BY sp.id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryPriceRow
	for rows.Next() {
		var r CategoryPriceRow
		if err := rows.Scan(&r.Category, &r.OurPrice, &r.CompPrice); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StorePriceRow is one scraped listing's store, price and catalog match.
type StorePriceRow struct {
	StoreName string
	Price     float64
	MatchedID string
}

// StorePriceRows returns every listing of a run for per-store aggregation.
func (s *Store) StorePriceRows(ctx context.Context, runID string) ([]StorePriceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT store_name, price, COALESCE(matched_catalog_id, '')
FROM scraped_products
WHERE run_id = ?
ORDER BY id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StorePriceRow
	for rows.Next() {
		var r StorePriceRow
		if err := rows.Scan(&r.StoreName, &r.Price, &r.MatchedID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanScraped(rows *sql.Rows) ([]domain.ScrapedProduct, error) {
	var out []domain.ScrapedProduct
	for rows.Next() {
		var sp domain.ScrapedProduct
		var matched sql.NullString
		var created string
		if err := rows.Scan(
			&sp.ID, &sp.RunID, &sp.StoreName, &sp.ProductURL, &sp.Title, &sp.Price, &sp.Currency,
			&sp.Brand, &sp.Material, &sp.Size, &sp.SearchTerm,
			&matched, &sp.SimilarityScore, &sp.MatchReason, &created,
		); err != nil {
			return nil, err
		}
		sp.MatchedCatalogID = matched.String
		sp.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, sp)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"priceoptim-engine/internal/domain"
)

// InsertRecommendation persists one pricing computation as an audit record.
func (s *Store) InsertRecommendation(ctx context.Context, r domain.Recommendation) error {
	scenarios, err := json.Marshal(r.Scenarios)
	if err != nil {
		return err
	}
	flags, err := json.Marshal(r.ConstraintFlags)
	if err != nil {
		return err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO price_recommendations(
  product_id, current_price, recommended_price, price_change_percent,
  expected_profit_change, risk_level, confidence_score,
  scenarios, rationale, constraint_flags, created_at
) VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		r.ProductID, r.CurrentPrice, r.RecommendedPrice, r.PriceChangePercent,
		r.ExpectedProfitChange, r.RiskLevel, r.ConfidenceScore,
		string(scenarios), r.Rationale, string(flags), created.Format(time.RFC3339))
	return err
}

// LatestRecommendationsSince returns the newest recommendation per product
// created at or after cutoff. RFC3339 timestamps compare lexicographically.
func (s *Store) LatestRecommendationsSince(ctx context.Context, cutoff time.Time) ([]domain.Recommendation, error) {
	cut := cutoff.UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `
SELECT product_id, current_price, recommended_price, price_change_percent,
       expected_profit_change, risk_level, confidence_score,
       scenarios, rationale, constraint_flags, created_at
FROM price_recommendations
WHERE id IN (
  SELECT MAX(id) FROM price_recommendations WHERE created_at >= ? GROUP BY product_id
)
ORDER BY product_id;`, cut)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

// ListRecommendations returns a product's recommendation history, newest
// first.
func (s *Store) ListRecommendations(ctx context.Context, productID string) ([]domain.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT product_id, current_price, recommended_price, price_change_percent,
       expected_profit_change, risk_level, confidence_score,
       scenarios, rationale, constraint_flags, created_at
FROM price_recommendations WHERE product_id = ? ORDER BY id DESC;`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecommendations(rows)
}

func scanRecommendations(rows *sql.Rows) ([]domain.Recommendation, error) {
	var out []domain.Recommendation
	for rows.Next() {
		var r domain.Recommendation
		var scenarios, flags, created string
		if err := rows.Scan(
			&r.ProductID, &r.CurrentPrice, &r.RecommendedPrice, &r.PriceChangePercent,
			&r.ExpectedProfitChange, &r.RiskLevel, &r.ConfidenceScore,
			&scenarios, &r.Rationale, &flags, &created,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(scenarios), &r.Scenarios)
		_ = json.Unmarshal([]byte(flags), &r.ConstraintFlags)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

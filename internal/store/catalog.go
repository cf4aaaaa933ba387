package store

import (
	"context"
	"database/sql"
	"errors"

	"priceoptim-engine/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ListCatalog returns the slim catalog projection the matchers work with.
func (s *Store) ListCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, brand, category FROM products ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Brand, &e.Category); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListProducts returns the full catalog.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, category, brand, unit_cost, current_price, currency
FROM products ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.UnitCost, &p.CurrentPrice, &p.Currency); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, category, brand, unit_cost, current_price, currency
FROM products WHERE id = ?;`, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.Brand, &p.UnitCost, &p.CurrentPrice, &p.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	return p, err
}

// UpsertProduct inserts or replaces one catalog product.
func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO products(id, name, category, brand, unit_cost, current_price, currency)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  category = excluded.category,
  brand = excluded.brand,
  unit_cost = excluded.unit_cost,
  current_price = excluded.current_price,
  currency = excluded.currency;`,
		p.ID, p.Name, p.Category, p.Brand, p.UnitCost, p.CurrentPrice, p.Currency)
	return err
}

// Demo catalog for first boot so the pipeline has something to match and
// price before the user loads their own products.
var seedProducts = []domain.Product{
	{ID: "ECO-SUN-001", Name: "Bamboo Sunglasses Classic", Category: "Sunglasses", Brand: "EcoVision", UnitCost: 45.00, CurrentPrice: 89.99, Currency: "EUR"},
	{ID: "ECO-BOT-002", Name: "Recycled Steel Water Bottle", Category: "Bottles", Brand: "HydroGreen", UnitCost: 12.50, CurrentPrice: 24.99, Currency: "EUR"},
	{ID: "ECO-NOTE-003", Name: "Cork Notebook Set", Category: "Notebooks", Brand: "NaturePaper", UnitCost: 8.00, CurrentPrice: 19.99, Currency: "EUR"},
	{ID: "ECO-BAG-004", Name: "Organic Cotton Tote Bag", Category: "Bags", Brand: "EcoCarry", UnitCost: 7.50, CurrentPrice: 15.99, Currency: "EUR"},
	{ID: "ECO-CUP-005", Name: "Bamboo Coffee Cup", Category: "Drinkware", Brand: "EcoSip", UnitCost: 6.00, CurrentPrice: 18.99, Currency: "EUR"},
	{ID: "ECO-SHIRT-006", Name: "Organic Cotton T-Shirt", Category: "Apparel", Brand: "GreenThread", UnitCost: 15.00, CurrentPrice: 29.99, Currency: "EUR"},
}

// SeedCatalog loads the demo catalog on an empty database. No-op otherwise.
func (s *Store) SeedCatalog(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products;`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, p := range seedProducts {
		if err := s.UpsertProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

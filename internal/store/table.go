package store

import "database/sql"

// Migrate brings the schema up to the current version. Versioned through
// PRAGMA user_version so it is safe to call on every boot.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  brand TEXT NOT NULL,
  unit_cost REAL NOT NULL,
  current_price REAL NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD'
);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS scraping_runs (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  started_at TEXT NOT NULL,
  completed_at TEXT,
  target_terms TEXT NOT NULL DEFAULT '[]',
  stores_total INTEGER NOT NULL DEFAULT 0,
  stores_completed INTEGER NOT NULL DEFAULT 0,
  products_found INTEGER NOT NULL DEFAULT 0
);`); err != nil {
		return err
	}

	// Run errors live in their own table so concurrent appends never fight
	// over one JSON blob; insertion order is the display order.
	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS run_errors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES scraping_runs(id),
  store TEXT NOT NULL DEFAULT '',
  term TEXT NOT NULL DEFAULT '',
  error TEXT NOT NULL,
  at TEXT NOT NULL DEFAULT ''
);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS scraped_products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES scraping_runs(id),
  store_name TEXT NOT NULL,
  product_url TEXT NOT NULL,
  title TEXT NOT NULL,
  price REAL NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  brand TEXT NOT NULL DEFAULT '',
  material TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  search_term TEXT NOT NULL,
  matched_catalog_id TEXT REFERENCES products(id),
  similarity_score REAL NOT NULL DEFAULT 0,
  match_reason TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS price_recommendations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id TEXT NOT NULL REFERENCES products(id),
  current_price REAL NOT NULL,
  recommended_price REAL NOT NULL,
  price_change_percent REAL NOT NULL,
  expected_profit_change REAL NOT NULL,
  risk_level TEXT NOT NULL,
  confidence_score REAL NOT NULL,
  scenarios TEXT NOT NULL DEFAULT '{}',
  rationale TEXT NOT NULL DEFAULT '',
  constraint_flags TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL
);`); err != nil {
		return err
	}

	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS idx_scraped_run ON scraped_products(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_scraped_store ON scraped_products(store_name);`,
		`CREATE INDEX IF NOT EXISTS idx_scraped_matched ON scraped_products(matched_catalog_id);`,
		`CREATE INDEX IF NOT EXISTS idx_run_errors_run ON run_errors(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_recs_product ON price_recommendations(product_id);`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

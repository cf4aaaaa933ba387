package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"priceoptim-engine/internal/domain"
)

var ErrRunNotFound = errors.New("scraping run not found")

// CreateRun inserts a new run in running state and returns its id.
func (s *Store) CreateRun(ctx context.Context, targetTerms []string) (string, error) {
	id := uuid.NewString()
	termsJSON, _ := json.Marshal(targetTerms)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO scraping_runs(id, status, started_at, target_terms)
VALUES(?,?,?,?);`,
		id, domain.RunRunning, time.Now().UTC().Format(time.RFC3339), string(termsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// GetRun loads a run with its accumulated errors.
func (s *Store) GetRun(ctx context.Context, runID string) (domain.ScrapingRun, error) {
	var run domain.ScrapingRun
	var startedAt, termsJSON string
	var completedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
SELECT id, status, started_at, completed_at, target_terms, stores_total, stores_completed, products_found
FROM scraping_runs WHERE id = ?;`, runID).Scan(
		&run.ID, &run.Status, &startedAt, &completedAt, &termsJSON,
		&run.StoresTotal, &run.StoresCompleted, &run.ProductsFound,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, ErrRunNotFound
	}
	if err != nil {
		return run, err
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		if t, perr := time.Parse(time.RFC3339, completedAt.String); perr == nil {
			run.CompletedAt = &t
		}
	}
	_ = json.Unmarshal([]byte(termsJSON), &run.TargetTerms)

	rows, err := s.db.QueryContext(ctx, `
SELECT store, term, error, at FROM run_errors WHERE run_id = ? ORDER BY id;`, runID)
	if err != nil {
		return run, err
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.RunError
		if err := rows.Scan(&e.Store, &e.Term, &e.Error, &e.At); err != nil {
			return run, err
		}
		run.Errors = append(run.Errors, e)
	}
	return run, rows.Err()
}

// LatestRun returns the most recently started run, finished or not.
func (s *Store) LatestRun(ctx context.Context) (domain.ScrapingRun, error) {
	return s.latestRunWhere(ctx, ``)
}

// LatestFinishedRun returns the newest completed or stopped run — the run
// competitive analysis and pricing read competitor prices from.
func (s *Store) LatestFinishedRun(ctx context.Context) (domain.ScrapingRun, error) {
	return s.latestRunWhere(ctx, `WHERE status IN ('completed','stopped')`)
}

func (s *Store) latestRunWhere(ctx context.Context, where string) (domain.ScrapingRun, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM scraping_runs `+where+` ORDER BY started_at DESC LIMIT 1;`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScrapingRun{}, ErrRunNotFound
	}
	if err != nil {
		return domain.ScrapingRun{}, err
	}
	return s.GetRun(ctx, id)
}

func (s *Store) SetStoresTotal(ctx context.Context, runID string, total int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scraping_runs SET stores_total = ? WHERE id = ?;`, total, runID)
	return err
}

// AddProductsFound increments the run's products_found counter. Relative
// update: concurrent workers cannot lose each other's increments.
func (s *Store) AddProductsFound(ctx context.Context, runID string, n int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scraping_runs SET products_found = products_found + ? WHERE id = ?;`, n, runID)
	return err
}

func (s *Store) AppendRunErrors(ctx context.Context, runID string, errs []domain.RunError) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, e := range errs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_errors(run_id, store, term, error, at) VALUES(?,?,?,?,?);`,
			runID, e.Store, e.Term, e.Error, e.At); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkRunFailed moves a run to failed with a diagnostic error.
func (s *Store) MarkRunFailed(ctx context.Context, runID string, runErr domain.RunError) error {
	if err := s.AppendRunErrors(ctx, runID, []domain.RunError{runErr}); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE scraping_runs SET status = ?, completed_at = ? WHERE id = ?;`,
		domain.RunFailed, time.Now().UTC().Format(time.RFC3339), runID)
	return err
}

// CompleteStore counts one store worker done and finalizes the run when the
// last one finishes. The finalize guard requires status = 'running' so a
// stopped run is never flipped back to completed.
func (s *Store) CompleteStore(ctx context.Context, runID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE scraping_runs SET stores_completed = stores_completed + 1 WHERE id = ?;`, runID); err != nil {
		return false, err
	}
	finalized, err := finalizeIfDoneTx(ctx, tx, runID)
	if err != nil {
		return false, err
	}
	return finalized, tx.Commit()
}

// FinalizeIfDone completes a run whose store count is already satisfied —
// the zero-store case finalizes immediately.
func (s *Store) FinalizeIfDone(ctx context.Context, runID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	finalized, err := finalizeIfDoneTx(ctx, tx, runID)
	if err != nil {
		return false, err
	}
	return finalized, tx.Commit()
}

func finalizeIfDoneTx(ctx context.Context, tx *sql.Tx, runID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
UPDATE scraping_runs SET status = ?, completed_at = ?
WHERE id = ? AND status = ? AND stores_completed >= stores_total;`,
		domain.RunCompleted, time.Now().UTC().Format(time.RFC3339), runID, domain.RunRunning)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// StopRun marks a running run stopped by user action.
func (s *Store) StopRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE scraping_runs SET status = ?, completed_at = ? WHERE id = ? AND status = ?;`,
		domain.RunStopped, time.Now().UTC().Format(time.RFC3339), runID, domain.RunRunning)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run is not running")
	}
	return s.AppendRunErrors(ctx, runID, []domain.RunError{{
		Error: "scraping stopped by user",
		At:    time.Now().UTC().Format(time.RFC3339),
	}})
}

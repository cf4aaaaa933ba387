package domain

import "time"

// Scraping run statuses. A run only moves forward: running -> completed or
// failed, or stopped by the user. A stopped run is never flipped back.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunStopped   = "stopped"
)

// RunError is one diagnostic entry accumulated on a run. Field order is
// preserved when serialized so the UI shows errors the way they happened.
type RunError struct {
	Store string `json:"store,omitempty"`
	Term  string `json:"term,omitempty"`
	Error string `json:"error"`
	At    string `json:"at,omitempty"`
}

// ScrapingRun is one batch scrape over the store registry.
type ScrapingRun struct {
	ID              string
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	TargetTerms     []string
	StoresTotal     int
	StoresCompleted int
	ProductsFound   int
	Errors          []RunError
}

package httpapi

import (
	"net/http"
	"sync/atomic"

	"priceoptim-engine/internal/config"
	"priceoptim-engine/internal/events"
	"priceoptim-engine/internal/pricing"
	"priceoptim-engine/internal/store"
)

type Deps struct {
	Store *store.Store

	Hub *events.Hub

	// Pricing engine (rule-based, optionally insight-backed).
	Pricer *pricing.Engine

	// Atomic store of the live config.Config.
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Scrape run control (inject for testability). StartRun launches the
	// orchestrator for an already-created run; StopRun cancels its workers.
	StartRun func(runID string, terms, stores []string)
	StopRun  func(runID string)

	// Prometheus /metrics handler; nil disables the endpoint.
	MetricsHandler http.Handler
}

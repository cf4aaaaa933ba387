package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it in middleware and
// attach server-lifecycle routes.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Scraping runs
	rh := RunsHandler{
		Store:    d.Store,
		Hub:      d.Hub,
		CfgVal:   d.CfgVal,
		StartRun: d.StartRun,
		StopRun:  d.StopRun,
	}
	mux.HandleFunc("/routes/start-scraping", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Start,
	}))
	mux.HandleFunc("/routes/stop-scraping/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.StopByPath, // expects /routes/stop-scraping/{run_id}
	}))
	mux.HandleFunc("/routes/scraping-progress/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.ProgressByPath,
	}))
	mux.HandleFunc("/routes/scraping-results/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.ResultsByPath,
	}))
	mux.HandleFunc("/routes/latest-run", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Latest,
	}))
	mux.HandleFunc("/routes/runs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.ExportCSVByPath, // expects /routes/runs/{run_id}/export.csv
	}))

	// Catalog
	ch := CatalogHandler{Store: d.Store}
	mux.HandleFunc("/routes/products", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.List,
	}))
	mux.HandleFunc("/routes/dashboard-stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.DashboardStats,
	}))
	mux.HandleFunc("/routes/admin/seed-catalog", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.Seed,
	}))
	mux.HandleFunc("/routes/admin/catalog-status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Status,
	}))

	// Pricing
	ph := PricingHandler{Store: d.Store, Pricer: d.Pricer, CfgVal: d.CfgVal}
	mux.HandleFunc("/routes/optimize-price", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.OptimizeSingle,
	}))
	mux.HandleFunc("/routes/optimize-batch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.OptimizeBatch,
	}))
	mux.HandleFunc("/routes/cached-recommendations", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Cached,
	}))

	// Competitive analysis
	ah := AnalysisHandler{Store: d.Store}
	mux.HandleFunc("/routes/competitive-analysis/categories", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Categories,
	}))
	mux.HandleFunc("/routes/competitive-analysis/stores", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Stores,
	}))

	// Config
	cfgH := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfgH.Get,
		http.MethodPut: cfgH.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfgH.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfgH.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health + maintenance
	hh := HealthHandler{DB: d.Store.DB()}
	mux.HandleFunc("/routes/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dh := DBHandler{DB: d.Store.DB()}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	if d.MetricsHandler != nil {
		mux.Handle("/metrics", d.MetricsHandler)
	}

	return mux
}

package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"priceoptim-engine/internal/config"
	"priceoptim-engine/internal/events"
	"priceoptim-engine/internal/httpapi"
	"priceoptim-engine/internal/insight"
	"priceoptim-engine/internal/match"
	"priceoptim-engine/internal/pricing"
	"priceoptim-engine/internal/scheduler"
	"priceoptim-engine/internal/scrape"
	"priceoptim-engine/internal/store"
)

func main() {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	dataDir := os.Getenv("PRICEOPTIM_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir: two processes sharing the SQLite file would
	// fight over the write lock.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		raw, err := config.Load(userCfgPath)
		if err != nil {
			return raw, err
		}
		normalized, res := config.NormalizeAndValidate(raw)
		for _, warn := range res.Warnings {
			log.Printf("[config] warning: %s", warn)
		}
		if !res.OK() {
			log.Fatalf("config invalid (%s): %v", userCfgPath, res.Errors)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	st, err := store.Open(filepath.Join(dataDir, "priceoptim.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := store.Migrate(st.DB()); err != nil {
		log.Fatal(err)
	}
	if err := st.SeedCatalog(context.Background()); err != nil {
		log.Fatalf("catalog seed failed: %v", err)
	}

	metrics := scrape.NewMetrics()
	engine, err := scrape.NewEngine(metrics)
	if err != nil {
		log.Fatal(err)
	}

	registry := scrape.DefaultStores
	if overlay, err := config.LoadStoresOverlay(filepath.Join(dataDir, "stores.yml")); err != nil {
		log.Fatalf("stores overlay failed: %v", err)
	} else if len(overlay) > 0 {
		registry = registry[:0:0]
		for _, e := range overlay {
			registry = append(registry, scrape.Store{Name: e.Name, BaseURL: e.BaseURL})
		}
		log.Printf("[main] store registry overridden: %d stores", len(registry))
	}

	minDelay := 1500 * time.Millisecond
	if cfg.Scraping.MinDelayMS > 0 {
		minDelay = time.Duration(cfg.Scraping.MinDelayMS) * time.Millisecond
	}

	hub := events.NewHub()

	var semantic *match.SemanticMatcher
	if cfg.Matching.SemanticEnabled {
		embedder := match.NewOllamaEmbedder(cfg.Matching.EmbedHost, cfg.Matching.EmbedModel)
		defer func() { _ = embedder.Close() }()
		semantic = &match.SemanticMatcher{Embedder: embedder, Fallback: match.FuzzyMatcher{}}
	}

	var insightProvider insight.Provider = insight.Disabled{}
	if cfg.Insight.Enabled {
		insightProvider = insight.NewOllamaProvider(cfg.Insight.Host, cfg.Insight.Model)
	}
	pricer := &pricing.Engine{Insight: insightProvider}

	runner := &runManager{}
	startRun := func(runID string, terms, storeSel []string) {
		ctx := runner.begin(runID)
		orch := &scrape.Orchestrator{
			Store:    st,
			Searcher: engine,
			Limiter:  scrape.NewStoreLimiter(minDelay),
			Registry: registry,
			Metrics:  metrics,
			Semantic: semantic,
			Fuzzy:    match.FuzzyMatcher{},
			Notify:   hub.Publish,
		}
		go func() {
			defer runner.end(runID)
			if err := orch.Run(ctx, runID, terms, storeSel); err != nil {
				log.Printf("[run:%s] orchestrator error: %v", runID, err)
			}
		}()
	}

	deps := httpapi.Deps{
		Store:          st,
		Hub:            hub,
		Pricer:         pricer,
		CfgVal:         &cfgVal,
		UserCfgPath:    userCfgPath,
		LoadCfg:        loadCfg,
		StartRun:       startRun,
		StopRun:        runner.cancel,
		MetricsHandler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	mux := httpapi.NewMux(deps)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Scheduled runs reuse the HTTP start path semantics: default terms,
	// full registry.
	if cfg.Schedule.Enabled {
		sched := scheduler.New()
		err := sched.Add(cfg.Schedule.Cron, "scheduled-scrape", func(ctx context.Context) error {
			current := cfgVal.Load().(config.Config)
			runID, err := st.CreateRun(ctx, current.Scraping.DefaultTerms)
			if err != nil {
				return err
			}
			hub.Publish(events.MakeEvent(runID, events.TypeRunStarted, map[string]any{"scheduled": true}))
			startRun(runID, current.Scraping.DefaultTerms, current.Scraping.Stores)
			return nil
		})
		if err != nil {
			log.Fatalf("schedule %q invalid: %v", cfg.Schedule.Cron, err)
		}
		sched.Start()
		defer sched.Stop()
		log.Printf("[main] scheduled scraping enabled: %s", cfg.Schedule.Cron)
	}

	// Periodic WAL flush keeps the db file copy-friendly.
	go scheduler.Every(rootCtx, time.Hour, "db-checkpoint", func(ctx context.Context) error {
		_, err := st.DB().ExecContext(ctx, `PRAGMA wal_checkpoint(PASSIVE);`)
		return err
	})

	port := cfg.App.Port
	if port == 0 {
		port = 38600
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownToken, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, srv))
	if err := os.WriteFile(filepath.Join(dataDir, "engine.token"), []byte(shutdownToken), 0o600); err != nil {
		log.Fatalf("write shutdown token: %v", err)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Printf("[main] signal received, shutting down")
		rootCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
	rootCancel()
	runner.cancelAll()
}

// runManager tracks cancel funcs per in-flight run so stop-scraping can
// abort the workers, not just flip the status.
type runManager struct {
	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

func (m *runManager) begin(runID string) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.runs == nil {
		m.runs = make(map[string]context.CancelFunc)
	}
	m.runs[runID] = cancel
	m.mu.Unlock()
	return ctx
}

func (m *runManager) end(runID string) {
	m.mu.Lock()
	if cancel, ok := m.runs[runID]; ok {
		cancel()
		delete(m.runs, runID)
	}
	m.mu.Unlock()
}

func (m *runManager) cancel(runID string) {
	m.mu.Lock()
	if cancel, ok := m.runs[runID]; ok {
		cancel()
	}
	m.mu.Unlock()
}

func (m *runManager) cancelAll() {
	m.mu.Lock()
	for _, cancel := range m.runs {
		cancel()
	}
	m.mu.Unlock()
}

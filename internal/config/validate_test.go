package config

import (
	"strings"
	"testing"
)

func baseConfig() Config {
	var cfg Config
	cfg.App.Port = 38600
	cfg.App.DataDir = "/tmp/data"
	cfg.Scraping.MinDelayMS = 1500
	cfg.Scraping.DefaultTerms = []string{"sunglasses", "bottle"}
	cfg.Pricing.MinMarginPercent = 40
	cfg.Pricing.MaxPriceIncreasePercent = 20
	cfg.Pricing.Strategy = "competitive"
	return cfg
}

func TestNormalizeAndValidateClean(t *testing.T) {
	_, res := NormalizeAndValidate(baseConfig())
	if !res.OK() {
		t.Fatalf("valid config rejected: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestNormalizeTrimsAndDedupes(t *testing.T) {
	cfg := baseConfig()
	cfg.Scraping.DefaultTerms = []string{" Sunglasses ", "sunglasses", "", "bottle"}
	cfg.Scraping.Stores = []string{"EarthHero", " earthhero "}

	out, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("errors: %v", res.Errors)
	}
	if len(out.Scraping.DefaultTerms) != 2 || out.Scraping.DefaultTerms[0] != "Sunglasses" {
		t.Fatalf("terms = %v", out.Scraping.DefaultTerms)
	}
	if len(out.Scraping.Stores) != 1 {
		t.Fatalf("stores = %v", out.Scraping.Stores)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.App.Port = 0 }, "app.port"},
		{"port too high", func(c *Config) { c.App.Port = 70000 }, "app.port"},
		{"missing data dir", func(c *Config) { c.App.DataDir = " " }, "app.data_dir"},
		{"negative delay", func(c *Config) { c.Scraping.MinDelayMS = -1 }, "min_delay_ms"},
		{"semantic without host", func(c *Config) {
			c.Matching.SemanticEnabled = true
			c.Matching.EmbedModel = "nomic-embed-text"
		}, "matching.embed_host"},
		{"insight without model", func(c *Config) {
			c.Insight.Enabled = true
			c.Insight.Host = "http://localhost:11434"
		}, "insight.model"},
		{"negative margin", func(c *Config) { c.Pricing.MinMarginPercent = -5 }, "min_margin_percent"},
		{"bad strategy", func(c *Config) { c.Pricing.Strategy = "yolo" }, "pricing.strategy"},
		{"schedule without cron", func(c *Config) { c.Schedule.Enabled = true }, "schedule.cron"},
	}
	for _, tt := range tests {
		cfg := baseConfig()
		tt.mutate(&cfg)
		_, res := NormalizeAndValidate(cfg)
		if res.OK() {
			t.Fatalf("%s: config accepted", tt.name)
		}
		found := false
		for _, e := range res.Errors {
			if strings.Contains(e, tt.wantErr) {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: errors %v do not mention %q", tt.name, res.Errors, tt.wantErr)
		}
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := baseConfig()
	cfg.Scraping.MinDelayMS = 100
	cfg.Scraping.DefaultTerms = nil

	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("warnings escalated to errors: %v", res.Errors)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %v, want delay + empty terms", res.Warnings)
	}
}

func TestEmptyStrategyAllowed(t *testing.T) {
	cfg := baseConfig()
	cfg.Pricing.Strategy = ""
	if _, res := NormalizeAndValidate(cfg); !res.OK() {
		t.Fatalf("empty strategy rejected: %v", res.Errors)
	}
}

// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scraping struct {
		MinDelayMS   int      `yaml:"min_delay_ms"`
		Stores       []string `yaml:"stores"` // empty = full registry
		DefaultTerms []string `yaml:"default_terms"`
	} `yaml:"scraping"`

	Matching struct {
		SemanticEnabled bool   `yaml:"semantic_enabled"`
		EmbedHost       string `yaml:"embed_host"`
		EmbedModel      string `yaml:"embed_model"`
	} `yaml:"matching"`

	Insight struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Model   string `yaml:"model"`
	} `yaml:"insight"`

	Pricing struct {
		MinMarginPercent        float64 `yaml:"min_margin_percent"`
		MaxPriceIncreasePercent float64 `yaml:"max_price_increase_percent"`
		PsychologicalPricing    bool    `yaml:"psychological_pricing"`
		Strategy                string  `yaml:"strategy"` // value|competitive|premium
	} `yaml:"pricing"`

	Schedule struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"schedule"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var validStrategies = map[string]bool{"value": true, "competitive": true, "premium": true}

// NormalizeAndValidate trims and dedupes the list fields, then checks the
// result. The returned copy is the one to run with.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scraping.Stores = trimList(out.Scraping.Stores)
	out.Scraping.DefaultTerms = trimList(out.Scraping.DefaultTerms)

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	if out.Scraping.MinDelayMS < 0 {
		res.addErr("scraping.min_delay_ms must be >= 0")
	} else if out.Scraping.MinDelayMS > 0 && out.Scraping.MinDelayMS < 500 {
		res.addWarn("scraping.min_delay_ms is very low (%d) and may trip store rate limits.", out.Scraping.MinDelayMS)
	}
	if len(out.Scraping.DefaultTerms) == 0 {
		res.addWarn("scraping.default_terms is empty; runs started without terms will fail.")
	}

	if out.Matching.SemanticEnabled {
		if strings.TrimSpace(out.Matching.EmbedHost) == "" {
			res.addErr("matching.embed_host is required when matching.semantic_enabled=true")
		}
		if strings.TrimSpace(out.Matching.EmbedModel) == "" {
			res.addErr("matching.embed_model is required when matching.semantic_enabled=true")
		}
	}

	if out.Insight.Enabled {
		if strings.TrimSpace(out.Insight.Host) == "" {
			res.addErr("insight.host is required when insight.enabled=true")
		}
		if strings.TrimSpace(out.Insight.Model) == "" {
			res.addErr("insight.model is required when insight.enabled=true")
		}
	}

	if out.Pricing.MinMarginPercent < 0 {
		res.addErr("pricing.min_margin_percent must be >= 0")
	}
	if out.Pricing.MaxPriceIncreasePercent < 0 {
		res.addErr("pricing.max_price_increase_percent must be >= 0")
	}
	if s := strings.TrimSpace(out.Pricing.Strategy); s != "" && !validStrategies[s] {
		res.addErr("pricing.strategy must be one of value, competitive, premium (got %q)", s)
	}

	if out.Schedule.Enabled && strings.TrimSpace(out.Schedule.Cron) == "" {
		res.addErr("schedule.cron is required when schedule.enabled=true")
	}

	return out, res
}

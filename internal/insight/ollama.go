package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"priceoptim-engine/internal/domain"
)

const (
	insightTimeout    = 60 * time.Second
	insightAttempts   = 3
	insightBackoff    = 1 * time.Second
	insightBackoffMax = 10 * time.Second
)

// OllamaProvider asks a local Ollama-compatible chat endpoint for a market
// insight. Every failure path returns (nil, false); the pricing engine
// treats that as "insight absent".
type OllamaProvider struct {
	Host  string
	Model string
	hc    *http.Client
}

func NewOllamaProvider(host, model string) *OllamaProvider {
	return &OllamaProvider{
		Host:  strings.TrimRight(host, "/"),
		Model: model,
		hc:    &http.Client{Timeout: insightTimeout},
	}
}

// WithTransport swaps the HTTP transport. Test hook.
func (p *OllamaProvider) WithTransport(rt http.RoundTripper) {
	p.hc.Transport = rt
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

func (p *OllamaProvider) TryGetInsight(ctx context.Context, pc domain.PricingContext) (*domain.MarketInsight, bool) {
	var lastErr error
	for attempt := 1; attempt <= insightAttempts; attempt++ {
		if attempt > 1 {
			delay := insightBackoff * time.Duration(1<<(attempt-2))
			if delay > insightBackoffMax {
				delay = insightBackoffMax
			}
			select {
			case <-ctx.Done():
				return nil, false
			case <-time.After(delay):
			}
		}
		ins, err := p.getOnce(ctx, pc)
		if err == nil {
			return ins, ins != nil
		}
		lastErr = err
	}
	log.Printf("[insight] provider unavailable: %v", lastErr)
	return nil, false
}

func (p *OllamaProvider) getOnce(ctx context.Context, pc domain.PricingContext) (*domain.MarketInsight, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    p.Model,
		Messages: []chatMessage{{Role: "user", Content: buildPrompt(pc)}},
		Stream:   false,
		Options:  map[string]any{"temperature": 0.1, "num_predict": 512},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insight endpoint status %d", res.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if strings.TrimSpace(cr.Message.Content) == "" {
		return nil, fmt.Errorf("empty insight content")
	}
	return ParseInsight(cr.Message.Content)
}

func buildPrompt(pc domain.PricingContext) string {
	compSummary := "No competitor pricing data available"
	if len(pc.CompetitorPrices) > 0 {
		min, max, sum := pc.CompetitorPrices[0], pc.CompetitorPrices[0], 0.0
		for _, p := range pc.CompetitorPrices {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
			sum += p
		}
		avg := sum / float64(len(pc.CompetitorPrices))
		compSummary = fmt.Sprintf("Competitor prices: €%.2f - €%.2f (avg: €%.2f)", min, max, avg)
	}

	margin := 0.0
	if pc.CurrentPrice > 0 {
		margin = (pc.CurrentPrice - pc.UnitCost) / pc.CurrentPrice * 100
	}

	return fmt.Sprintf(`You are a pricing analyst for sustainable/eco products. Analyze this product and provide insights in JSON format only.

Product: %s (%s, %s)
Current Price: €%.2f
Unit Cost: €%.2f
Current Margin: %.1f%%
Market Position: %s
%s

Respond with valid JSON only (no markdown, no explanations):
{
  "demand_elasticity": -0.8,
  "brand_positioning": "premium",
  "market_saturation": "medium",
  "seasonal_factor": 1.0,
  "confidence": 0.85,
  "reasoning": "Brief one sentence explanation"
}

Constraints:
- demand_elasticity: number between -2.0 and 2.0 (negative = elastic, positive = inelastic)
- brand_positioning: one of "value", "competitive", "premium", "luxury"
- market_saturation: one of "low", "medium", "high"
- seasonal_factor: number between 0.5 and 2.0 (1.0 = neutral)
- confidence: number between 0.0 and 1.0
- reasoning: short explanation in one sentence`,
		pc.ProductName, pc.Category, pc.Brand,
		pc.CurrentPrice, pc.UnitCost, margin, pc.MarketPosition, compSummary)
}

// ParseInsight extracts and validates the JSON insight object from model
// output, tolerating markdown fences and surrounding prose. Numeric fields
// are clamped to their documented ranges, enums fall back to neutral.
func ParseInsight(content string) (*domain.MarketInsight, error) {
	content = strings.TrimSpace(content)

	if i := strings.Index(content, "```json"); i != -1 {
		rest := content[i+7:]
		if j := strings.Index(rest, "```"); j != -1 {
			content = strings.TrimSpace(rest[:j])
		}
	} else if i := strings.Index(content, "```"); i != -1 {
		rest := content[i+3:]
		if j := strings.Index(rest, "```"); j != -1 {
			content = strings.TrimSpace(rest[:j])
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in insight content")
	}
	content = content[start : end+1]

	var raw struct {
		DemandElasticity float64 `json:"demand_elasticity"`
		BrandPositioning string  `json:"brand_positioning"`
		MarketSaturation string  `json:"market_saturation"`
		SeasonalFactor   float64 `json:"seasonal_factor"`
		Confidence       float64 `json:"confidence"`
		Reasoning        string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse insight JSON: %w", err)
	}

	ins := &domain.MarketInsight{
		DemandElasticity: clamp(raw.DemandElasticity, -2.0, 2.0),
		BrandPositioning: raw.BrandPositioning,
		MarketSaturation: raw.MarketSaturation,
		SeasonalFactor:   raw.SeasonalFactor,
		Confidence:       clamp(raw.Confidence, 0.0, 1.0),
		Reasoning:        raw.Reasoning,
	}
	if ins.SeasonalFactor == 0 {
		ins.SeasonalFactor = 1.0
	}
	ins.SeasonalFactor = clamp(ins.SeasonalFactor, 0.5, 2.0)

	switch ins.BrandPositioning {
	case domain.PositioningValue, domain.PositioningCompetitive, domain.PositioningPremium, domain.PositioningLuxury:
	default:
		ins.BrandPositioning = domain.PositioningCompetitive
	}
	switch ins.MarketSaturation {
	case "low", "medium", "high":
	default:
		ins.MarketSaturation = "medium"
	}
	if ins.Reasoning == "" {
		ins.Reasoning = "No reasoning provided"
	}
	return ins, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

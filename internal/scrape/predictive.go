package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"priceoptim-engine/internal/domain"
)

// predictiveEndpoints are the known JSON search-endpoint URL patterns, in
// preference order. The last entry is a recent-products fallback.
func predictiveEndpoints(baseURL, term string) []string {
	base := strings.TrimRight(baseURL, "/")
	q := url.QueryEscape(term)
	return []string{
		base + "/search/suggest.json?q=" + q + "&resources[type]=product&resources[limit]=20",
		base + "/search/suggest.json?q=" + q + "&resources[type]=product",
		base + "/search/suggestions?q=" + q + "&resources[type]=product",
		base + "/search?q=" + q + "&type=product",
		base + "/collections/all?q=" + q,
		base + "/products.json?limit=20",
	}
}

// predictiveItem tolerates the field spellings the various response shapes
// use for the same concepts.
type predictiveItem struct {
	Title         string            `json:"title"`
	Name          string            `json:"name"`
	Price         json.RawMessage   `json:"price"`
	PriceMin      json.RawMessage   `json:"price_min"`
	Variants      []json.RawMessage `json:"variants"`
	URL           string            `json:"url"`
	URLWithDomain string            `json:"url_with_domain"`
	Handle        string            `json:"handle"`
	Currency      string            `json:"currency"`
	PriceCurrency string            `json:"priceCurrency"`
}

type predictiveResponse struct {
	Resources *struct {
		Results *struct {
			Products []predictiveItem `json:"products"`
		} `json:"results"`
		Products []predictiveItem `json:"products"`
	} `json:"resources"`
	Products []predictiveItem `json:"products"`
}

// SearchPredictive tries the known JSON search endpoints in order and
// returns the first endpoint's relevance-filtered results. Parse errors on
// one endpoint just advance to the next.
func (e *Engine) SearchPredictive(ctx context.Context, baseURL, term string) []domain.Listing {
	for _, endpoint := range predictiveEndpoints(baseURL, term) {
		body, err := e.fetcher.Get(ctx, endpoint)
		if err != nil {
			continue
		}
		items := parsePredictiveBody(body)
		if len(items) == 0 {
			continue
		}
		results := collectPredictive(items, baseURL, term)
		if len(results) > 0 {
			return results
		}
	}
	return nil
}

func parsePredictiveBody(body []byte) []predictiveItem {
	var resp predictiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	var items []predictiveItem
	if resp.Resources != nil {
		if resp.Resources.Results != nil {
			items = append(items, resp.Resources.Results.Products...)
		}
		items = append(items, resp.Resources.Products...)
	}
	items = append(items, resp.Products...)
	return items
}

func collectPredictive(items []predictiveItem, baseURL, term string) []domain.Listing {
	var results []domain.Listing
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = it.Name
		}
		price, ok := firstPrice(it)
		if title == "" || !ok {
			continue
		}
		if !IsRelevant(title, term) {
			continue
		}
		// Values over 1000 are almost certainly minor units.
		if price > 1000 {
			price = price / 100
		}
		currency := it.Currency
		if currency == "" {
			currency = it.PriceCurrency
		}
		if currency == "" {
			currency = "USD"
		}
		results = append(results, domain.Listing{
			Title:      title,
			Price:      price,
			Currency:   currency,
			ProductURL: resolveProductURL(baseURL, it),
		})
	}
	return results
}

func firstPrice(it predictiveItem) (float64, bool) {
	if p, ok := rawPrice(it.Price); ok {
		return p, true
	}
	if p, ok := rawPrice(it.PriceMin); ok {
		return p, true
	}
	for _, v := range it.Variants {
		var variant struct {
			Price json.RawMessage `json:"price"`
		}
		if err := json.Unmarshal(v, &variant); err != nil {
			continue
		}
		if p, ok := rawPrice(variant.Price); ok {
			return p, true
		}
	}
	return 0, false
}

// rawPrice accepts both numeric and quoted-string price fields.
func rawPrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, num > 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if p, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			return p, p > 0
		}
	}
	return 0, false
}

func resolveProductURL(baseURL string, it predictiveItem) string {
	field := it.URL
	if field == "" {
		field = it.URLWithDomain
	}
	if field == "" {
		field = it.Handle
	}
	base := strings.TrimRight(baseURL, "/")
	switch {
	case field == "":
		return baseURL
	case strings.HasPrefix(field, "http"):
		return field
	case strings.HasPrefix(field, "/"):
		return base + field
	default:
		return fmt.Sprintf("%s/products/%s", base, field)
	}
}

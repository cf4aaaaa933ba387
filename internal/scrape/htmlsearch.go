package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"priceoptim-engine/internal/domain"
)

// Conventional search-URL path patterns, tried in order.
func htmlSearchPaths(term string) []string {
	q := url.QueryEscape(term)
	return []string{
		"/search?q=" + q,
		"/search?query=" + q,
		"/search?s=" + q,
		"/catalogsearch/result/?q=" + q,
		"/collections/all?q=" + q,
	}
}

var productURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)href=["']([^"']*/(?:products?|items?|product|item|shop)/[^"']*)["']`),
	regexp.MustCompile(`(?i)href=["']([^"']*/collections/[^"']*/products/[^"']*)["']`),
	regexp.MustCompile(`(?i)<a[^>]*href=["']([^"']*/(?:product|item)[^"']*)["']`),
}

var skipURLWords = []string{"cart", "account", "login", "checkout", "blog", "about", "contact", "policy", "terms", "privacy"}
var skipURLExts = []string{".jpg", ".png", ".gif", ".svg", ".css", ".js", ".pdf", ".ico"}

var priceTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`€\s*([\d.,]+)`),
	regexp.MustCompile(`£\s*([\d.,]+)`),
	regexp.MustCompile(`\$\s*([\d.,]+)`),
	regexp.MustCompile(`₹\s*([\d.,]+)`),
	regexp.MustCompile(`(?i)INR\s*([\d.,]+)`),
	regexp.MustCompile(`(?i)Rs\.?\s*([\d.,]+)`),
	regexp.MustCompile(`(?i)USD\s*([\d.,]+)`),
	regexp.MustCompile(`(?i)EUR\s*([\d.,]+)`),
	regexp.MustCompile(`(?i)GBP\s*([\d.,]+)`),
}

// SearchHTML is the always-available fallback: fetch a conventional search
// page, mine JSON-LD structured data first, then visible product cards.
func (e *Engine) SearchHTML(ctx context.Context, baseURL, term string) []domain.Listing {
	base := strings.TrimRight(baseURL, "/")

	var html []byte
	for _, path := range htmlSearchPaths(term) {
		body, err := e.fetcher.Get(ctx, base+path)
		if err != nil {
			continue
		}
		html = body
		break
	}
	if html == nil {
		log.Printf("[scrape] no search page reachable for %q on %s", term, baseURL)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	results := extractJSONLD(doc, base, term)

	// Candidate product-detail links, mined only when structured data came
	// up short. Kept for diagnostics and future detail-page hydration.
	if len(results) < 5 {
		urls := extractProductURLs(html, base)
		if len(urls) > 0 {
			log.Printf("[scrape] extracted %d candidate product urls on %s", len(urls), baseURL)
		}
	}

	if len(results) < 3 {
		results = append(results, extractProductCards(doc, base, term)...)
	}
	return results
}

// jsonLDNode covers both Product and ItemList shapes.
type jsonLDNode struct {
	Type            string            `json:"@type"`
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	Offers          json.RawMessage   `json:"offers"`
	ItemListElement []json.RawMessage `json:"itemListElement"`
}

type jsonLDOffer struct {
	Price         json.RawMessage `json:"price"`
	PriceCurrency string          `json:"priceCurrency"`
}

func extractJSONLD(doc *goquery.Document, base, term string) []domain.Listing {
	var results []domain.Listing
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var node jsonLDNode
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return
		}
		switch node.Type {
		case "Product":
			if l, ok := listingFromLDNode(node, base, term); ok {
				results = append(results, l)
			}
		case "ItemList":
			for _, raw := range node.ItemListElement {
				var wrapper struct {
					Item json.RawMessage `json:"item"`
				}
				item := raw
				if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Item) > 0 {
					item = wrapper.Item
				}
				var inner jsonLDNode
				if err := json.Unmarshal(item, &inner); err != nil {
					continue
				}
				if l, ok := listingFromLDNode(inner, base, term); ok {
					results = append(results, l)
				}
			}
		}
	})
	return results
}

func listingFromLDNode(node jsonLDNode, base, term string) (domain.Listing, bool) {
	name := node.Name
	if name == "" {
		name = node.Title
	}
	if name == "" || !IsRelevant(name, term) {
		return domain.Listing{}, false
	}
	var offer jsonLDOffer
	if len(node.Offers) > 0 {
		// Offers may be an object or an array; take the first on arrays.
		if err := json.Unmarshal(node.Offers, &offer); err != nil {
			var offers []jsonLDOffer
			if err := json.Unmarshal(node.Offers, &offers); err == nil && len(offers) > 0 {
				offer = offers[0]
			}
		}
	}
	price, ok := rawPrice(offer.Price)
	if !ok {
		return domain.Listing{}, false
	}
	currency := offer.PriceCurrency
	if currency == "" {
		currency = "USD"
	}
	u := node.URL
	switch {
	case u == "":
		u = base
	case strings.HasPrefix(u, "http"):
	default:
		u = base + u
	}
	return domain.Listing{Title: name, Price: price, Currency: currency, ProductURL: u}, true
}

func extractProductURLs(html []byte, base string) []string {
	seen := make(map[string]bool)
	for _, re := range productURLPatterns {
		for _, m := range re.FindAllSubmatch(html, -1) {
			u := string(m[1])
			var full string
			switch {
			case strings.HasPrefix(u, "/"):
				full = base + u
			case strings.HasPrefix(u, "http"):
				full = u
			default:
				continue
			}
			if skipProductURL(full) {
				continue
			}
			seen[full] = true
		}
	}
	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	return urls
}

func skipProductURL(u string) bool {
	low := strings.ToLower(u)
	for _, w := range skipURLWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	for _, ext := range skipURLExts {
		if strings.Contains(low, ext) {
			return true
		}
	}
	return false
}

// extractProductCards parses visible product-card markup for title+price
// using currency-symbol patterns. Least reliable path, capped at 20 cards.
func extractProductCards(doc *goquery.Document, base, term string) []domain.Listing {
	var results []domain.Listing
	cards := doc.Find(".product-card, .product-item, .product, [data-product], .grid-product, .product-grid-item")
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= 20 {
			return false
		}
		titleEl := card.Find(`h2, h3, .product-title, .product-name, [itemprop="name"]`).First()
		if titleEl.Length() == 0 {
			return true
		}
		title := strings.TrimSpace(titleEl.Text())

		cardHTML, err := goquery.OuterHtml(card)
		if err != nil {
			return true
		}
		price, ok := parsePriceText(cardHTML)
		if !ok {
			return true
		}

		productURL := base
		if href, exists := card.Find("a[href]").First().Attr("href"); exists {
			switch {
			case strings.HasPrefix(href, "http"):
				productURL = href
			case strings.HasPrefix(href, "/"):
				productURL = base + href
			}
		}

		if title != "" && price > 0 && IsRelevant(title, term) {
			results = append(results, domain.Listing{
				Title:      title,
				Price:      price,
				Currency:   "USD",
				ProductURL: productURL,
			})
		}
		return true
	})
	return results
}

func parsePriceText(s string) (float64, bool) {
	for _, re := range priceTextPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			text := strings.TrimSpace(strings.ReplaceAll(m[1], ",", ""))
			if p, err := strconv.ParseFloat(text, 64); err == nil {
				return p, true
			}
		}
	}
	return 0, false
}

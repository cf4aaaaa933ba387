package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestParsePriceText(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"€ 24,99", 2499, true}, // comma stripped, not treated as decimal
		{"€24.99", 24.99, true},
		{"$ 18.50 per unit", 18.5, true},
		{"£9.99", 9.99, true},
		{"Rs. 1200", 1200, true},
		{"INR 499", 499, true},
		{"usd 12.00", 12, true},
		{"no price here", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePriceText(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("parsePriceText(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

const jsonLDPage = `<html><head>
<script type="application/ld+json">
{"@type":"Product","name":"Bamboo Sunglasses Classic","url":"/products/bamboo-sunglasses",
 "offers":{"price":"24.99","priceCurrency":"EUR"}}
</script>
<script type="application/ld+json">
{"@type":"ItemList","itemListElement":[
  {"item":{"@type":"Product","name":"Wooden Shades","url":"https://shop.example.com/products/wooden-shades",
   "offers":[{"price":19.5}]}},
  {"item":{"@type":"Product","name":"Ceramic Plate","offers":{"price":"9.99"}}}
]}
</script>
<script type="application/ld+json">not json at all</script>
</head><body></body></html>`

func TestExtractJSONLD(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(jsonLDPage))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}

	got := extractJSONLD(doc, "https://shop.example.com", "sunglasses")
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2 (plate is irrelevant): %+v", len(got), got)
	}

	if got[0].Title != "Bamboo Sunglasses Classic" || got[0].Price != 24.99 || got[0].Currency != "EUR" {
		t.Fatalf("product node mishandled: %+v", got[0])
	}
	if got[0].ProductURL != "https://shop.example.com/products/bamboo-sunglasses" {
		t.Fatalf("relative LD url not resolved: %q", got[0].ProductURL)
	}

	if got[1].Title != "Wooden Shades" || got[1].Price != 19.5 {
		t.Fatalf("itemlist node mishandled: %+v", got[1])
	}
	if got[1].Currency != "USD" {
		t.Fatalf("missing priceCurrency should default to USD, got %q", got[1].Currency)
	}
}

const productCardPage = `<html><body>
<div class="product-card">
  <h3>Cork Yoga Mat</h3>
  <span class="price">$45.00</span>
  <a href="/products/cork-yoga-mat">view</a>
</div>
<div class="product-card">
  <h3>Recycled Sunglass Case</h3>
  <span class="price">$12.50</span>
  <a href="https://shop.example.com/products/case">view</a>
</div>
<div class="product-card">
  <h3>Priceless Art</h3>
</div>
</body></html>`

func TestExtractProductCards(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(productCardPage))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}

	got := extractProductCards(doc, "https://shop.example.com", "sunglass case")
	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1: %+v", len(got), got)
	}
	if got[0].Title != "Recycled Sunglass Case" || got[0].Price != 12.5 {
		t.Fatalf("card mishandled: %+v", got[0])
	}
	if got[0].ProductURL != "https://shop.example.com/products/case" {
		t.Fatalf("card url = %q", got[0].ProductURL)
	}
}

func TestExtractProductURLs(t *testing.T) {
	html := []byte(`<a href="/products/mug-1">m</a>
<a href="/products/mug-1">dup</a>
<a href="/cart">cart</a>
<a href="/products/banner.jpg">img</a>
<a href="https://other.example.com/products/bowl">abs</a>`)

	got := extractProductURLs(html, "https://shop.example.com")
	want := map[string]bool{
		"https://shop.example.com/products/mug-1": true,
		"https://other.example.com/products/bowl": true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want keys %v", got, want)
	}
	for _, u := range got {
		if !want[u] {
			t.Fatalf("unexpected url %q in %v", u, got)
		}
	}
}

func TestFilterStores(t *testing.T) {
	reg := []Store{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	if got := FilterStores(reg, nil); len(got) != 3 {
		t.Fatalf("empty filter should keep all, got %v", got)
	}
	got := FilterStores(reg, []string{"C", "A"})
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "C" {
		t.Fatalf("filter broke registry order: %v", got)
	}
}

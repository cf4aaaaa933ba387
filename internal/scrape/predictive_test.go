package scrape

import (
	"encoding/json"
	"testing"
)

func TestParsePredictiveBodyShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			"nested resources.results",
			`{"resources":{"results":{"products":[{"title":"Bamboo Sunglasses","price":"24.99"}]}}}`,
			1,
		},
		{
			"flat resources.products",
			`{"resources":{"products":[{"title":"Steel Bottle","price":18.5}]}}`,
			1,
		},
		{
			"top-level products",
			`{"products":[{"title":"Cork Notebook","variants":[{"price":"12.00"}]},{"title":"Mug","price":9}]}`,
			2,
		},
		{"not json", `<html>blocked</html>`, 0},
		{"empty object", `{}`, 0},
	}
	for _, tt := range tests {
		got := parsePredictiveBody([]byte(tt.body))
		if len(got) != tt.want {
			t.Fatalf("%s: parsed %d items, want %d", tt.name, len(got), tt.want)
		}
	}
}

func TestCollectPredictive(t *testing.T) {
	items := []predictiveItem{
		{Title: "Bamboo Sunglasses Classic", Price: json.RawMessage(`2499`), URL: "/products/bamboo-sunglasses"},
		{Title: "Wooden Shades", Price: json.RawMessage(`"19.99"`), Currency: "EUR", Handle: "wooden-shades"},
		{Title: "Dinner Plate", Price: json.RawMessage(`12`)},         // irrelevant for the term
		{Name: "Eyewear Case", Price: json.RawMessage(`0`)},           // zero price dropped
		{Title: "Sunglass Strap", Price: json.RawMessage(`"gratis"`)}, // unparseable price dropped
	}
	got := collectPredictive(items, "https://shop.example.com/", "sunglasses")
	if len(got) != 2 {
		t.Fatalf("got %d listings, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Price != 24.99 {
		t.Fatalf("minor-unit price not converted: %v", first.Price)
	}
	if first.Currency != "USD" {
		t.Fatalf("missing currency should default to USD, got %q", first.Currency)
	}
	if first.ProductURL != "https://shop.example.com/products/bamboo-sunglasses" {
		t.Fatalf("relative url not resolved: %q", first.ProductURL)
	}

	second := got[1]
	if second.Price != 19.99 || second.Currency != "EUR" {
		t.Fatalf("string price/currency mishandled: %+v", second)
	}
	if second.ProductURL != "https://shop.example.com/products/wooden-shades" {
		t.Fatalf("handle not resolved: %q", second.ProductURL)
	}
}

func TestRawPrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{`19.99`, 19.99, true},
		{`"24.50"`, 24.5, true},
		{`" 7 "`, 7, true},
		{`0`, 0, false},
		{`"free"`, 0, false},
		{``, 0, false},
		{`null`, 0, false},
	}
	for _, tt := range tests {
		got, ok := rawPrice(json.RawMessage(tt.raw))
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("rawPrice(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFirstPriceFallsBackToVariants(t *testing.T) {
	it := predictiveItem{
		Variants: []json.RawMessage{
			json.RawMessage(`{"price":"bad"}`),
			json.RawMessage(`{"price":"15.00"}`),
		},
	}
	got, ok := firstPrice(it)
	if !ok || got != 15 {
		t.Fatalf("firstPrice = (%v, %v), want (15, true)", got, ok)
	}
}

func TestResolveProductURL(t *testing.T) {
	base := "https://shop.example.com"
	tests := []struct {
		name string
		item predictiveItem
		want string
	}{
		{"absolute", predictiveItem{URL: "https://cdn.example.com/p/1"}, "https://cdn.example.com/p/1"},
		{"leading slash", predictiveItem{URL: "/products/mug"}, base + "/products/mug"},
		{"handle", predictiveItem{Handle: "cork-mug"}, base + "/products/cork-mug"},
		{"nothing", predictiveItem{}, base},
	}
	for _, tt := range tests {
		if got := resolveProductURL(base, tt.item); got != tt.want {
			t.Fatalf("%s: resolveProductURL = %q, want %q", tt.name, got, tt.want)
		}
	}
}

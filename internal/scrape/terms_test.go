package scrape

import "testing"

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		title, term string
		want        bool
	}{
		{"Bamboo Sunglasses Classic", "wooden sunglasses", true},
		{"Premium Eyewear Collection", "sunglasses", true}, // synonym via category
		{"Shades of Summer", "sunglass", true},
		{"Insulated Flask 750ml", "water bottle", true},
		{"Ceramic Dinner Plate", "sunglasses", false},
		{"The Anthology", "the towel", false}, // stopword alone never matches
		{"Bento Box Deluxe", "lunchbox set", true},
		{"Silk Scarf Handwoven", "silk shawl", true},
	}
	for _, tt := range tests {
		if got := IsRelevant(tt.title, tt.term); got != tt.want {
			t.Fatalf("IsRelevant(%q, %q) = %v, want %v", tt.title, tt.term, got, tt.want)
		}
	}
}

func TestExpandTermsOriginalFirst(t *testing.T) {
	got := ExpandTerms("Wooden Sunglasses")
	if len(got) == 0 || got[0] != "wooden sunglasses" {
		t.Fatalf("first element = %v, want lowercased original", got)
	}
	want := map[string]bool{
		"wood sunglasses":   true,
		"bamboo sunglasses": true,
		"wooden shades":     true,
	}
	for _, v := range got[1:] {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Fatalf("missing variants %v in %v", want, got)
	}
}

func TestExpandTermsDeterministic(t *testing.T) {
	a := ExpandTerms("thermos")
	b := ExpandTerms("thermos")
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs at %d: %v vs %v", i, a, b)
		}
	}
	// variants after the original must be sorted
	for i := 2; i < len(a); i++ {
		if a[i] < a[i-1] {
			t.Fatalf("variants not sorted: %v", a)
		}
	}
}

func TestExpandTermsNoRules(t *testing.T) {
	got := ExpandTerms("Garden Gnome")
	if len(got) != 1 || got[0] != "garden gnome" {
		t.Fatalf("term with no synonym rules should pass through, got %v", got)
	}
}

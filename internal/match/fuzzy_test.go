package match

import (
	"strings"
	"testing"

	"priceoptim-engine/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Bamboo Sunglasses - Classic!", []string{"bamboo", "sunglasses", "classic"}},
		{"A B cd", []string{"cd"}},
		{"", nil},
		{"Café-Mug 2x", []string{"caf", "mug", "2x"}},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("Normalize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestTokenOverlapUsesSmallerSet(t *testing.T) {
	a := []string{"bamboo", "sunglasses"}
	b := []string{"bamboo", "sunglasses", "classic", "frame", "polarized"}
	if got := TokenOverlap(a, b); got != 1.0 {
		t.Fatalf("overlap = %v, want 1.0 (all of smaller set matched)", got)
	}
	if got := TokenOverlap(nil, b); got != 0.0 {
		t.Fatalf("overlap with empty side = %v, want 0", got)
	}
}

func TestExtractCategoryKeywordsExpandsSynonyms(t *testing.T) {
	found := ExtractCategoryKeywords([]string{"shades"})
	if !found["sunglasses"] || !found["eyewear"] {
		t.Fatalf("shades should light up the whole sunglasses bucket, got %v", found)
	}
}

func TestFuzzyMatchAcceptsAboveThreshold(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{ID: "ECO-SUN-001", Name: "Bamboo Sunglasses Classic", Brand: "EcoVision", Category: "Sunglasses"},
		{ID: "ECO-BOT-002", Name: "Recycled Steel Water Bottle", Brand: "HydroGreen", Category: "Bottles"},
	}

	res := FuzzyMatcher{}.Match("Sustainable Bamboo Sunglasses", "", catalog)
	if res.ProductID != "ECO-SUN-001" {
		t.Fatalf("matched %q, want ECO-SUN-001 (reason: %s)", res.ProductID, res.Reason)
	}
	if res.Score < fuzzyThreshold {
		t.Fatalf("score %v below threshold", res.Score)
	}
	if !strings.Contains(res.Reason, "token_overlap=") {
		t.Fatalf("reason missing overlap component: %q", res.Reason)
	}
}

func TestFuzzyMatchRejectsBelowThreshold(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{ID: "ECO-SUN-001", Name: "Bamboo Sunglasses Classic", Brand: "EcoVision", Category: "Sunglasses"},
	}
	res := FuzzyMatcher{}.Match("Ceramic Dinner Plate Set", "", catalog)
	if res.ProductID != "" {
		t.Fatalf("unrelated title matched %q (score %v)", res.ProductID, res.Score)
	}
}

func TestFuzzyMatchBrandBonus(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{ID: "P1", Name: "Recycled Steel Water Bottle", Brand: "HydroGreen", Category: "Bottles"},
	}
	without := FuzzyMatcher{}.Match("Steel Bottle 500ml", "", catalog)
	with := FuzzyMatcher{}.Match("Steel Bottle 500ml", "hydrogreen", catalog)
	if with.Score <= without.Score {
		t.Fatalf("brand match should raise score: %v vs %v", with.Score, without.Score)
	}
	if !strings.Contains(with.Reason, "brand_match") {
		t.Fatalf("reason missing brand bonus: %q", with.Reason)
	}
}

func TestFuzzyMatchScoreCapped(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{ID: "P1", Name: "Bamboo Sunglasses", Brand: "EcoVision", Category: "Sunglasses"},
	}
	res := FuzzyMatcher{}.Match("Bamboo Sunglasses", "EcoVision", catalog)
	if res.Score > 1.0 {
		t.Fatalf("score %v exceeds 1.0 cap", res.Score)
	}
}

func TestFuzzyMatchFirstCandidateWinsTies(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{ID: "A", Name: "Cotton Towel", Category: "Towels"},
		{ID: "B", Name: "Cotton Towel", Category: "Towels"},
	}
	res := FuzzyMatcher{}.Match("Cotton Towel", "", catalog)
	if res.ProductID != "A" {
		t.Fatalf("tie resolved to %q, want first candidate A", res.ProductID)
	}
}

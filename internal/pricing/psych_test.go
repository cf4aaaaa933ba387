package pricing

import "testing"

func TestPsychRoundCharmDefault(t *testing.T) {
	price, analysis := PsychRound(20, "", "")
	if price != 19.99 {
		t.Fatalf("price = %v, want 19.99", price)
	}
	if analysis.Class != "default" || analysis.Technique != "charm" {
		t.Fatalf("analysis = %+v", analysis)
	}
	if !analysis.LeadingDigitCut {
		t.Fatalf("19.99 vs 20 should count as a leading-digit cut")
	}
}

func TestPsychRoundLuxuryPrestige(t *testing.T) {
	price, analysis := PsychRound(150, "jewelry", "")
	if analysis.Technique != "prestige" || analysis.Class != "luxury" {
		t.Fatalf("analysis = %+v", analysis)
	}
	if price != 160 {
		t.Fatalf("price = %v, want 160 (5-step prestige round)", price)
	}
}

func TestPsychRoundInsightPositioningWins(t *testing.T) {
	// "mug" maps to value, but luxury insight positioning takes precedence.
	_, analysis := PsychRound(20, "mug", "luxury")
	if analysis.Class != "luxury" {
		t.Fatalf("class = %q, want luxury", analysis.Class)
	}
}

func TestPsychRoundPlainFallback(t *testing.T) {
	// Luxury whole-dollar endings on a tiny price are a bad fit; plain
	// rounding must win.
	price, analysis := PsychRound(0.5, "", "luxury")
	if analysis.Technique != "plain" {
		t.Fatalf("technique = %q, want plain (analysis %+v)", analysis.Technique, analysis)
	}
	if price != 0.51 {
		t.Fatalf("price = %v, want 0.51", price)
	}
}

func TestPsychRoundNonPositive(t *testing.T) {
	price, analysis := PsychRound(0, "mug", "")
	if price != 0 || analysis.Technique != "plain" {
		t.Fatalf("zero target: price=%v analysis=%+v", price, analysis)
	}
}

func TestPsychRoundStaysWithinBand(t *testing.T) {
	categories := []string{"", "sunglasses", "bottle", "jewelry", "lunchbox", "stand", "cushion"}
	positionings := []string{"", "luxury", "premium", "value"}
	for target := 0.5; target < 6000; target *= 1.07 {
		for _, cat := range categories {
			for _, pos := range positionings {
				price, _ := PsychRound(target, cat, pos)
				lo, hi := target*0.8, target*1.2
				if price < lo-1e-9 || price > hi+1e-9 {
					t.Fatalf("PsychRound(%v, %q, %q) = %v, outside [%v, %v]", target, cat, pos, price, lo, hi)
				}
			}
		}
	}
}

func TestPsychRoundSnapsInsideBandAtCentBoundary(t *testing.T) {
	// 0.95 clamps to 0.92784; rounding to a cent must land on 0.92, not
	// cross the upper bound to 0.93.
	price, _ := PsychRound(0.7732, "sunglasses", "premium")
	if hi := 0.7732 * 1.2; price > hi {
		t.Fatalf("price = %v, above upper bound %v", price, hi)
	}
	if price != 0.92 {
		t.Fatalf("price = %v, want 0.92", price)
	}
}

func TestClassFor(t *testing.T) {
	tests := []struct {
		category, positioning, want string
	}{
		{"sunglasses", "", "fashion"},
		{"bottle", "", "value"},
		{"stand", "", "tech"},
		{"lunchbox", "", "food"},
		{"unheard-of", "", "default"},
		{"bottle", "premium", "premium"},
		{"jewelry", "value", "value"},
	}
	for _, tt := range tests {
		if got := classFor(tt.category, tt.positioning); got != tt.want {
			t.Fatalf("classFor(%q, %q) = %q, want %q", tt.category, tt.positioning, got, tt.want)
		}
	}
}

func TestClampWithin(t *testing.T) {
	if got := clampWithin(5, 10, 0.2); got != 8 {
		t.Fatalf("low clamp = %v, want 8", got)
	}
	if got := clampWithin(15, 10, 0.2); got != 12 {
		t.Fatalf("high clamp = %v, want 12", got)
	}
	if got := clampWithin(11, 10, 0.2); got != 11 {
		t.Fatalf("in-range value altered: %v", got)
	}
}

func TestLeadingDigitReduced(t *testing.T) {
	tests := []struct {
		candidate, original float64
		want                bool
	}{
		{19.99, 20, true},
		{99.99, 100, true},
		{29.99, 25, false},
		{24.99, 25, false}, // same leading digit, same magnitude
	}
	for _, tt := range tests {
		if got := leadingDigitReduced(tt.candidate, tt.original); got != tt.want {
			t.Fatalf("leadingDigitReduced(%v, %v) = %v, want %v", tt.candidate, tt.original, got, tt.want)
		}
	}
}

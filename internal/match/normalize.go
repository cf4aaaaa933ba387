package match

import (
	"regexp"
	"strings"
)

// CategoryKeywords maps a canonical category to every keyword that implies
// it. Kept as data, not logic, so business-rule changes stay localized.
var CategoryKeywords = map[string][]string{
	"sunglasses": {"sunglass", "sunglasses", "eyewear", "shades", "glasses"},
	"bottle":     {"bottle", "bottles", "flask", "thermos", "canteen", "container"},
	"notebook":   {"notebook", "notebooks", "journal", "journals", "notepad", "notepads"},
	"mug":        {"mug", "mugs", "cup", "cups"},
	"stand":      {"stand", "holder", "dock"},
	"lunchbox":   {"lunchbox", "lunch box", "bento", "food container"},
	"stole":      {"stole", "stoles", "shawl", "shawls", "scarf", "scarves", "wrap"},
	"cushion":    {"cushion", "cushions", "pillow", "pillows"},
	"towel":      {"towel", "towels"},
}

// Materials is the fixed material vocabulary.
var Materials = []string{"wood", "wooden", "bamboo", "cork", "silk", "cotton", "metal", "plastic", "glass", "stainless"}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// Normalize lowercases, strips non-alphanumeric characters and drops tokens
// of length <= 1.
func Normalize(text string) []string {
	t := strings.ToLower(text)
	t = nonAlnumRe.ReplaceAllString(t, " ")
	var tokens []string
	for _, tok := range strings.Fields(t) {
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// ExtractCategoryKeywords returns the categories implied by the tokens,
// expanded with every synonym of each matched category. Expansive on
// purpose: "shades" and "eyewear" should land in the same bucket.
func ExtractCategoryKeywords(tokens []string) map[string]bool {
	found := make(map[string]bool)
	for _, tok := range tokens {
		for category, keywords := range CategoryKeywords {
			for _, kw := range keywords {
				if tok == kw {
					found[category] = true
					for _, k := range keywords {
						found[k] = true
					}
					break
				}
			}
		}
	}
	return found
}

// ExtractMaterials returns the tokens present in the material vocabulary.
func ExtractMaterials(tokens []string) map[string]bool {
	found := make(map[string]bool)
	for _, tok := range tokens {
		for _, m := range Materials {
			if tok == m {
				found[tok] = true
				break
			}
		}
	}
	return found
}

// TokenOverlap scores matches / min(|a|,|b|). Zero when either side is
// empty. More forgiving than Jaccard for short scraped titles.
func TokenOverlap(a, b []string) float64 {
	sa := toSet(a)
	sb := toSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}
	matches := 0
	for tok := range sa {
		if sb[tok] {
			matches++
		}
	}
	smaller := len(sa)
	if len(sb) < smaller {
		smaller = len(sb)
	}
	return float64(matches) / float64(smaller)
}

func toSet(toks []string) map[string]bool {
	s := make(map[string]bool, len(toks))
	for _, t := range toks {
		s[t] = true
	}
	return s
}

func setsIntersect(a, b map[string]bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

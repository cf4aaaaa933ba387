package scrape

import (
	"sort"
	"strings"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"with": true, "for": true, "of": true, "in": true,
}

// categorySynonyms backs the relevance check: a search term naming a
// category is satisfied by any of its synonyms appearing in the title.
var categorySynonyms = map[string][]string{
	"sunglass":    {"sunglass", "eyewear", "shades", "glasses"},
	"bottle":      {"bottle", "flask", "thermos", "canteen"},
	"notebook":    {"notebook", "journal", "diary"},
	"mug":         {"mug", "cup"},
	"towel":       {"towel"},
	"lunchbox":    {"lunchbox", "lunch box", "bento"},
	"shawl":       {"shawl", "stole", "scarf", "wrap"},
	"cushion":     {"cushion", "pillow"},
	"phone stand": {"stand", "holder", "dock"},
}

// IsRelevant reports whether a scraped title plausibly answers the search
// term: either a significant term word appears in the title, or the term
// names a known category and any synonym of it appears. Keeps unrelated
// catalog noise out of the pipeline.
func IsRelevant(title, searchTerm string) bool {
	titleLow := strings.ToLower(title)
	termLow := strings.ToLower(searchTerm)

	for _, w := range strings.Fields(termLow) {
		if len(w) > 2 && !stopWords[w] && strings.Contains(titleLow, w) {
			return true
		}
	}

	for key, synonyms := range categorySynonyms {
		if !strings.Contains(termLow, key) {
			continue
		}
		for _, syn := range synonyms {
			if strings.Contains(titleLow, syn) {
				return true
			}
		}
	}
	return false
}

// ExpandTerms generates synonym variations of a search term to widen
// discovery. The original term always survives; variants are deterministic
// (sorted) so per-store search order is reproducible.
func ExpandTerms(term string) []string {
	t := strings.ToLower(term)
	set := map[string]bool{t: true}

	add := func(vals ...string) {
		for _, v := range vals {
			v = strings.TrimSpace(v)
			if v != "" {
				set[v] = true
			}
		}
	}

	if strings.Contains(t, "wooden") || strings.Contains(t, "wood") {
		add(
			strings.ReplaceAll(t, "wooden", "wood"),
			strings.ReplaceAll(t, "wooden", "bamboo"),
			strings.ReplaceAll(t, "wood", "bamboo"),
		)
	}
	if strings.Contains(t, "sunglass") {
		add(
			strings.ReplaceAll(t, "sunglasses", "shades"),
			strings.ReplaceAll(t, "sunglass", "eyewear"),
			strings.ReplaceAll(t, "sunglass", "glasses"),
		)
	}
	if strings.Contains(t, "thermos") || strings.Contains(t, "bottle") {
		add(
			strings.ReplaceAll(t, "thermos", "insulated"),
			strings.ReplaceAll(t, "thermos", "bottle"),
			t+" flask",
			"water bottle",
			"insulated bottle",
		)
	}
	if strings.Contains(t, "mug") {
		add("coffee mug", "tea mug", "mug")
	}
	if strings.Contains(t, "phone stand") {
		add(
			strings.ReplaceAll(t, "phone stand", "phone holder"),
			strings.ReplaceAll(t, "phone stand", "mobile stand"),
			"mobile holder",
			"cell phone stand",
		)
	}
	if strings.Contains(t, "lunchbox") || strings.Contains(t, "lunch box") {
		add("lunch box", "bento box", "lunchbox", "tiffin")
	}
	if strings.Contains(t, "silk") && (strings.Contains(t, "stole") || strings.Contains(t, "shawl")) {
		add(
			strings.ReplaceAll(t, "stole", "scarf"),
			strings.ReplaceAll(t, "stole", "shawl"),
			strings.ReplaceAll(t, "stole", "wrap"),
		)
	}
	if strings.Contains(t, "shawl") || strings.Contains(t, "scarf") {
		add(
			strings.ReplaceAll(t, "shawl", "scarf"),
			strings.ReplaceAll(t, "scarf", "shawl"),
			strings.ReplaceAll(t, "shawl", "stole"),
			strings.ReplaceAll(t, "scarf", "wrap"),
		)
	}
	if strings.Contains(t, "notebook") {
		add("journal", "notebook", "diary", "sketchbook")
	}
	if strings.Contains(t, "cushion") {
		add(strings.ReplaceAll(t, "cushion", "pillow"), "cushion cover", "pillow cover", "pillowcase")
	}
	if strings.Contains(t, "coaster") {
		add("coaster", "placemat", "table mat")
	}
	if strings.Contains(t, "towel") {
		add("towel", "hand towel", "bath towel", "tea towel")
	}

	variants := make([]string, 0, len(set))
	for v := range set {
		if v != t {
			variants = append(variants, v)
		}
	}
	sort.Strings(variants)
	return append([]string{t}, variants...)
}

package match

import (
	"regexp"
	"strings"
)

// Feature keyword lists for the semantic matcher. Superset of the fuzzy
// matcher vocabulary: looser buckets tolerate embedding noise.
var featureCategories = map[string][]string{
	"sunglasses": {"sunglass", "eyewear", "shades", "glasses"},
	"bottle":     {"bottle", "flask", "thermos", "canteen", "tumbler"},
	"notebook":   {"notebook", "journal", "diary", "notepad"},
	"mug":        {"mug", "cup"},
	"towel":      {"towel"},
	"lunchbox":   {"lunchbox", "lunch box", "bento"},
	"stole":      {"stole", "shawl", "scarf", "wrap"},
	"cushion":    {"cushion", "pillow"},
	"stand":      {"stand", "holder", "dock"},
}

var featureMaterials = map[string][]string{
	"wood":    {"wood", "wooden", "bamboo", "teak"},
	"metal":   {"metal", "steel", "aluminum", "copper"},
	"fabric":  {"cotton", "silk", "fabric", "textile"},
	"plastic": {"plastic", "polymer"},
	"glass":   {"glass"},
	"ceramic": {"ceramic", "porcelain"},
	"cork":    {"cork"},
}

var (
	skuCodeRe   = regexp.MustCompile(`\b[A-Z]{2,}\d+[A-Z]*\b`)
	volumeRe    = regexp.MustCompile(`\d{3,}ml\b`)
	mlRe        = regexp.MustCompile(`\d+\s*ml\b`)
	cmRe        = regexp.MustCompile(`\d+\s*cm\b`)
	punctRe     = regexp.MustCompile(`[^\w\s]`)
	spaceRe     = regexp.MustCompile(`\s+`)
	sizeRe      = regexp.MustCompile(`\d+\s*(ml|cm|l|inch|oz)`)
	colorWordRe = regexp.MustCompile(`\b(red|blue|green|black|white|brown|gray|yellow|pink|purple|orange)\b`)
)

var textReplacements = [][2]string{
	{"incl.", "including"},
	{"w/", "with"},
	{"&", "and"},
	{"stainless steel", "steel"},
	{"eco-friendly", "eco friendly"},
	{"organic cotton", "cotton organic"},
}

// preprocessText cleans a product title for embedding: SKU-like codes and
// raw measurements out, abbreviations expanded, everything lowercased.
func preprocessText(text string) string {
	text = skuCodeRe.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	text = volumeRe.ReplaceAllString(text, "bottle")
	text = mlRe.ReplaceAllString(text, "")
	text = cmRe.ReplaceAllString(text, "")
	for _, r := range textReplacements {
		text = strings.ReplaceAll(text, r[0], r[1])
	}
	text = punctRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

type features struct {
	categories map[string]bool
	materials  map[string]bool
	hasSize    bool
	hasColor   bool
}

func extractFeatures(text string) features {
	low := strings.ToLower(text)
	f := features{
		categories: make(map[string]bool),
		materials:  make(map[string]bool),
		hasSize:    sizeRe.MatchString(low),
		hasColor:   colorWordRe.MatchString(low),
	}
	for cat, words := range featureCategories {
		for _, w := range words {
			if strings.Contains(low, w) {
				f.categories[cat] = true
				break
			}
		}
	}
	for mat, words := range featureMaterials {
		for _, w := range words {
			if strings.Contains(low, w) {
				f.materials[mat] = true
				break
			}
		}
	}
	return f
}

package match

import (
	"fmt"
	"strings"

	"priceoptim-engine/internal/domain"
)

// Bonus weights and the acceptance threshold are load-bearing business
// constants. Do not tune without re-validating match quality.
const (
	categoryBonus  = 0.25
	materialBonus  = 0.10
	brandBonus     = 0.15
	fuzzyThreshold = 0.35
)

// Result is the outcome of matching one scraped title against the catalog.
// ProductID is empty when the best score stayed below the threshold; Score
// and Reason are still filled for diagnostics.
type Result struct {
	ProductID string
	Score     float64
	Reason    string
}

// FuzzyMatcher scores scraped titles against the catalog with token overlap
// plus category/material/brand bonuses. Deterministic and always available.
type FuzzyMatcher struct{}

// Match picks the single best-scoring catalog candidate. Ties resolve to the
// first candidate in catalog order.
func (FuzzyMatcher) Match(scrapedTitle, scrapedBrand string, catalog []domain.CatalogEntry) Result {
	sToks := Normalize(scrapedTitle)
	sCategories := ExtractCategoryKeywords(sToks)
	sMaterials := ExtractMaterials(sToks)

	var best *Result
	for _, entry := range catalog {
		nToks := Normalize(entry.Name)
		cToks := Normalize(entry.Category)

		tokenScore := TokenOverlap(sToks, nToks)

		nCategories := ExtractCategoryKeywords(nToks)
		for k := range ExtractCategoryKeywords(cToks) {
			nCategories[k] = true
		}
		nMaterials := ExtractMaterials(nToks)

		score := tokenScore
		reasonBits := []string{fmt.Sprintf("token_overlap=%.2f", tokenScore)}

		if setsIntersect(sCategories, nCategories) {
			score += categoryBonus
			reasonBits = append(reasonBits, "category_match +0.25")
		}
		if setsIntersect(sMaterials, nMaterials) {
			score += materialBonus
			reasonBits = append(reasonBits, "material_match +0.10")
		}
		if scrapedBrand != "" && entry.Brand != "" && strings.EqualFold(scrapedBrand, entry.Brand) {
			score += brandBonus
			reasonBits = append(reasonBits, "brand_match +0.15")
		}
		if score > 1.0 {
			score = 1.0
		}

		if best == nil || score > best.Score {
			best = &Result{ProductID: entry.ID, Score: score, Reason: strings.Join(reasonBits, ", ")}
		}
	}

	if best == nil {
		return Result{Reason: "no candidates, score too low"}
	}
	if best.Score >= fuzzyThreshold {
		return *best
	}
	return Result{Score: best.Score, Reason: best.Reason}
}

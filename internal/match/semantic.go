package match

import (
	"context"
	"fmt"
	"math"
	"strings"

	"priceoptim-engine/internal/domain"
)

// Semantic bonus weights and threshold. The brand bonus is stronger than the
// fuzzy matcher's because embeddings already absorb most title noise.
const (
	semCategoryBonus  = 0.25
	semMaterialBonus  = 0.15
	semBrandBonus     = 0.20
	semanticThreshold = 0.40
)

// Embedder turns texts into fixed-size vectors. Implementations own their
// model lifecycle: Open loads it once, Close releases it. Encode must be
// safe for concurrent use after Open.
type Embedder interface {
	Open(ctx context.Context) error
	Close() error
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// SemanticMatcher scores titles by embedding cosine similarity plus the same
// bonus structure as the fuzzy matcher. Any embedding failure falls back to
// the fuzzy matcher so matching never hard-fails.
type SemanticMatcher struct {
	Embedder Embedder
	Fallback FuzzyMatcher
}

// TryMatch returns ok=false when the embedding backend could not serve the
// request. The caller (or Match) decides what absence means.
func (m *SemanticMatcher) TryMatch(ctx context.Context, scrapedTitle, scrapedBrand string, catalog []domain.CatalogEntry) (Result, bool) {
	if m.Embedder == nil || len(catalog) == 0 {
		return Result{}, false
	}

	texts := make([]string, 0, len(catalog)+1)
	texts = append(texts, preprocessText(scrapedTitle))
	for _, entry := range catalog {
		texts = append(texts, preprocessText(entry.Name+" "+entry.Category))
	}

	// One batch for the scraped title plus every candidate.
	vecs, err := m.Embedder.Encode(ctx, texts)
	if err != nil || len(vecs) != len(texts) {
		return Result{}, false
	}

	scrapedFeat := extractFeatures(scrapedTitle)
	scrapedVec := vecs[0]

	var best Result
	var bestName string
	for i, entry := range catalog {
		sim := cosineSimilarity(scrapedVec, vecs[i+1])
		catFeat := extractFeatures(entry.Name + " " + entry.Category)

		score := sim
		reasonBits := []string{fmt.Sprintf("semantic=%.3f", sim)}
		if setsIntersect(scrapedFeat.categories, catFeat.categories) {
			score += semCategoryBonus
			reasonBits = append(reasonBits, "category_match +0.25")
		}
		if setsIntersect(scrapedFeat.materials, catFeat.materials) {
			score += semMaterialBonus
			reasonBits = append(reasonBits, "material_match +0.15")
		}
		if scrapedBrand != "" && entry.Brand != "" &&
			strings.EqualFold(strings.TrimSpace(scrapedBrand), strings.TrimSpace(entry.Brand)) {
			score += semBrandBonus
			reasonBits = append(reasonBits, "brand_match +0.20")
		}
		if score > 1.0 {
			score = 1.0
		}

		if score > best.Score {
			best = Result{ProductID: entry.ID, Score: score, Reason: strings.Join(reasonBits, ", ")}
			bestName = entry.Name
		}
	}

	if best.Score >= semanticThreshold {
		best.Reason = fmt.Sprintf("semantic: %s -> %s", best.Reason, bestName)
		return best, true
	}
	return Result{
		Score:  best.Score,
		Reason: fmt.Sprintf("semantic: %s, score %.3f below threshold %.2f", best.Reason, best.Score, semanticThreshold),
	}, true
}

// Match is TryMatch with the fuzzy fallback applied. The fallback result is
// tagged so downstream diagnostics show which path matched.
func (m *SemanticMatcher) Match(ctx context.Context, scrapedTitle, scrapedBrand string, catalog []domain.CatalogEntry) Result {
	if res, ok := m.TryMatch(ctx, scrapedTitle, scrapedBrand, catalog); ok {
		return res
	}
	res := m.Fallback.Match(scrapedTitle, scrapedBrand, catalog)
	res.Reason = "fallback: " + res.Reason
	return res
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

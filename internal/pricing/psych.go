package pricing

import (
	"math"

	"priceoptim-engine/internal/domain"
)

// PsychClass drives how a price gets its psychological shape: which cent
// endings the class favors, below which price charm endings apply, and a
// fixed pre-rounding adjustment multiplier.
type PsychClass struct {
	Endings    []float64
	Threshold  float64
	Adjustment float64
	// Sensitivity scales the behavioral impact of the percent change for
	// this class: food shoppers notice every cent, luxury buyers do not.
	Sensitivity float64
}

// psychClasses is the fixed class table. Data, not logic.
var psychClasses = map[string]PsychClass{
	"luxury":  {Endings: []float64{0.00}, Threshold: 100, Adjustment: 1.02, Sensitivity: 0.5},
	"premium": {Endings: []float64{0.95, 0.00}, Threshold: 150, Adjustment: 1.01, Sensitivity: 0.7},
	"value":   {Endings: []float64{0.99, 0.95}, Threshold: 50, Adjustment: 0.99, Sensitivity: 1.3},
	"tech":    {Endings: []float64{0.99, 0.00}, Threshold: 500, Adjustment: 1.00, Sensitivity: 1.0},
	"fashion": {Endings: []float64{0.95, 0.99}, Threshold: 200, Adjustment: 1.00, Sensitivity: 0.9},
	"food":    {Endings: []float64{0.99, 0.49}, Threshold: 25, Adjustment: 0.98, Sensitivity: 1.5},
	"default": {Endings: []float64{0.99, 0.95}, Threshold: 100, Adjustment: 1.00, Sensitivity: 1.0},
}

// categoryClass maps catalog categories to pricing classes. Insight brand
// positioning, when present, takes precedence over this lookup.
var categoryClass = map[string]string{
	"sunglasses":  "fashion",
	"stole":       "fashion",
	"shawl":       "fashion",
	"scarf":       "fashion",
	"bottle":      "value",
	"mug":         "value",
	"towel":       "value",
	"notebook":    "value",
	"stand":       "tech",
	"electronics": "tech",
	"lunchbox":    "food",
	"cushion":     "premium",
	"home":        "premium",
	"jewelry":     "luxury",
}

// Canonical psychological price points consumers anchor on.
var canonicalPricePoints = []float64{4.99, 9.99, 14.99, 19.99, 24.99, 29.99, 49.99, 79.99, 99.99, 149.99, 199.99}

const universalCharmCeiling = 10.0

// classFor resolves the psychological class: insight positioning wins over
// the category mapping, both fall through to "default".
func classFor(category, insightPositioning string) string {
	switch insightPositioning {
	case domain.PositioningLuxury:
		return "luxury"
	case domain.PositioningPremium:
		return "premium"
	case domain.PositioningValue:
		return "value"
	}
	if c, ok := categoryClass[category]; ok {
		return c
	}
	return "default"
}

// PsychRound rounds target into a psychologically-shaped price for the
// product's class, returning the price and an analysis of how it was
// chosen. Output always stays within ±20% of target.
func PsychRound(target float64, category, insightPositioning string) (float64, domain.PsychAnalysis) {
	if target <= 0 {
		return 0, domain.PsychAnalysis{Class: "default", Technique: "plain"}
	}

	className := classFor(category, insightPositioning)
	class := psychClasses[className]
	adjusted := target * class.Adjustment

	var price float64
	technique := "charm"
	if adjusted >= class.Threshold && adjusted >= universalCharmCeiling && className == "luxury" {
		price = prestigeRound(adjusted)
		technique = "prestige"
	} else {
		price = charmRound(adjusted, target, class)
	}

	score := behavioralImpact(price, target, class)
	if score < -5 {
		plain := math.Round(adjusted*100) / 100
		if plainScore := behavioralImpact(plain, target, class); plainScore > score {
			price = plain
			score = plainScore
			technique = "plain"
		}
	}

	price = roundCentWithin(price, target, 0.20)
	return price, domain.PsychAnalysis{
		Class:           className,
		Technique:       technique,
		BehavioralScore: round2(score),
		LeadingDigitCut: leadingDigitReduced(price, target),
	}
}

// charmRound tries the class's cent endings on the current, lower and upper
// integer dollar amounts and keeps the candidate with the best behavioral
// score.
func charmRound(adjusted, target float64, class PsychClass) float64 {
	dollars := math.Floor(adjusted)
	bases := []float64{dollars, dollars - 1, dollars + 1}

	best := adjusted
	bestScore := math.Inf(-1)
	for _, base := range bases {
		if base < 0 {
			continue
		}
		for _, ending := range class.Endings {
			candidate := base + ending
			if candidate <= 0 {
				continue
			}
			if s := behavioralImpact(candidate, target, class); s > bestScore {
				bestScore = s
				best = candidate
			}
		}
	}
	return best
}

// prestigeRound rounds to clean steps (5/10/25/50 by magnitude) with a
// multiplicative luxury premium that shrinks as the price grows.
func prestigeRound(price float64) float64 {
	premium := 1 + 0.04*math.Min(1, 500/price)
	p := price * premium

	var step float64
	switch {
	case p < 250:
		step = 5
	case p < 1000:
		step = 10
	case p < 5000:
		step = 25
	default:
		step = 50
	}
	return math.Round(p/step) * step
}

// behavioralImpact scores how a candidate price lands psychologically
// relative to the pre-rounding target. Higher is better; strongly negative
// scores mean the rounding hurts more than it helps.
func behavioralImpact(candidate, target float64, class PsychClass) float64 {
	score := charmEndingScore(candidate)

	if leadingDigitReduced(candidate, target) {
		score += 5
	}

	changePct := 0.0
	if target > 0 {
		changePct = (candidate - target) / target * 100
	}
	// Sweet spot: small cuts and modest raises read as fair.
	if changePct >= -5 && changePct <= 10 {
		score += 2
	} else {
		score -= class.Sensitivity * math.Abs(changePct) / 2
	}

	for _, point := range canonicalPricePoints {
		if math.Abs(candidate-point) < 0.005 {
			score += 3
			break
		}
	}
	return score
}

func charmEndingScore(price float64) float64 {
	cents := math.Round((price-math.Floor(price))*100) / 100
	switch cents {
	case 0.99:
		return 4
	case 0.95:
		return 3.5
	case 0.49:
		return 2.5
	case 0.00:
		return 2
	default:
		return 0
	}
}

// leadingDigitReduced reports whether candidate shows a smaller leading
// digit string than original (19.99 vs 20 exploits left-digit bias).
func leadingDigitReduced(candidate, original float64) bool {
	ci := int(candidate)
	oi := int(original)
	if ci >= oi {
		return false
	}
	return digits(ci) < digits(oi) || firstDigit(ci) < firstDigit(oi)
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}

func firstDigit(n int) int {
	if n <= 0 {
		return 0
	}
	for n >= 10 {
		n /= 10
	}
	return n
}

// roundCentWithin clamps price into the ±pct band around target and rounds
// it to a cent without leaving the band again: near a bound the rounding
// snaps inward instead of crossing it.
func roundCentWithin(price, target, pct float64) float64 {
	lo := target * (1 - pct)
	hi := target * (1 + pct)
	p := round2(clampWithin(price, target, pct))
	if p > hi {
		p = math.Floor(hi*100) / 100
	}
	if p < lo {
		p = math.Ceil(lo*100) / 100
	}
	return p
}

func clampWithin(price, target, pct float64) float64 {
	lo := target * (1 - pct)
	hi := target * (1 + pct)
	if price < lo {
		return lo
	}
	if price > hi {
		return hi
	}
	return price
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

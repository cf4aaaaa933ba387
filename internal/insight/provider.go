// Package insight defines the market-insight capability: given a pricing
// context, optionally return a structured signal about demand and
// positioning. Providers must never let an internal failure escape the
// boundary; absence is the typed outcome.
package insight

import (
	"context"

	"priceoptim-engine/internal/domain"
)

// Provider is the capability-optional contract. ok=false means "no
// insight" for any reason: provider down, malformed answer, timeout.
type Provider interface {
	TryGetInsight(ctx context.Context, pc domain.PricingContext) (*domain.MarketInsight, bool)
}

// Disabled is the no-op provider used when insight is turned off.
type Disabled struct{}

func (Disabled) TryGetInsight(context.Context, domain.PricingContext) (*domain.MarketInsight, bool) {
	return nil, false
}

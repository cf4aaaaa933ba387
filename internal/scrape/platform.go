package scrape

import (
	"context"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Hints that a storefront runs on a hosted commerce platform with a
// predictive-search JSON API.
var platformHintRe = regexp.MustCompile(`/products/|\.myshopify\.com|/collections/|shopify`)

// PlatformDetector classifies store base URLs, caching verdicts so repeated
// term searches against the same store cost one detection fetch.
type PlatformDetector struct {
	fetcher *Fetcher
	cache   *lru.Cache[string, bool]
}

func NewPlatformDetector(fetcher *Fetcher) (*PlatformDetector, error) {
	cache, err := lru.New[string, bool](128)
	if err != nil {
		return nil, err
	}
	return &PlatformDetector{fetcher: fetcher, cache: cache}, nil
}

// Detect reports whether the base URL looks like a commerce-platform
// storefront. Detection failures are treated as "not a platform store" so
// the HTML fallback path still runs.
func (d *PlatformDetector) Detect(ctx context.Context, baseURL string) bool {
	if hit, ok := d.cache.Get(baseURL); ok {
		return hit
	}
	verdict := platformHintRe.MatchString(baseURL)
	if !verdict {
		body, err := d.fetcher.Get(ctx, baseURL)
		if err == nil {
			verdict = platformHintRe.Match(body)
		}
	}
	d.cache.Add(baseURL, verdict)
	return verdict
}

package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const (
	fetchTimeout  = 25 * time.Second
	maxAttempts   = 3
	backoffBase   = 1 * time.Second
	backoffCeil   = 10 * time.Second
	maxBodyBytes  = 4 << 20
	acceptLangHdr = "en-US,en;q=0.9"
)

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Gecko/20100101 Firefox/127.0",
}

// Fetcher issues rate-friendly GETs with rotating browser headers and
// capped exponential-backoff retry. 403/429 count as transient.
type Fetcher struct {
	hc      *http.Client
	metrics *Metrics
}

func NewFetcher(metrics *Metrics) *Fetcher {
	return &Fetcher{
		hc:      &http.Client{Timeout: fetchTimeout},
		metrics: metrics,
	}
}

// WithTransport swaps the underlying transport. Test hook.
func (f *Fetcher) WithTransport(rt http.RoundTripper) {
	f.hc.Transport = rt
}

// Get fetches url and returns the body. Retries up to maxAttempts on
// transient errors; the last classified error bubbles up on exhaustion.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffBase * time.Duration(1<<(attempt-2))
			if delay > backoffCeil {
				delay = backoffCeil
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			if f.metrics != nil {
				f.metrics.IncRetries()
			}
		}

		body, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if f.metrics != nil {
			f.metrics.IncError(errorTypeLabel(err))
		}
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", acceptLangHdr)

	start := time.Now()
	if f.metrics != nil {
		f.metrics.IncRequest("started")
	}
	res, err := f.hc.Do(req)
	if err != nil {
		return nil, classifyError(err, 0)
	}
	defer res.Body.Close()
	if f.metrics != nil {
		f.metrics.ObserveDuration(time.Since(start))
	}

	if res.StatusCode >= 400 {
		return nil, classifyError(nil, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyError(err, 0)
	}
	return body, nil
}

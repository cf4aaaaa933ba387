package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		wantLabel  string
	}{
		{"deadline exceeded", context.DeadlineExceeded, 0, "timeout"},
		{"wrapped deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), 0, "timeout"},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, 0, "connection"},
		{"status 403", nil, 403, "forbidden"},
		{"status 404", nil, 404, "not_found"},
		{"status 429", nil, 429, "rate_limited"},
		{"status 500", nil, 500, "other"},
		{"plain error", errors.New("boom"), 0, "other"},
	}
	for _, tt := range tests {
		got := classifyError(tt.err, tt.statusCode)
		if got == nil {
			t.Fatalf("%s: classifyError returned nil", tt.name)
		}
		if label := errorTypeLabel(got); label != tt.wantLabel {
			t.Fatalf("%s: label = %q, want %q", tt.name, label, tt.wantLabel)
		}
	}
}

func TestClassifyErrorNilClean(t *testing.T) {
	if err := classifyError(nil, 0); err != nil {
		t.Fatalf("clean call classified as %v", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrTimeout{Err: context.DeadlineExceeded}, true},
		{ErrConnection{Err: errors.New("reset")}, true},
		{ErrForbidden{Err: errors.New("403")}, true},
		{ErrRateLimited{Err: errors.New("429")}, true},
		{ErrNotFound{Err: errors.New("404")}, false},
		{ErrBadStatus{Status: 500}, false},
		{errors.New("parse failure"), false},
	}
	for _, tt := range tests {
		if got := retryable(tt.err); got != tt.want {
			t.Fatalf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("underlying")
	wrapped := ErrForbidden{Err: base}
	if !errors.Is(wrapped, base) {
		t.Fatalf("ErrForbidden should unwrap to its cause")
	}
}

package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "rate limited", err: &googleapi.Error{Code: 429}, want: ErrUpstreamUnavailable},
		{name: "request timeout", err: &googleapi.Error{Code: 408}, want: ErrUpstreamUnavailable},
		{name: "server error", err: &googleapi.Error{Code: 503}, want: ErrUpstreamUnavailable},
		{name: "bad request", err: &googleapi.Error{Code: 400}, want: ErrUpstreamRejected},
		{name: "forbidden", err: &googleapi.Error{Code: 403}, want: ErrUpstreamRejected},
		{name: "not found", err: &googleapi.Error{Code: 404}, want: ErrUpstreamRejected},
		{name: "transport failure", err: errors.New("connection reset"), want: ErrUpstreamUnavailable},
		{name: "wrapped api error", err: fmt.Errorf("call failed: %w", &googleapi.Error{Code: 500}), want: ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Errorf("classify() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_ContextErrors(t *testing.T) {
	got := classify(context.Canceled)
	if !errors.Is(got, context.Canceled) {
		t.Errorf("classify(context.Canceled) = %v", got)
	}
	if errors.Is(got, ErrUpstreamUnavailable) {
		t.Error("Context cancellation should not be classified as upstream failure")
	}
}

func TestRetryable(t *testing.T) {
	if !retryable(classify(&googleapi.Error{Code: 503})) {
		t.Error("Expected server errors to be retryable")
	}
	if retryable(classify(&googleapi.Error{Code: 400})) {
		t.Error("Expected bad requests not to be retryable")
	}
	if retryable(ErrInvalidRange) {
		t.Error("Expected invalid range not to be retryable")
	}
}

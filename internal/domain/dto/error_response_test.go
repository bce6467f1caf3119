package dto

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorResponse_Error(t *testing.T) {
	cases := []struct {
		name string
		resp ErrorResponse
		want string
	}{
		{name: "message only", resp: ErrorResponse{Message: "no data found"}, want: "no data found"},
		{name: "with details", resp: ErrorResponse{Message: "invalid window", ErrorDetails: "window must be a positive integer"},
			want: "invalid window: window must be a positive integer"},
		{name: "from wrapped error", resp: NewErrorResponse("pipeline failed", fmt.Errorf("fetch stage: %w", errors.New("http 401"))),
			want: "pipeline failed: fetch stage: http 401"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resp.Error(); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	e := NewErrorResponse("no data found", nil)
	if e.Message != "no data found" || e.ErrorDetails != "" {
		t.Fatalf("unexpected %+v", e)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Second {
		t.Fatalf("timestamp not set")
	}

	if e.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be UTC, got %v", e.Timestamp.Location())
	}

	e2 := NewErrorResponse("invalid window", errors.New("window must be a positive integer"))
	if e2.ErrorDetails != "window must be a positive integer" || e2.Message != "invalid window" {
		t.Fatalf("unexpected %+v", e2)
	}
}

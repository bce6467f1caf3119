package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/margintrend/internal/domain/dto"
)

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func serve(r *gin.Engine, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const incoming = "6f1c7b3a-2d4e-4f5a-9b8c-0d1e2f3a4b5c"

	cases := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "generated when absent"},
		{name: "reused when valid", header: incoming, wantSame: true},
		{name: "replaced when malformed", header: "not-a-uuid"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestID())
			var seen string
			r.GET("/", func(c *gin.Context) {
				seen = c.GetString(RequestIDKey)
				c.String(200, "ok")
			})

			h := http.Header{}
			if tc.header != "" {
				h.Set(RequestIDHeader, tc.header)
			}
			w := serve(r, "/", h)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if tc.wantSame != (got == tc.header) {
				t.Fatalf("header %q, sent %q, wantSame=%v", got, tc.header, tc.wantSame)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler)
	r.GET("/", func(c *gin.Context) { _ = c.Error(assertErr{}) })
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(assertErr{})
		c.String(http.StatusTeapot, "handled")
	})

	w := serve(r, "/", nil)
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.ErrorDetails != "boom" {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}

	if w := serve(r, "/written", nil); w.Code != http.StatusTeapot {
		t.Fatalf("handler response must be kept, code=%d", w.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, "/panic", nil)
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Message != "Internal server error" {
		t.Fatalf("body=%s err=%v", w.Body.String(), err)
	}
}

func TestRateLimiter(t *testing.T) {
	cases := []struct {
		name   string
		reqs   int
		lim    int
		expect int
	}{
		{name: "within limit", reqs: 2, lim: 3, expect: http.StatusOK},
		{name: "at limit", reqs: 3, lim: 3, expect: http.StatusOK},
		{name: "exceed limit", reqs: 5, lim: 3, expect: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RateLimiter(tc.lim, time.Minute))
			r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
			var last int
			for i := 0; i < tc.reqs; i++ {
				last = serve(r, "/", nil).Code
			}
			if last != tc.expect {
				t.Fatalf("expected %d, got %d", tc.expect, last)
			}
		})
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") {
		t.Fatalf("first request must pass")
	}
	if rl.allow("1.2.3.4") {
		t.Fatalf("second request in window must be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatalf("other clients are counted separately")
	}

	now = now.Add(2 * time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Fatalf("request after window must pass")
	}
	if len(rl.clients) != 1 {
		t.Fatalf("expired clients should be dropped, have %d", len(rl.clients))
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := newRateLimiter(0, 0)
	if rl.limit != DefaultRateLimit || rl.window != DefaultRateWindow {
		t.Fatalf("limit=%d window=%v", rl.limit, rl.window)
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var errCount int
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
		errCount = len(c.Errors)
	})
	w := serve(r, "/err", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
	if errCount != 1 {
		t.Fatalf("error should be attached to the context")
	}
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(5 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			if c.Request.Context().Err() != context.DeadlineExceeded {
				t.Errorf("unexpected ctx err %v", c.Request.Context().Err())
			}
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})
	if w := serve(r, "/", nil); w.Code != http.StatusGatewayTimeout {
		t.Fatalf("code=%d", w.Code)
	}
}

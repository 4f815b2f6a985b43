package ownhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	res, err := New().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	if got != UserAgent {
		t.Errorf("User-Agent = %q, want %q", got, UserAgent)
	}
}

func TestThrottle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewWithOptions(Options{RateLimit: 20, Burst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		res, err := client.Get(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
	}
	// 3 requests with 20 req/s and a burst of 1 need at least 2 * 50ms
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("requests were not throttled (%s)", elapsed)
	}
}

func TestThrottleCanceledWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	// the first request uses the only token, the second one would wait a minute
	limiter := rate.NewLimiter(rate.Every(time.Minute), 1)
	client := &http.Client{Transport: NewThrottleTransport(nil, limiter)}

	res, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if _, err := client.Do(req); err == nil {
		t.Error("expected the throttled request to fail with its context")
	}
}

func TestThrottleWithoutLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := &http.Client{Transport: NewThrottleTransport(nil, nil)}
	res, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
}

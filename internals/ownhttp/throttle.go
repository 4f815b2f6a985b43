package ownhttp

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottleTransport waits for the limiter before every request. Waiting is aborted
// with the request context, a nil Limiter does not throttle
type ThrottleTransport struct {
	T       http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip implements http.RoundTripper
func (tt *ThrottleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tt.Limiter != nil {
		if err := tt.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return tt.T.RoundTrip(req)
}

// NewThrottleTransport wraps T (or http.DefaultTransport)
func NewThrottleTransport(T http.RoundTripper, limiter *rate.Limiter) *ThrottleTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &ThrottleTransport{T: T, Limiter: limiter}
}

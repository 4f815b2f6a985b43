package ownhttp

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every request
var UserAgent = "prelaunch (https://github.com/minepkg/prelaunch)"

// Options configure the http client
type Options struct {
	// RateLimit is the number of requests per second. 0 disables throttling
	RateLimit float64
	// Burst is the number of requests that may exceed the rate limit at once
	Burst int
}

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
func New() *http.Client {
	return NewWithOptions(Options{})
}

// NewWithOptions returns a client that sets the User-Agent header and optionally
// throttles outgoing requests
func NewWithOptions(o Options) *http.Client {
	var transport http.RoundTripper = defaultTransport()
	if o.RateLimit > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		transport = NewThrottleTransport(transport, rate.NewLimiter(rate.Limit(o.RateLimit), burst))
	}
	return &http.Client{Transport: NewAddHeaderTransport(transport)}
}

func defaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   16,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

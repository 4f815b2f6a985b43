package manifests

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

// DefaultTimeout is used for metadata requests if the loader has no timeout set
const DefaultTimeout = 30 * time.Second

// fetch gets the first url that returns a valid document. validate is called with
// the complete body, documents that do not pass are treated like a failed request
func (l *Loader) fetch(ctx context.Context, urls []string, validate func([]byte) error) ([]byte, error) {
	var lastErr error = ErrMetadataUnavailable
	for _, u := range urls {
		buf, err := backoff.Retry(ctx, func() ([]byte, error) {
			buf, err := l.get(ctx, u)
			if err != nil {
				return nil, err
			}
			if err := validate(buf); err != nil {
				return nil, err
			}
			return buf, nil
		},
			backoff.WithBackOff(backoff.NewConstantBackOff(l.backoff())),
			backoff.WithMaxTries(uint(l.retries())),
		)
		if err == nil {
			return buf, nil
		}
		l.logger().Debugf("fetching %s failed: %s", u, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, lastErr)
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	// the deadline covers the body as well, a stalled transfer fails this attempt only
	reqCtx, cancel := context.WithTimeout(ctx, l.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.client().Do(req)
	if err != nil {
		return nil, timedOut(reqCtx, err, url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err := errors.Errorf("%s did respond with unexpected status %s", url, res.Status)
		// a missing document will not appear by asking again
		if res.StatusCode == http.StatusNotFound {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(timedOut(reqCtx, err, url), "reading %s", url)
	}
	return buf, nil
}

// timedOut marks errors caused by the request deadline with ErrRequestTimeout
func timedOut(reqCtx context.Context, err error, url string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrRequestTimeout, url)
	}
	return err
}

// checkSha1 returns a validator comparing the document hash (if one is expected)
func checkSha1(expected string, next func([]byte) error) func([]byte) error {
	return func(buf []byte) error {
		if expected != "" {
			sum := sha1.Sum(buf)
			if actual := hex.EncodeToString(sum[:]); !strings.EqualFold(actual, expected) {
				return errors.Errorf("document sha1 is %s but expected %s", actual, expected)
			}
		}
		return next(buf)
	}
}

func (l *Loader) client() *http.Client {
	if l.Client == nil {
		return http.DefaultClient
	}
	return l.Client
}

func (l *Loader) retries() int {
	if l.Retries <= 0 {
		return 2
	}
	return l.Retries
}

func (l *Loader) backoff() time.Duration {
	if l.Backoff <= 0 {
		return time.Second
	}
	return l.Backoff
}

func (l *Loader) timeout() time.Duration {
	if l.Timeout <= 0 {
		return DefaultTimeout
	}
	return l.Timeout
}

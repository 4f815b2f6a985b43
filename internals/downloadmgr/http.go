package downloadmgr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/minepkg/prelaunch/internals/utils"
)

const (
	// DefaultRetries is the number of attempts per url
	DefaultRetries = 3
	// DefaultBackoff is the fixed wait between two attempts
	DefaultBackoff = 2 * time.Second
	// DefaultTimeout is the timeout of a single request
	DefaultTimeout = 60 * time.Second
)

// HTTPItem is a URL, target pair with optional properties that will be downloaded
// using http(s)
type HTTPItem struct {
	Client *http.Client
	// URLs are tried in order until one succeeds (primary first, then mirrors)
	URLs   []string
	Target string
	// Sha1 is the expected hash. The download fails if it does not match
	Sha1 string
	// Size is only informational
	Size int64
	// Key is used to skip items that were already satisfied in this run
	Key string
	// Retries is the number of attempts per URL. Redirects use up one attempt each
	Retries int
	Backoff time.Duration
	// Timeout applies to each single request
	Timeout time.Duration
}

// Options are the defaults applied to new items
type Options struct {
	Client  *http.Client
	Retries int
	Backoff time.Duration
	Timeout time.Duration
}

// Item returns a new HTTPItem using these options
func (o Options) Item(urls []string, target string, sha string) *HTTPItem {
	return &HTTPItem{
		Client:  o.Client,
		URLs:    urls,
		Target:  target,
		Sha1:    sha,
		Retries: o.Retries,
		Backoff: o.Backoff,
		Timeout: o.Timeout,
	}
}

// Name returns the target of this item
func (i *HTTPItem) Name() string {
	return i.Target
}

// DedupeKey returns the key used for de-duplication
func (i *HTTPItem) DedupeKey() string {
	return i.Key
}

// Satisfied returns true if the target already exists and matches the expected hash.
// Without a hash every existing file is accepted, downloads never leave partial files behind
func (i *HTTPItem) Satisfied() bool {
	if i.Sha1 == "" {
		return utils.FileExists(i.Target)
	}
	ok, _ := Sha1Matches(i.Target, i.Sha1)
	return ok
}

// Download downloads the item to the defined target using http
func (i *HTTPItem) Download(ctx context.Context) error {
	if i.Satisfied() {
		return nil
	}
	if len(i.URLs) == 0 {
		return ErrNoURL
	}
	if err := utils.EnsureDir(filepath.Dir(i.Target)); err != nil {
		return err
	}

	var lastErr error
	for _, url := range i.URLs {
		lastErr = i.downloadURL(ctx, url, i.retries())
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

// downloadURL tries one url until the retries are used up.
// a redirect is re-issued to its target with one retry less
func (i *HTTPItem) downloadURL(ctx context.Context, url string, retries int) error {
	if retries < 1 {
		return &NetworkError{URL: url, Err: ErrTooManyRedirects}
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := i.attempt(ctx, url)
		var redirect *redirectError
		if errors.As(err, &redirect) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(i.backoff())),
		backoff.WithMaxTries(uint(retries)),
	)

	var redirect *redirectError
	if errors.As(err, &redirect) {
		return i.downloadURL(ctx, redirect.location, retries-1)
	}
	return err
}

// attempt does a single request. The body is streamed into a temporary sibling
// of the target which is only renamed into place if the hash matches
func (i *HTTPItem) attempt(ctx context.Context, url string) error {
	reqCtx, cancel := context.WithTimeout(ctx, i.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	res, err := i.client().Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: classify(err)}
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 && res.StatusCode < 400 {
		location, err := res.Location()
		if err != nil {
			return &NetworkError{URL: url, StatusCode: res.StatusCode, Err: err}
		}
		return &redirectError{location: location.String()}
	}

	if res.StatusCode != http.StatusOK {
		return &NetworkError{URL: url, StatusCode: res.StatusCode}
	}

	tmp := utils.TempSibling(i.Target)
	dest, err := os.Create(tmp)
	if err != nil {
		return err
	}

	hasher := sha1.New()
	_, err = io.Copy(io.MultiWriter(dest, hasher), res.Body)
	if closeErr := dest.Close(); err == nil && closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return &NetworkError{URL: url, Err: classify(err)}
	}

	// check sha if there is one set
	actualSha := hex.EncodeToString(hasher.Sum(nil))
	if i.Sha1 != "" && !strings.EqualFold(actualSha, i.Sha1) {
		os.Remove(tmp)
		return &ErrInvalidSha{FileName: i.Target, ExpectedSha: i.Sha1, ActualSha: actualSha}
	}

	if err := os.Rename(tmp, i.Target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (i *HTTPItem) client() *http.Client {
	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}
	// we follow redirects ourself, every redirect uses up one retry
	noRedirect := *client
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &noRedirect
}

func (i *HTTPItem) retries() int {
	if i.Retries <= 0 {
		return DefaultRetries
	}
	return i.Retries
}

func (i *HTTPItem) backoff() time.Duration {
	if i.Backoff <= 0 {
		return DefaultBackoff
	}
	return i.Backoff
}

func (i *HTTPItem) timeout() time.Duration {
	if i.Timeout <= 0 {
		return DefaultTimeout
	}
	return i.Timeout
}

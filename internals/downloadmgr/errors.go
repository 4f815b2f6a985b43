package downloadmgr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrDownloadTimeout is wrapped by a NetworkError if a request took too long
	ErrDownloadTimeout = errors.New("download timed out")
	// ErrTooManyRedirects is returned when the redirect budget of a download is used up
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNoURL is returned for items without any download url
	ErrNoURL = errors.New("no download url")
)

// ErrInvalidSha is returned when the downloaded file's sha1 sum does not match the expected one
type ErrInvalidSha struct {
	FileName    string
	ExpectedSha string
	ActualSha   string
}

func (e *ErrInvalidSha) Error() string {
	return fmt.Sprintf(
		"file corrupted: %s sha1 is invalid. expected to be %q but actually is %q",
		e.FileName,
		e.ExpectedSha,
		e.ActualSha,
	)
}

// NetworkError is returned when a file could not be fetched
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("invalid status code: %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("error while fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout returns true if the request timed out
func (e *NetworkError) Timeout() bool {
	return errors.Is(e.Err, ErrDownloadTimeout)
}

// IsHashMismatch returns true if err is (or wraps) an ErrInvalidSha
func IsHashMismatch(err error) bool {
	var invalid *ErrInvalidSha
	return errors.As(err, &invalid)
}

// classify turns request timeouts into ErrDownloadTimeout
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrDownloadTimeout, err)
	}
	return err
}

type redirectError struct {
	location string
}

func (e *redirectError) Error() string {
	return "redirected to " + e.location
}

package downloadmgr

import (
	"context"
	"sync"

	"github.com/minepkg/prelaunch/internals/progress"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrency is the upper bound of parallel downloads
const MaxConcurrency = 50

// Downloader allows downloadmgr to download the file
type Downloader interface {
	Download(ctx context.Context) error
}

// keyed downloaders are skipped if their key was already satisfied in this run
type keyed interface {
	DedupeKey() string
}

// Failure is a item that could not be downloaded
type Failure struct {
	Item Downloader
	Err  error
}

// Result is the outcome of a download run. Every queued item is either succeeded or failed
type Result struct {
	Succeeded []Downloader
	Failed    []Failure
}

// Total returns the number of items in this result
func (r *Result) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// OK returns true if nothing failed
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// Merge returns a result containing both results
func (r *Result) Merge(other *Result) *Result {
	return &Result{
		Succeeded: append(append([]Downloader{}, r.Succeeded...), other.Succeeded...),
		Failed:    append(append([]Failure{}, r.Failed...), other.Failed...),
	}
}

// DownloadManager includes a queue to download
type DownloadManager struct {
	queue []Downloader
	// Concurrency is the number of parallel downloads. 0 means it scales with the queue
	Concurrency int
	// Seen is shared between all downloads of a run. May be nil
	Seen       *SeenSet
	OnProgress progress.Notifier
}

// New creates a new downloadmgr
func New() *DownloadManager {
	return &DownloadManager{}
}

// Add adds a new item to the queue
func (d *DownloadManager) Add(i Downloader) {
	d.queue = append(d.queue, i)
}

// Len returns the number of queued items
func (d *DownloadManager) Len() int {
	return len(d.queue)
}

// workers returns the pool size: the configured concurrency or the queue size, capped at MaxConcurrency
func (d *DownloadManager) workers() int {
	n := d.Concurrency
	if n <= 0 {
		n = len(d.queue)
	}
	if n > MaxConcurrency {
		n = MaxConcurrency
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Start downloads the whole queue and returns once every item succeeded or failed.
// A single failing item does not stop the others. The returned error is only set if ctx was canceled
func (d *DownloadManager) Start(ctx context.Context) (*Result, error) {
	result := &Result{}
	if len(d.queue) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	total := len(d.queue)
	record := func(item Downloader, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed = append(result.Failed, Failure{Item: item, Err: err})
		} else {
			result.Succeeded = append(result.Succeeded, item)
		}
		d.OnProgress.Notify(progress.PhaseDownload, result.Total(), total)
	}

	g := errgroup.Group{}
	g.SetLimit(d.workers())
	for _, item := range d.queue {
		g.Go(func() error {
			record(item, d.download(ctx, item))
			return nil
		})
	}
	g.Wait()

	return result, ctx.Err()
}

// RetryFailed retries the failed items of a previous result one after another.
// The returned result contains all items of `prev`
func (d *DownloadManager) RetryFailed(ctx context.Context, prev *Result) (*Result, error) {
	retried := &Result{}
	for n, failure := range prev.Failed {
		if err := d.download(ctx, failure.Item); err != nil {
			retried.Failed = append(retried.Failed, Failure{Item: failure.Item, Err: err})
		} else {
			retried.Succeeded = append(retried.Succeeded, failure.Item)
		}
		d.OnProgress.Notify(progress.PhaseRetry, n+1, len(prev.Failed))
	}
	return (&Result{Succeeded: prev.Succeeded}).Merge(retried), ctx.Err()
}

func (d *DownloadManager) download(ctx context.Context, item Downloader) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	key := ""
	if k, ok := item.(keyed); ok {
		key = k.DedupeKey()
	}
	if key != "" && d.Seen.Has(key) {
		return nil
	}

	if err := item.Download(ctx); err != nil {
		return err
	}
	if key != "" {
		d.Seen.Add(key)
	}
	return nil
}

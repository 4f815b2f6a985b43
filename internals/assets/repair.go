package assets

import (
	"context"

	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/progress"
)

// RepairReport is the outcome of Repair
type RepairReport struct {
	Repaired []Object `json:"repaired"`
	// StillMissing could not be fixed. This is not fatal
	StillMissing []Object `json:"stillMissing"`
}

// Repair downloads the objects from the CDN and verifies them again. Objects sharing a hash
// are only downloaded once. The returned error is only set if ctx was canceled
func (s *Store) Repair(ctx context.Context, objects []Object) (*RepairReport, error) {
	report := &RepairReport{Repaired: []Object{}, StillMissing: []Object{}}
	if len(objects) == 0 {
		return report, nil
	}

	mgr := downloadmgr.New()
	mgr.Concurrency = s.Concurrency
	mgr.Seen = s.Seen
	mgr.OnProgress = func(e progress.Event) {
		phase := progress.PhaseRepair
		if e.Phase == progress.PhaseRetry {
			phase = progress.PhaseRetry
		}
		s.OnProgress.Notify(phase, e.Done, e.Total)
	}

	queued := map[string]bool{}
	for _, obj := range objects {
		if queued[obj.Hash] {
			continue
		}
		queued[obj.Hash] = true
		item := s.Download.Item(
			[]string{downloadmgr.ObjectURL(s.CDN, obj.Hash)},
			s.ObjectPath(obj.Hash),
			obj.Hash,
		)
		item.Key = "asset:" + obj.Hash
		item.Size = obj.Size
		mgr.Add(item)
	}

	result, err := mgr.Start(ctx)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		s.logger().Debugf("%d asset objects failed, retrying them one by one", len(result.Failed))
		if result, err = mgr.RetryFailed(ctx, result); err != nil {
			return nil, err
		}
	}
	for _, f := range result.Failed {
		s.logger().Debugf("asset object failed: %s", f.Err)
	}

	for _, obj := range objects {
		if Verify(s.ObjectPath(obj.Hash), obj.Hash).Valid {
			report.Repaired = append(report.Repaired, obj)
		} else {
			report.StillMissing = append(report.StillMissing, obj)
		}
	}
	return report, nil
}

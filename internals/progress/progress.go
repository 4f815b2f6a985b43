// Package progress contains the side channel used to report coarse progress
// (phase, done / total) to terminals or other user interfaces
package progress

// Phases reported by the acquisition pipeline
const (
	PhaseManifests   = "manifests"
	PhaseDownload    = "download"
	PhaseRetry       = "retry"
	PhaseVerify      = "assets.verify"
	PhaseRepair      = "assets.repair"
	PhaseMaterialize = "assets.materialize"
	PhaseNatives     = "natives"
)

// BatchSize is the granularity used by long running loops over objects
const BatchSize = 500

// Event is a single progress notification
type Event struct {
	Phase string
	Done  int
	Total int
}

// Fraction returns the progress between 0 and 1
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Done) / float64(e.Total)
}

// Notifier receives progress events. It must not block
type Notifier func(Event)

// Notify calls n if it is set
func (n Notifier) Notify(phase string, done int, total int) {
	if n == nil {
		return
	}
	n(Event{Phase: phase, Done: done, Total: total})
}

// Batched only notifies every `BatchSize` steps and on the last one
func (n Notifier) Batched(phase string, done int, total int) {
	if done%BatchSize == 0 || done == total {
		n.Notify(phase, done, total)
	}
}

// Chan returns a notifier sending to ch. Events are dropped if nobody is receiving
func Chan(ch chan<- Event) Notifier {
	return func(e Event) {
		select {
		case ch <- e:
		default:
		}
	}
}

// Multi sends every event to all notifiers
func Multi(notifiers ...Notifier) Notifier {
	return func(e Event) {
		for _, n := range notifiers {
			if n != nil {
				n(e)
			}
		}
	}
}

package launcher

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/minepkg/prelaunch/internals/progress"
)

var phaseText = map[string]string{
	progress.PhaseManifests:   "Resolving version descriptors",
	progress.PhaseDownload:    "Downloading libraries",
	progress.PhaseRetry:       "Retrying failed downloads",
	progress.PhaseVerify:      "Verifying assets",
	progress.PhaseRepair:      "Repairing assets",
	progress.PhaseMaterialize: "Copying legacy assets",
	progress.PhaseNatives:     "Extracting natives",
}

// PhaseText returns a human readable description of a progress phase
func PhaseText(phase string) string {
	if text, ok := phaseText[phase]; ok {
		return text
	}
	return phase
}

// MaybeSpinner is a spinner that can also just log text
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
	Msg     string

	out   io.Writer
	mu    sync.Mutex
	phase string
}

// Start might start the spinner
func (m *MaybeSpinner) Start() {
	if m.Spin {
		m.Spinner.Start()
	} else if m.Msg != "" {
		fmt.Fprintln(m.out, m.Msg)
	}
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	m.Spinner.Stop()
}

// Update will update the spinner text
func (m *MaybeSpinner) Update(t string) {
	m.Spinner.Suffix = " " + t

	if !m.Spin {
		fmt.Fprintln(m.out, t)
	}
}

// Notifier updates the spinner text on progress. Without spinning only phase changes are printed
func (m *MaybeSpinner) Notifier() progress.Notifier {
	return func(e progress.Event) {
		m.mu.Lock()
		defer m.mu.Unlock()
		text := fmt.Sprintf("%s (%d/%d)", PhaseText(e.Phase), e.Done, e.Total)
		if m.Spin {
			m.Spinner.Suffix = " " + text
			return
		}
		if e.Phase != m.phase {
			m.phase = e.Phase
			fmt.Fprintln(m.out, PhaseText(e.Phase))
		}
	}
}

// NewMaybeSpinner will return a new MaybeSpinner writing to stderr
func NewMaybeSpinner(spin bool) *MaybeSpinner {
	return NewMaybeSpinnerWithWriter(spin, os.Stderr)
}

// NewMaybeSpinnerWithWriter returns a new MaybeSpinner writing to w
func NewMaybeSpinnerWithWriter(spin bool, w io.Writer) *MaybeSpinner {
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 300*time.Millisecond, spinner.WithWriter(w)),
		Msg:     "",
		out:     w,
	}
	s.Spinner.Prefix = " "
	return s
}

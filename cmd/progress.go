package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/minepkg/prelaunch/internals/launcher"
	"github.com/minepkg/prelaunch/internals/progress"
)

// progressUI consumes progress events while a pipeline runs
type progressUI interface {
	Notifier() progress.Notifier
	Start()
	Stop()
}

// newProgressUI picks the animated view for interactive terminals, a spinner for
// non interactive terminals and plain lines otherwise. cancel is called on ctrl+c
func newProgressUI(cancel context.CancelFunc) progressUI {
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	switch {
	case tty && !nonInteractive() && os.Getenv("CI") == "":
		return newFancyProgress(cancel)
	default:
		return launcher.NewMaybeSpinner(tty && os.Getenv("CI") == "")
	}
}

type eventMsg progress.Event

type finishedMsg struct{}

var (
	phaseStyle = lipgloss.NewStyle().Width(32)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type progressModel struct {
	cancel   context.CancelFunc
	spinner  spinner.Model
	bar      progressbar.Model
	event    progress.Event
	width    int
	finished bool
}

func newProgressModel(cancel context.CancelFunc) progressModel {
	bar := progressbar.New(
		progressbar.WithDefaultGradient(),
		progressbar.WithWidth(40),
		progressbar.WithoutPercentage(),
	)
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	return progressModel{cancel: cancel, spinner: s, bar: bar}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case eventMsg:
		phaseChanged := m.event.Phase != msg.Phase
		m.event = progress.Event(msg)
		if phaseChanged {
			// new phases start from zero without animating backwards
			m.bar = newProgressModel(nil).bar
		}
		return m, m.bar.SetPercent(m.event.Fraction())
	case finishedMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressbar.FrameMsg:
		newModel, cmd := m.bar.Update(msg)
		if newModel, ok := newModel.(progressbar.Model); ok {
			m.bar = newModel
		}
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished || m.event.Phase == "" {
		return ""
	}

	w := lipgloss.Width(fmt.Sprintf("%d", m.event.Total))
	count := countStyle.Render(fmt.Sprintf(" %*d/%*d", w, m.event.Done, w, m.event.Total))
	spin := m.spinner.View() + " "
	phase := phaseStyle.Render(launcher.PhaseText(m.event.Phase))
	bar := m.bar.View()

	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(spin+phase+bar+count)))
	if m.width == 0 {
		gap = " "
	}
	return spin + phase + gap + bar + count
}

// fancyProgress renders progressModel. Events are buffered so the pipeline never waits for rendering
type fancyProgress struct {
	program *tea.Program
	events  chan progress.Event
	wg      sync.WaitGroup
}

func newFancyProgress(cancel context.CancelFunc) *fancyProgress {
	return &fancyProgress{
		program: tea.NewProgram(newProgressModel(cancel), tea.WithOutput(os.Stderr)),
		events:  make(chan progress.Event, 64),
	}
}

func (f *fancyProgress) Notifier() progress.Notifier {
	return progress.Chan(f.events)
}

func (f *fancyProgress) Start() {
	f.wg.Add(2)
	go func() {
		defer f.wg.Done()
		if _, err := f.program.Run(); err != nil {
			logger.Debugf("progress view failed: %s", err)
		}
	}()
	go func() {
		defer f.wg.Done()
		for e := range f.events {
			f.program.Send(eventMsg(e))
		}
	}()
}

func (f *fancyProgress) Stop() {
	close(f.events)
	f.program.Send(finishedMsg{})
	f.wg.Wait()
}

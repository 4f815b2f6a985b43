package cmdlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/jwalton/gchalk"
)

// Logger loggs pretty stuff to the console
type Logger struct {
	out       io.Writer
	emojis    bool
	verbose   bool
	indention int
	mu        *sync.Mutex
}

// helper for indention
func (l *Logger) println(a string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, strings.Repeat(" ", l.indention)+a)
}

func (l *Logger) sprintEmoji(e string) string {
	if l.emojis {
		return e + " "
	}
	return ""
}

// SetVerbose enables debug output
func (l *Logger) SetVerbose(v bool) {
	l.verbose = v
}

// Verbose returns true if debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Headline prints a blue line
func (l *Logger) Headline(s string) {
	l.println(gchalk.WithCyan().Bold(s))
}

// Info prints a "normal" line
func (l *Logger) Info(s string) {
	l.println(s)
}

// Infof is Info with formatting
func (l *Logger) Infof(format string, a ...interface{}) {
	l.println(fmt.Sprintf(format, a...))
}

// Log prints a gray line
func (l *Logger) Log(s string) {
	l.println(gchalk.Gray(s))
}

// Debugf only prints if verbose logging is enabled
func (l *Logger) Debugf(format string, a ...interface{}) {
	if !l.verbose {
		return
	}
	l.println(gchalk.Gray("[debug] " + fmt.Sprintf(format, a...)))
}

// Warn will print a warning
func (l *Logger) Warn(s string) {
	l.println(l.sprintEmoji("⚠️ ") + gchalk.WithYellow().Bold(s))
}

// Warnf is Warn with formatting
func (l *Logger) Warnf(format string, a ...interface{}) {
	l.Warn(fmt.Sprintf(format, a...))
}

// Error prints an error without exiting
func (l *Logger) Error(s string) {
	l.println(l.sprintEmoji("💣") + gchalk.WithRed().Bold("Error: ") + gchalk.Bold(s))
}

// Indent returns a logger that indents every line by n more spaces
func (l *Logger) Indent(n int) *Logger {
	logger := *l
	logger.indention += n
	return &logger
}

// NewTask returns a new Task logger
func (l *Logger) NewTask(end int) *Task {
	logger := *l
	return &Task{&logger, 0, end}
}

// New returns a new Logger writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter returns a new Logger writing to w
func NewWithWriter(w io.Writer) *Logger {
	emojis := runtime.GOOS != "windows"

	// disable color for CI
	if os.Getenv("CI") != "" {
		emojis = false
		gchalk.SetLevel(gchalk.LevelNone)
	}
	return &Logger{out: w, emojis: emojis, mu: &sync.Mutex{}}
}

// Discard returns a logger that drops everything. Useful for tests
func Discard() *Logger {
	return &Logger{out: io.Discard, mu: &sync.Mutex{}}
}

// Task logs but with progress
type Task struct {
	*Logger
	current int
	end     int
}

// Step prints progress
func (l *Task) Step(e string, s string) {
	l.current++
	text := gchalk.Cyan(fmt.Sprintf(
		"[%d / %d] %s%s",
		l.current,
		l.end,
		l.sprintEmoji(e),
		s,
	))

	// step headlines have no indentation
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, text)
}

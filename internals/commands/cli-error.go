package commands

import (
	"context"
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/minepkg/prelaunch/internals/classpath"
	"github.com/minepkg/prelaunch/internals/manifests"
	"github.com/minepkg/prelaunch/internals/patch"
)

// CliError is an error that might get displayed to the user
type CliError struct {
	Text        string
	Code        string
	Suggestions []string
	Help        string
	// Err is the original error
	Err error
}

func (e *CliError) Error() string {
	return e.Text
}

func (e *CliError) Unwrap() error {
	return e.Err
}

// RichError renders the error box including the suggestions
func (e *CliError) RichError() string {
	rendered := ErrorBox(e.Text, e.Help)
	if len(e.Suggestions) != 0 {
		suggestionText := "Suggestion:\n"
		if len(e.Suggestions) > 1 {
			suggestionText = "Suggestions:\n"
		}
		suggestionText = Emoji("📎 ") + suggestionText
		for _, s := range e.Suggestions {
			suggestionText += " ⦁ " + s + "\n"
		}
		rendered = lipgloss.JoinVertical(lipgloss.Left, rendered, styleHelpBox.Render(suggestionText))
	}
	return rendered
}

// FromError adds help for the well known pipeline errors. Other errors are returned as they are
func FromError(err error) error {
	var cliErr *CliError
	if err == nil || errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &CliError{Text: "Canceled", Code: "canceled", Err: err}
	case errors.Is(err, manifests.ErrVersionNotFound):
		return &CliError{
			Text: err.Error(),
			Code: "version-not-found",
			Err:  err,
			Suggestions: []string{
				"Run `prelaunch versions` to see all available versions",
				"Use `latest` to get the latest release",
			},
		}
	case errors.Is(err, manifests.ErrMetadataUnavailable):
		return &CliError{
			Text: err.Error(),
			Code: "metadata-unavailable",
			Err:  err,
			Help: "The version metadata could not be fetched and is not cached yet.",
			Suggestions: []string{
				"Check your internet connection",
				"Configure a different mirror with `prelaunch config set mirrors.base.primary <url>`",
			},
		}
	case errors.Is(err, patch.ErrRestoreFailed):
		return &CliError{
			Text:        err.Error(),
			Code:        "restore-failed",
			Err:         err,
			Help:        "A version descriptor could not be restored to its original content.",
			Suggestions: []string{"Delete the listed descriptors, they will be fetched again on the next run"},
		}
	case errors.Is(err, classpath.ErrNativesFailed):
		return &CliError{
			Text:        err.Error(),
			Code:        "natives-failed",
			Err:         err,
			Suggestions: []string{"Run `prelaunch prepare` again to download missing native libraries"},
		}
	}
	return err
}

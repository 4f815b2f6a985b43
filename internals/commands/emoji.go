package commands

import (
	"os"
	"runtime"
)

var emojiSupport = true

// EmojiEnabled is switched off by --no-color and in CI
var EmojiEnabled = true

func init() {
	if os.Getenv("CI") != "" {
		EmojiEnabled = false
	}

	// everything that is not windows usually has emoji support
	if runtime.GOOS != "windows" {
		return
	}

	// windows terminal does not set this, but raw cmd or powershell do
	if os.Getenv("SESSIONNAME") != "" {
		emojiSupport = false
	}
}

// Emoji returns the given string (usually a emoji) if the current terminal
// (probably) supports it
func Emoji(e string) string {
	if emojiSupport && EmojiEnabled {
		return e
	}
	return ""
}

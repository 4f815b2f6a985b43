package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

const (
	configKindString = iota
	configKindBool
	configKindInt
	configKindFloat
	configKindDuration
	configKindList
)

type configEntry struct {
	// key is the case sensitive name written to the config file
	key  string
	kind int
	help string
}

var entries = []configEntry{
	{"globalDir", configKindString, "directory containing versions, libraries & assets"},
	{"gameDir", configKindString, "game directory (saves, mods, resources)"},
	{"concurrency", configKindInt, "maximum parallel downloads, 0 scales with the amount of files"},
	{"retries", configKindInt, "attempts per url"},
	{"backoff", configKindDuration, "wait time between attempts"},
	{"requestTimeout", configKindDuration, "timeout of a single request"},
	{"rateLimit", configKindFloat, "maximum requests per second, 0 disables the limit"},
	{"mirrors.base.primary", configKindString, "vanilla metadata host"},
	{"mirrors.base.fallback", configKindString, "vanilla metadata fallback host"},
	{"mirrors.overlay.primary", configKindString, "fabric metadata host"},
	{"mirrors.overlay.fallback", configKindString, "fabric metadata fallback host"},
	{"resourcesCdn", configKindString, "asset object download root"},
	{"libraryRepositories", configKindList, "comma separated maven repositories"},
	{"classpathStrategy", configKindString, "\"graph\" or \"scan\""},
	{"playerName", configKindString, "offline player name"},
	{"ramMiB", configKindInt, "max heap size in MiB, 0 derives it from the system memory"},
	{"nonInteractive", configKindBool, "never prompt and never render animated progress"},
	{"verboseLogging", configKindBool, "print debug output"},
}

// lookup is case insensitive like viper
func lookup(key string) (configEntry, bool) {
	for _, entry := range entries {
		if strings.EqualFold(entry.key, key) {
			return entry, true
		}
	}
	return configEntry{}, false
}

// SubCmd is the `config` command
var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}

// Path returns the location `config set` writes to
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "prelaunch", "config.toml"), nil
}

func keys() []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.key)
	}
	sort.Strings(names)
	return names
}

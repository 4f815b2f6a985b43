// Package launchcmd builds the java command line for a merged descriptor
package launchcmd

import (
	"crypto/md5"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/pbnjay/memory"
	"github.com/samber/lo"
)

// ErrNoMainClass is returned for descriptors without a main class
var ErrNoMainClass = errors.New("descriptor has no main class")

var variableRegex = regexp.MustCompile(`\$\{[a-zA-Z0-9_]+\}`)

// totalMemory is replaced in tests
var totalMemory = memory.TotalMemory

// Options are the runtime values used for the placeholders
type Options struct {
	PlayerName string
	// AccessToken is only a stand-in, there is no online authentication
	AccessToken string
	UserType    string

	GameDir          string
	AssetsDir        string
	VirtualAssetsDir string
	NativesDir       string
	LibrariesDir     string
	ClientJar        string

	LauncherName    string
	LauncherVersion string

	// RamMiB is the max heap size. 0 derives it from the system memory
	RamMiB int
	// Features are matched by argument rules (like "has_custom_resolution")
	Features map[string]bool
	Width    int
	Height   int

	ExtraJVMArgs []string
}

// Command is the finished command line (without the java executable)
type Command struct {
	JVMArgs   []string `json:"jvmArgs"`
	MainClass string   `json:"mainClass"`
	GameArgs  []string `json:"gameArgs"`
	// Dir is the working directory for the process
	Dir string `json:"dir"`
}

// Argv returns jvm arguments, main class and game arguments in order
func (c *Command) Argv() []string {
	argv := make([]string, 0, len(c.JVMArgs)+1+len(c.GameArgs))
	argv = append(argv, c.JVMArgs...)
	argv = append(argv, c.MainClass)
	return append(argv, c.GameArgs...)
}

func (c *Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// OfflineUUID returns the stable pseudo uuid for a player name: the md5 of the name
// formatted as a uuid. No version bits are set
func OfflineUUID(name string) string {
	return uuid.UUID(md5.Sum([]byte(name))).String()
}

// MaxRamMiB returns the default heap size: a quarter of the system memory but at least 1GiB,
// never more than 85% of the system memory
func MaxRamMiB() int {
	sysMemMiB := float64(totalMemory()) / 1024 / 1024
	if sysMemMiB == 0 {
		return 1024
	}
	maxRamMiB := math.Max(1024, sysMemMiB/4)
	return int(math.Min(maxRamMiB, sysMemMiB*0.85))
}

// Builder turns descriptors into commands
type Builder struct {
	Env    minecraft.Env
	Logger *cmdlog.Logger
}

// NewBuilder returns a builder for the current environment
func NewBuilder() *Builder {
	return &Builder{Env: minecraft.CurrentEnv()}
}

// Variables returns the values for all known placeholders
func (b *Builder) Variables(m *minecraft.LaunchManifest, classpath string, opts Options) map[string]string {
	opts = withDefaults(opts)

	vars := map[string]string{
		"auth_player_name":  opts.PlayerName,
		"auth_uuid":         OfflineUUID(opts.PlayerName),
		"auth_access_token": opts.AccessToken,
		"auth_session":      opts.AccessToken,
		"auth_xuid":         "0",
		"clientid":          "0",
		"user_type":         opts.UserType,
		"user_properties":   "{}",

		// the minecraft version
		"version_name": m.ID,
		// release / snapshot … etc
		"version_type": m.Type,
		// minecraft game dir that contains saves, worlds & mods
		"game_directory": opts.GameDir,
		// asset dir contains some shared minecraft resources like sounds & some textures
		"assets_root": opts.AssetsDir,
		// legacy versions read a plain file tree
		"game_assets":       opts.VirtualAssetsDir,
		"assets_index_name": m.Assets,

		"launcher_name":       opts.LauncherName,
		"launcher_version":    opts.LauncherVersion,
		"classpath":           classpath,
		"classpath_separator": string(os.PathListSeparator),
		"natives_directory":   opts.NativesDir,
		"library_directory":   opts.LibrariesDir,
	}
	if opts.Width > 0 && opts.Height > 0 {
		vars["resolution_width"] = strconv.Itoa(opts.Width)
		vars["resolution_height"] = strconv.Itoa(opts.Height)
	}
	return vars
}

// Build returns the command for the merged descriptor m. Arguments are filtered by their rules
// before the placeholders are replaced. Unknown placeholders are kept as they are
func (b *Builder) Build(m *minecraft.LaunchManifest, classpath []string, opts Options) (*Command, error) {
	if m.MainClass == "" {
		return nil, ErrNoMainClass
	}
	opts = withDefaults(opts)

	features := map[string]bool{}
	for k, v := range opts.Features {
		features[k] = v
	}
	if opts.Width > 0 && opts.Height > 0 {
		features["has_custom_resolution"] = true
	}
	env := b.Env.WithFeatures(features)

	vars := b.Variables(m, strings.Join(classpath, string(os.PathListSeparator)), opts)
	replacerArgs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		replacerArgs = append(replacerArgs, "${"+k+"}", v)
	}
	replacer := strings.NewReplacer(replacerArgs...)
	replace := func(templates []string) []string {
		out := make([]string, 0, len(templates))
		for _, template := range templates {
			replaced := replacer.Replace(template)
			if variableRegex.MatchString(replaced) {
				b.logger().Debugf("unresolved variable in launch args: %s", replaced)
			}
			out = append(out, replaced)
		}
		return out
	}

	jvmTemplates := applicable(m.Arguments.JVM, env)
	if !references(jvmTemplates, "${classpath}") {
		jvmTemplates = append(jvmTemplates, applicable(defaultJVMArguments, env)...)
	}

	gameTemplates := applicable(m.Arguments.Game, env)
	if len(m.Arguments.Game) == 0 {
		gameTemplates = m.LegacyArgs()
	}

	jvmArgs := append(b.memoryArgs(opts), replace(withoutHeapArgs(jvmTemplates))...)
	// prepend this so macos does not crash
	if env.OS == "osx" && !lo.Contains(jvmArgs, "-XstartOnFirstThread") {
		jvmArgs = append([]string{"-XstartOnFirstThread"}, jvmArgs...)
	}

	return &Command{
		JVMArgs:   jvmArgs,
		MainClass: m.MainClass,
		GameArgs:  replace(gameTemplates),
		Dir:       opts.GameDir,
	}, nil
}

func (b *Builder) memoryArgs(opts Options) []string {
	ram := opts.RamMiB
	if ram == 0 {
		ram = MaxRamMiB()
	}

	args := []string{}
	if opts.RamMiB != 0 {
		args = append(args, fmt.Sprintf("-Xms%dM", opts.RamMiB))
	}
	args = append(args, fmt.Sprintf("-Xmx%dM", ram))
	if opts.ClientJar != "" {
		args = append(args, "-Dminecraft.client.jar="+opts.ClientJar)
	}
	return append(args, opts.ExtraJVMArgs...)
}

// defaultJVMArguments are used by descriptors that do not set the classpath themselves
var defaultJVMArguments = []minecraft.Argument{
	minecraft.NewArgument("-Djava.library.path=${natives_directory}"),
	minecraft.NewArgument("-cp"),
	minecraft.NewArgument("${classpath}"),
}

// applicable returns the values of all arguments whose rules allow env
func applicable(arguments []minecraft.Argument, env minecraft.Env) []string {
	values := []string{}
	for _, arg := range arguments {
		if arg.Rules.Allowed(env) {
			values = append(values, arg.Values()...)
		}
	}
	return values
}

func references(templates []string, variable string) bool {
	for _, t := range templates {
		if strings.Contains(t, variable) {
			return true
		}
	}
	return false
}

// withoutHeapArgs removes -Xmx and -Xms, they are set from the options
func withoutHeapArgs(args []string) []string {
	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-Xmx") && !strings.HasPrefix(arg, "-Xms") {
			filtered = append(filtered, arg)
		}
	}
	return filtered
}

func withDefaults(opts Options) Options {
	if opts.PlayerName == "" {
		opts.PlayerName = "Player"
	}
	if opts.AccessToken == "" {
		opts.AccessToken = "0"
	}
	if opts.UserType == "" {
		opts.UserType = "legacy"
	}
	if opts.LauncherName == "" {
		opts.LauncherName = "prelaunch"
	}
	if opts.LauncherVersion == "" {
		opts.LauncherVersion = "0.0.0"
	}
	if opts.VirtualAssetsDir == "" {
		opts.VirtualAssetsDir = opts.AssetsDir
	}
	return opts
}

func (b *Builder) logger() *cmdlog.Logger {
	if b.Logger == nil {
		return cmdlog.Discard()
	}
	return b.Logger
}

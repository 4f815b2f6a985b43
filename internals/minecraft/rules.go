package minecraft

import (
	"regexp"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
)

// Rule is a rule that can be applied to an argument or library.
// It can be used to determine if the argument or library should be applied to a specific OS.
type Rule struct {
	Action   string          `json:"action"`
	OS       OS              `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OS defines the feature of an OS that can be used in a [Rule] to determine if it should be applied.
type OS struct {
	Name string `json:"name,omitempty"`
	// Version of the os (can be a regex string)
	Version string `json:"version,omitempty"`
	// Arch of the system
	Arch string `json:"arch,omitempty"`
}

// Env is the platform rules are evaluated against
type Env struct {
	// OS is "windows", "osx" or "linux"
	OS string
	// OSVersion is matched against version regexes in rules
	OSVersion string
	// Arch is "x86", "x64", "arm32" or "arm64"
	Arch     string
	Features map[string]bool
}

var (
	currentEnv     Env
	currentEnvOnce sync.Once
)

// CurrentEnv returns the environment of the running system. The result is cached
func CurrentEnv() Env {
	currentEnvOnce.Do(func() {
		currentEnv = Env{
			OS:        NormalizeOS(runtime.GOOS),
			OSVersion: osVersion(),
			Arch:      NormalizeArch(runtime.GOARCH),
		}
	})
	return currentEnv
}

// WithFeatures returns a copy of the env with the given features enabled
func (e Env) WithFeatures(features map[string]bool) Env {
	merged := make(map[string]bool, len(e.Features)+len(features))
	for k, v := range e.Features {
		merged[k] = v
	}
	for k, v := range features {
		merged[k] = v
	}
	e.Features = merged
	return e
}

// WordSize returns "64" or "32". it is used to replace the ${arch} variable in native classifiers
func (e Env) WordSize() string {
	switch e.Arch {
	case "x86", "arm32":
		return "32"
	default:
		return "64"
	}
}

// NormalizeOS translates a GOOS value to the name used in launch manifests
func NormalizeOS(goos string) string {
	if goos == "darwin" {
		return "osx"
	}
	return goos
}

// NormalizeArch translates a GOARCH value to the name used in launch manifests
// note: we don't know how other platforms are named
func NormalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "x64"
	case "386", "i386":
		return "x86"
	case "arm":
		return "arm32"
	}
	return arch
}

func osVersion() string {
	// java reports the kernel version as os.version on linux
	if runtime.GOOS == "linux" {
		v, err := host.KernelVersion()
		if err == nil {
			return v
		}
		return ""
	}
	_, _, version, err := host.PlatformInformation()
	if err != nil {
		return ""
	}
	return version
}

// AppliesFor returns false if this rule vetoes the given environment.
// "allow" rules have to match, "disallow" rules must not match
func (r Rule) AppliesFor(env Env) bool {
	matches := r.matches(env)
	if r.Action == "disallow" {
		return !matches
	}
	return matches
}

func (r Rule) matches(env Env) bool {
	if r.OS.Name != "" && r.OS.Name != env.OS {
		return false
	}

	if r.OS.Arch != "" && r.OS.Arch != env.Arch {
		return false
	}

	if r.OS.Version != "" {
		re, err := regexp.Compile(r.OS.Version)
		if err != nil || !re.MatchString(env.OSVersion) {
			return false
		}
	}

	for feature, want := range r.Features {
		if env.Features[feature] != want {
			return false
		}
	}

	return true
}

// Rules is an ordered list of rules
type Rules []Rule

// Allowed returns true if every rule allows the given environment.
// Empty rules always allow
func (r Rules) Allowed(env Env) bool {
	for _, rule := range r {
		if !rule.AppliesFor(env) {
			return false
		}
	}
	return true
}

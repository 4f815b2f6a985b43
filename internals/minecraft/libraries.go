package minecraft

import (
	"strings"
)

// Libraries as a collection of minecraft libs
type Libraries []Library

// Required returns only the libraries that are allowed by their rules in the given environment.
// Libraries that only contain natives for other platforms are skipped as well.
func (l Libraries) Required(env Env) Libraries {
	required := make(Libraries, 0, len(l))

	for _, lib := range l {
		// did some rules not apply? skip this library
		if !lib.Rules.Allowed(env) {
			continue
		}

		// natives only library without a native for this platform
		if len(lib.Natives) != 0 && lib.Natives[env.OS] == "" && !lib.HasMainArtifact() {
			continue
		}

		// not skipped. append this library
		required = append(required, lib)
	}

	return required
}

// Library is a minecraft library
type Library struct {
	// Name is the maven coordinate of the library
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads,omitempty"`
	// URL is a custom maven repository root (used by fabric)
	URL string `json:"url,omitempty"`
	// Sha1 is set by some fabric libraries that have no "downloads" block
	Sha1 string `json:"sha1,omitempty"`
	// Rules is a list of rules that determine whether this library should be included.
	// If no rules are specified, the library is included by default.
	Rules Rules `json:"rules,omitempty"`
	// Natives is a map of OS names to native library names.
	// This field is no longer used after 1.19
	// Newer library versions extract the native library from a jar at runtime.
	Natives map[string]string `json:"natives,omitempty"`
	// Extract contains exclusion patterns for native extraction
	Extract *ExtractRules `json:"extract,omitempty"`
}

// LibraryDownloads describes where to get the library jars
type LibraryDownloads struct {
	Artifact *Artifact `json:"artifact,omitempty"`
	// Classifiers is a list of additional artifacts.
	// It is used to download native libraries.
	// The `Natives` field is used to determine which classifier to use.
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// ExtractRules control what is extracted from native jars
type ExtractRules struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Coordinate parses the name of this library
func (l *Library) Coordinate() (Coordinate, error) {
	return ParseCoordinate(l.Name)
}

// Key returns the `group:artifact` identity of this library or "" if the name is invalid
func (l *Library) Key() string {
	c, err := l.Coordinate()
	if err != nil {
		return ""
	}
	return c.Key()
}

// HasMainArtifact returns false for old natives only libraries (like lwjgl-platform)
func (l *Library) HasMainArtifact() bool {
	return l.Downloads.Artifact != nil || len(l.Natives) == 0
}

// Artifact returns the main jar of this library with a slash separated path relative
// to the libraries folder. The URL is only set if the manifest contains one
func (l *Library) Artifact() (*Artifact, error) {
	explicit := l.Downloads.Artifact
	if explicit != nil && explicit.Path != "" {
		a := *explicit
		return &a, nil
	}

	c, err := l.Coordinate()
	if err != nil {
		return nil, err
	}

	a := &Artifact{Path: c.Path(), Sha1: l.Sha1}
	if explicit != nil {
		a.URL = explicit.URL
		a.Sha1 = explicit.Sha1
		a.Size = explicit.Size
	}
	return a, nil
}

// NativeClassifier returns the classifier of the native jar for the given environment
func (l *Library) NativeClassifier(env Env) string {
	classifier := l.Natives[env.OS]
	return strings.ReplaceAll(classifier, "${arch}", env.WordSize())
}

// NativeArtifact returns the native jar for the given environment.
// ok is false if this library has no natives for it
func (l *Library) NativeArtifact(env Env) (a *Artifact, ok bool) {
	classifier := l.NativeClassifier(env)
	if classifier == "" {
		return nil, false
	}

	if native, ok := l.Downloads.Classifiers[classifier]; ok && native.Path != "" {
		return &native, true
	}

	c, err := l.Coordinate()
	if err != nil {
		return nil, false
	}
	return &Artifact{Path: c.WithClassifier(classifier).Path()}, true
}

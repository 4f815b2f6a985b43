// Package resolver reconciles the library graph of a base descriptor with the one
// of an overlay (mod loader) descriptor
package resolver

import (
	"fmt"

	"github.com/minepkg/prelaunch/internals/minecraft"
)

// Conflict is a library declared by both descriptors with different versions
type Conflict struct {
	// Key is the `group:artifact` identity
	Key            string `json:"key"`
	BaseVersion    string `json:"baseVersion"`
	OverlayVersion string `json:"overlayVersion"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s (%s → %s)", c.Key, c.BaseVersion, c.OverlayVersion)
}

// FindConflicts returns all libraries of overlay that are also in base with a different version.
// A key listed several times in base conflicts as soon as one of its versions differs.
// They are ordered like the overlay libraries and every key is only reported once.
// Base libraries with invalid names are never considered
func FindConflicts(base *minecraft.LaunchManifest, overlay *minecraft.LaunchManifest) []Conflict {
	baseVersions := make(map[string][]string, len(base.Libraries))
	for _, lib := range base.Libraries {
		c, err := lib.Coordinate()
		if err != nil {
			continue
		}
		baseVersions[c.Key()] = append(baseVersions[c.Key()], c.Version)
	}

	conflicts := make([]Conflict, 0)
	reported := make(map[string]bool)
	for _, lib := range overlay.Libraries {
		c, err := lib.Coordinate()
		if err != nil {
			continue
		}
		key := c.Key()
		if reported[key] {
			continue
		}
		baseVersion := ""
		for _, v := range baseVersions[key] {
			if v != c.Version {
				baseVersion = v
				break
			}
		}
		if baseVersion == "" {
			continue
		}
		reported[key] = true
		conflicts = append(conflicts, Conflict{Key: key, BaseVersion: baseVersion, OverlayVersion: c.Version})
	}
	return conflicts
}

// Keys returns the identity keys of all conflicts
func Keys(conflicts []Conflict) []string {
	keys := make([]string, len(conflicts))
	for i, c := range conflicts {
		keys[i] = c.Key
	}
	return keys
}

// Resolve returns a copy of base without the conflicting libraries, the overlay version always wins.
// If conflicts is nil they are computed with FindConflicts. Neither base nor overlay is modified
func Resolve(base *minecraft.LaunchManifest, overlay *minecraft.LaunchManifest, conflicts []Conflict) *minecraft.LaunchManifest {
	if conflicts == nil {
		conflicts = FindConflicts(base, overlay)
	}
	resolved := base.Clone()
	resolved.Libraries = RemoveLibraries(base.Libraries, Keys(conflicts))
	return resolved
}

// RemoveLibraries returns the libraries without the ones matching any key.
// Libraries with invalid names are always kept
func RemoveLibraries(libs minecraft.Libraries, keys []string) minecraft.Libraries {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}

	kept := make(minecraft.Libraries, 0, len(libs))
	for _, lib := range libs {
		if key := lib.Key(); key != "" && drop[key] {
			continue
		}
		kept = append(kept, lib)
	}
	return kept
}

package launcher

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minepkg/prelaunch/internals/artifacts"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/utils"
)

// LibraryStatus is one library file required by a descriptor
type LibraryStatus struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Native  bool   `json:"native"`
	Present bool   `json:"present"`
}

// Libraries returns the state of every library file m requires in this environment
func (l *Launcher) Libraries(m *minecraft.LaunchManifest) []LibraryStatus {
	statuses := []LibraryStatus{}
	add := func(lib minecraft.Library, a *minecraft.Artifact, native bool) {
		target := filepath.Join(l.Instance.LibrariesDir(), filepath.FromSlash(a.Path))
		statuses = append(statuses, LibraryStatus{
			Name:    lib.Name,
			Path:    target,
			Native:  native,
			Present: utils.FileExists(target),
		})
	}

	for _, lib := range m.Libraries.Required(l.Env) {
		if lib.HasMainArtifact() {
			if a, err := lib.Artifact(); err == nil {
				add(lib, a, false)
			}
		}
		if native, ok := lib.NativeArtifact(l.Env); ok {
			add(lib, native, true)
		}
	}
	return statuses
}

// LocalDescriptors reads every cached descriptor (`versions/<id>/<id>.json`). Unreadable files are skipped
func (l *Launcher) LocalDescriptors() ([]*minecraft.LaunchManifest, error) {
	isDescriptor := func(rel string, d fs.DirEntry) bool {
		dir, file := path.Split(rel)
		return strings.TrimSuffix(dir, "/")+".json" == file
	}
	files := artifacts.New(l.Instance.VersionsDir(), artifacts.WithExtension(".json"), isDescriptor)

	descriptors := []*minecraft.LaunchManifest{}
	err := files.Walk(func(e artifacts.Entry) error {
		m := &minecraft.LaunchManifest{}
		if err := utils.ReadJSONFile(e.Path, m); err != nil {
			l.logger().Debugf("skipping unreadable descriptor %s: %s", e.Rel, err)
			return nil
		}
		descriptors = append(descriptors, m)
		return nil
	})
	return descriptors, err
}

// referencedPaths returns the relative paths of all library files of the descriptors on every platform
func referencedPaths(descriptors []*minecraft.LaunchManifest) map[string]bool {
	paths := map[string]bool{}
	for _, m := range descriptors {
		for _, lib := range m.Libraries {
			if a, err := lib.Artifact(); err == nil {
				paths[a.Path] = true
			}
			for _, a := range lib.Downloads.Classifiers {
				if a.Path != "" {
					paths[a.Path] = true
				}
			}
			c, err := lib.Coordinate()
			if err != nil {
				continue
			}
			for _, classifier := range lib.Natives {
				for _, size := range []string{"32", "64"} {
					resolved := strings.ReplaceAll(classifier, "${arch}", size)
					paths[c.WithClassifier(resolved).Path()] = true
				}
			}
		}
	}
	return paths
}

// OrphanedLibraries returns the jars in the libraries directory that none of the descriptors reference
func (l *Launcher) OrphanedLibraries(descriptors ...*minecraft.LaunchManifest) ([]artifacts.Entry, error) {
	referenced := referencedPaths(descriptors)

	orphans := []artifacts.Entry{}
	jars := artifacts.New(l.Instance.LibrariesDir(), artifacts.WithExtension(".jar"))
	err := jars.Walk(func(e artifacts.Entry) error {
		if !referenced[e.Rel] {
			orphans = append(orphans, e)
		}
		return nil
	})
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Rel < orphans[j].Rel })
	return orphans, err
}

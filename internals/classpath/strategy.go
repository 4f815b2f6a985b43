package classpath

import (
	"fmt"
	"path/filepath"

	"github.com/minepkg/prelaunch/internals/artifacts"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/utils"
)

// Strategy decides which library files end up on the classpath
type Strategy interface {
	// Libraries returns the library files in classpath order
	Libraries(c *Composer, m *minecraft.LaunchManifest) ([]string, error)
}

// StrategyByName returns "graph" (default) or "scan"
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", "graph":
		return GraphStrategy{}, nil
	case "scan":
		return ScanStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown classpath strategy %q (use graph or scan)", name)
}

// GraphStrategy only uses libraries of the descriptor that apply to the environment
// and exist on disk. Libraries with invalid names and no explicit path are skipped
type GraphStrategy struct{}

func (GraphStrategy) Libraries(c *Composer, m *minecraft.LaunchManifest) ([]string, error) {
	paths := []string{}
	for _, lib := range m.Libraries.Required(c.Env) {
		if !lib.HasMainArtifact() {
			continue
		}
		path, err := c.LibraryPath(&lib)
		if err != nil {
			c.logger().Debugf("skipping library %q: %s", lib.Name, err)
			continue
		}
		if !utils.FileExists(path) {
			c.logger().Debugf("skipping missing library %s", path)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ScanStrategy uses every jar below the libraries directory, ordered by path
type ScanStrategy struct{}

func (ScanStrategy) Libraries(c *Composer, m *minecraft.LaunchManifest) ([]string, error) {
	entries, err := artifacts.New(c.LibrariesDir, artifacts.WithExtension(".jar")).List()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}

// LibraryPath returns the main jar location of a library
func (c *Composer) LibraryPath(lib *minecraft.Library) (string, error) {
	a, err := lib.Artifact()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.LibrariesDir, filepath.FromSlash(a.Path)), nil
}

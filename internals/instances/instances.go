package instances

import (
	"os"
	"path/filepath"

	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/pkg/errors"
)

// Instance describes the local directories used to prepare and run minecraft
type Instance struct {
	// GlobalDir is the directory containing everything required to run minecraft.
	// this includes the libraries, assets & versions folders
	// it defaults to $HOME/.prelaunch
	GlobalDir string
	// Directory is the game directory containing saves, mods & the resources folder
	Directory string
}

// New returns a new instance. gameDir defaults to "instances/default" inside the global dir
func New(globalDir string, gameDir string) *Instance {
	if gameDir == "" {
		gameDir = filepath.Join(globalDir, "instances", "default")
	}
	return &Instance{GlobalDir: globalDir, Directory: gameDir}
}

// DefaultGlobalDir returns $HOME/.prelaunch
func DefaultGlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".prelaunch"), nil
}

// VersionsDir returns the path to the versions directory
func (i *Instance) VersionsDir() string {
	return filepath.Join(i.GlobalDir, "versions")
}

// AssetsDir returns the path to the assets directory
func (i *Instance) AssetsDir() string {
	return filepath.Join(i.GlobalDir, "assets")
}

// LibrariesDir returns the path to the libraries directory
func (i *Instance) LibrariesDir() string {
	return filepath.Join(i.GlobalDir, "libraries")
}

// ResourcesDir returns the path to the legacy resources directory inside the game directory
func (i *Instance) ResourcesDir() string {
	return filepath.Join(i.Directory, "resources")
}

// VersionDir returns the directory of a single version
func (i *Instance) VersionDir(id string) string {
	return filepath.Join(i.VersionsDir(), id)
}

// DescriptorPath returns the path to the version json
func (i *Instance) DescriptorPath(id string) string {
	return filepath.Join(i.VersionDir(id), id+".json")
}

// ClientJarPath returns the path to the client jar of the given version
func (i *Instance) ClientJarPath(id string) string {
	return filepath.Join(i.VersionDir(id), id+".jar")
}

// NativesDir returns the directory natives are extracted to
func (i *Instance) NativesDir(id string) string {
	return filepath.Join(i.VersionDir(id), "natives")
}

// EnsureDirs creates every root directory. It is idempotent
func (i *Instance) EnsureDirs() error {
	if i.GlobalDir == "" {
		return errors.New("no global directory set")
	}
	dirs := []string{
		i.VersionsDir(),
		i.LibrariesDir(),
		filepath.Join(i.AssetsDir(), "indexes"),
		filepath.Join(i.AssetsDir(), "objects"),
		i.Directory,
	}
	for _, dir := range dirs {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

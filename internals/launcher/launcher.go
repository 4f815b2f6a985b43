// Package launcher acquires everything needed to start a minecraft version and
// composes the launch command
package launcher

import (
	"github.com/minepkg/prelaunch/internals/assets"
	"github.com/minepkg/prelaunch/internals/classpath"
	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/instances"
	"github.com/minepkg/prelaunch/internals/manifests"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/patch"
	"github.com/minepkg/prelaunch/internals/progress"
)

// Launcher prepares minecraft versions inside an instance
type Launcher struct {
	// Instance contains the directories everything is stored in
	Instance *instances.Instance
	Loader   *manifests.Loader
	Assets   *assets.Store

	// Download are the defaults for every downloaded file
	Download downloadmgr.Options
	// Concurrency of the download pool. 0 scales with the queue size
	Concurrency int
	// LibraryRepositories are tried after the url of a library (and its custom repository)
	LibraryRepositories []string

	Strategy classpath.Strategy
	Env      minecraft.Env

	// Patches are applied to the descriptor working copies during a run. They are
	// restored like the conflict resolution
	Patches []*patch.Patch

	Logger     *cmdlog.Logger
	OnProgress progress.Notifier
}

// New returns a launcher for the instance using the default endpoints
func New(instance *instances.Instance) *Launcher {
	store := assets.New(instance.AssetsDir())
	store.ResourcesDir = instance.ResourcesDir()

	return &Launcher{
		Instance:            instance,
		Loader:              manifests.New(instance.VersionsDir()),
		Assets:              store,
		LibraryRepositories: downloadmgr.DefaultLibraryRepositories,
		Strategy:            classpath.GraphStrategy{},
		Env:                 minecraft.CurrentEnv(),
	}
}

func (l *Launcher) logger() *cmdlog.Logger {
	if l.Logger == nil {
		return cmdlog.Discard()
	}
	return l.Logger
}

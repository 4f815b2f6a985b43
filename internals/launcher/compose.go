package launcher

import (
	"context"
	"errors"

	"github.com/minepkg/prelaunch/internals/classpath"
	"github.com/minepkg/prelaunch/internals/launchcmd"
)

// ErrNotPrepared is returned by Compose for results without a descriptor
var ErrNotPrepared = errors.New("version is not prepared")

// Composition is the classpath, the extracted natives and the final command
type Composition struct {
	Classpath []string                 `json:"classpath"`
	Natives   *classpath.NativesReport `json:"natives"`
	Command   *launchcmd.Command       `json:"command"`
}

// Compose builds the launch command for a prepared result. Natives are extracted into
// the version directory. Unset directories in opts default to the instance ones
func (l *Launcher) Compose(ctx context.Context, result *Result, opts launchcmd.Options) (*Composition, error) {
	if result == nil || result.Manifest == nil {
		return nil, ErrNotPrepared
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := result.Manifest

	composer := classpath.New(l.Instance.LibrariesDir(), l.Instance.ClientJarPath(result.BaseID))
	composer.Env = l.Env
	composer.Logger = l.Logger
	if l.Strategy != nil {
		composer.Strategy = l.Strategy
	}

	cp, err := composer.Classpath(m)
	if err != nil {
		return nil, err
	}

	nativesDir := l.Instance.NativesDir(result.VersionID)
	natives, err := composer.ExtractNatives(m, nativesDir, l.OnProgress)
	if err != nil {
		return &Composition{Classpath: cp, Natives: natives}, err
	}

	opts = l.instanceDefaults(opts, result)
	opts.NativesDir = nativesDir

	builder := launchcmd.NewBuilder()
	builder.Env = l.Env
	builder.Logger = l.Logger
	cmd, err := builder.Build(m, cp, opts)
	if err != nil {
		return nil, err
	}

	return &Composition{Classpath: cp, Natives: natives, Command: cmd}, nil
}

func (l *Launcher) instanceDefaults(opts launchcmd.Options, result *Result) launchcmd.Options {
	if opts.GameDir == "" {
		opts.GameDir = l.Instance.Directory
	}
	if opts.AssetsDir == "" {
		opts.AssetsDir = l.Instance.AssetsDir()
	}
	if opts.VirtualAssetsDir == "" && l.Assets != nil {
		opts.VirtualAssetsDir = l.Assets.VirtualDir()
	}
	if opts.LibrariesDir == "" {
		opts.LibrariesDir = l.Instance.LibrariesDir()
	}
	if opts.ClientJar == "" {
		opts.ClientJar = l.Instance.ClientJarPath(result.BaseID)
	}
	return opts
}

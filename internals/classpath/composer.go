// Package classpath builds the classpath and extracts native libraries for a descriptor
package classpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/samber/lo"
)

// Composer composes the classpath of a merged descriptor
type Composer struct {
	LibrariesDir string
	// ClientJar is appended to every classpath
	ClientJar string
	Env       minecraft.Env
	Strategy  Strategy
	Logger    *cmdlog.Logger
}

// New returns a composer using the graph strategy for the current environment
func New(librariesDir string, clientJar string) *Composer {
	return &Composer{
		LibrariesDir: librariesDir,
		ClientJar:    clientJar,
		Env:          minecraft.CurrentEnv(),
		Strategy:     GraphStrategy{},
	}
}

// Classpath returns the absolute library paths followed by the client jar.
// Every path is only included once
func (c *Composer) Classpath(m *minecraft.LaunchManifest) ([]string, error) {
	strategy := c.Strategy
	if strategy == nil {
		strategy = GraphStrategy{}
	}
	paths, err := strategy.Libraries(c, m)
	if err != nil {
		return nil, err
	}
	if c.ClientJar != "" && utils.FileExists(c.ClientJar) {
		paths = append(paths, c.ClientJar)
	}

	return lo.Uniq(lo.Map(paths, func(p string, _ int) string {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	})), nil
}

// Join joins the paths with the separator of the current os
func Join(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}

func (c *Composer) logger() *cmdlog.Logger {
	if c.Logger == nil {
		return cmdlog.Discard()
	}
	return c.Logger
}

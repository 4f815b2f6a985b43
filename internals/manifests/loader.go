// Package manifests fetches and caches version catalogs and version descriptors
package manifests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/pkg/errors"
)

const (
	catalogPath    = "/mc/game/version_manifest_v2.json"
	catalogFile    = "version_manifest_v2.json"
	overlayLatest  = "latest"
	overlayProfile = "/v2/versions/loader/%s/%s/profile/json"
	overlayList    = "/v2/versions/loader/%s"
)

// Loader resolves version descriptors. Every fetched document is persisted verbatim below
// VersionsDir and is used instead of the network on the next run
type Loader struct {
	VersionsDir string
	Client      *http.Client
	Base        Endpoint
	Overlay     Endpoint
	// Retries per url, defaults to 2
	Retries int
	Backoff time.Duration
	// Timeout limits a single request including the body
	Timeout time.Duration
	Logger  *cmdlog.Logger

	mu      sync.Mutex
	catalog *minecraft.VersionCatalog
}

// New returns a loader using the default endpoints
func New(versionsDir string) *Loader {
	return &Loader{
		VersionsDir: versionsDir,
		Base:        DefaultBase,
		Overlay:     DefaultOverlay,
	}
}

// DescriptorPath returns the cache location of the descriptor with the given id
func (l *Loader) DescriptorPath(id string) string {
	return filepath.Join(l.VersionsDir, id, id+".json")
}

// OverlayID returns the id of a loader profile for a base version
func OverlayID(baseID string, loaderVersion string) string {
	return fmt.Sprintf("fabric-loader-%s-%s", loaderVersion, baseID)
}

// ResolveBase returns the descriptor for versionID ("latest" selects the latest release).
// `inheritsFrom` chains are followed and merged
func (l *Loader) ResolveBase(ctx context.Context, versionID string) (*minecraft.LaunchManifest, error) {
	if versionID == "" || versionID == overlayLatest {
		catalog, err := l.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		versionID = catalog.Latest.Release
	}
	return l.resolve(ctx, versionID, map[string]bool{})
}

func (l *Loader) resolve(ctx context.Context, id string, visiting map[string]bool) (*minecraft.LaunchManifest, error) {
	if visiting[id] {
		return nil, errors.Wrapf(ErrInheritanceCycle, "%s inherits from itself", id)
	}
	visiting[id] = true

	m, err := l.baseDescriptor(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.InheritsFrom == "" {
		return m, nil
	}

	parent, err := l.resolve(ctx, m.InheritsFrom, visiting)
	if err != nil {
		return nil, err
	}
	return m.Inherit(parent), nil
}

func (l *Loader) baseDescriptor(ctx context.Context, id string) (*minecraft.LaunchManifest, error) {
	file := l.DescriptorPath(id)
	if cached, ok := l.readCached(file); ok {
		return cached, nil
	}

	catalog, err := l.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	release, ok := catalog.Find(id)
	if !ok {
		return nil, errors.Wrapf(ErrVersionNotFound, "minecraft version %q", id)
	}

	m := &minecraft.LaunchManifest{}
	buf, err := l.fetch(ctx, l.Base.Rebase(release.URL), checkSha1(release.Sha1, decodeInto(m)))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching descriptor for %s", id)
	}
	if err := utils.WriteFileAtomic(file, buf); err != nil {
		return nil, err
	}
	return m, nil
}

// ResolveOverlay returns the loader profile for the base version. loaderVersion may be
// empty or "latest" to select the newest stable loader. The profile is not merged
func (l *Loader) ResolveOverlay(ctx context.Context, baseID string, loaderVersion string) (*minecraft.LaunchManifest, error) {
	if loaderVersion != "" && loaderVersion != overlayLatest {
		if cached, ok := l.readCached(l.DescriptorPath(OverlayID(baseID, loaderVersion))); ok {
			return cached, nil
		}
	}

	loaders, err := l.LoaderVersions(ctx, baseID)
	if err != nil {
		return nil, err
	}
	selected, err := selectLoader(loaders, loaderVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "fabric loader for %s", baseID)
	}

	file := l.DescriptorPath(OverlayID(baseID, selected))
	if cached, ok := l.readCached(file); ok {
		return cached, nil
	}

	m := &minecraft.LaunchManifest{}
	path := fmt.Sprintf(overlayProfile, url.PathEscape(baseID), url.PathEscape(selected))
	buf, err := l.fetch(ctx, l.Overlay.URLs(path), decodeInto(m))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching loader profile %s", selected)
	}
	if err := utils.WriteFileAtomic(file, buf); err != nil {
		return nil, err
	}
	return m, nil
}

// Catalog returns the version catalog. It is fetched once per loader, if all endpoints
// fail the last persisted copy is used
func (l *Loader) Catalog(ctx context.Context) (*minecraft.VersionCatalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.catalog != nil {
		return l.catalog, nil
	}

	file := filepath.Join(l.VersionsDir, catalogFile)
	catalog := &minecraft.VersionCatalog{}
	buf, err := l.fetch(ctx, l.Base.URLs(catalogPath), decodeInto(catalog))
	if err != nil {
		stale, readErr := os.ReadFile(file)
		if readErr != nil || json.Unmarshal(stale, catalog) != nil {
			return nil, err
		}
		l.logger().Warnf("Could not fetch version catalog, using cached copy (%s)", err)
	} else if err := utils.WriteFileAtomic(file, buf); err != nil {
		l.logger().Warnf("Could not cache version catalog: %s", err)
	}

	l.catalog = catalog
	return catalog, nil
}

// LoaderVersions returns all loaders for a base version, newest first
func (l *Loader) LoaderVersions(ctx context.Context, baseID string) ([]minecraft.LoaderEntry, error) {
	entries := []minecraft.LoaderEntry{}
	path := fmt.Sprintf(overlayList, url.PathEscape(baseID))
	if _, err := l.fetch(ctx, l.Overlay.URLs(path), decodeInto(&entries)); err != nil {
		return nil, errors.Wrapf(err, "fetching loader versions for %s", baseID)
	}
	sortLoaders(entries)
	return entries, nil
}

// readCached returns the parsed descriptor at file. Unparsable files are refetched
func (l *Loader) readCached(file string) (*minecraft.LaunchManifest, bool) {
	m := &minecraft.LaunchManifest{}
	if err := utils.ReadJSONFile(file, m); err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			l.logger().Warnf("Failed to parse cached manifest %s, downloading it again", file)
		}
		return nil, false
	}
	return m, true
}

func (l *Loader) logger() *cmdlog.Logger {
	if l.Logger == nil {
		return cmdlog.Discard()
	}
	return l.Logger
}

func decodeInto(v interface{}) func([]byte) error {
	return func(buf []byte) error {
		return json.Unmarshal(buf, v)
	}
}

// sortLoaders sorts newest first. Unparsable versions go last
func sortLoaders(entries []minecraft.LoaderEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, errA := semver.NewVersion(entries[i].Loader.Version)
		b, errB := semver.NewVersion(entries[j].Loader.Version)
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a.GreaterThan(b)
	})
}

// selectLoader picks the requested loader version. "" and "latest" pick the newest stable one
// (or the newest one if none is stable). entries must be sorted
func selectLoader(entries []minecraft.LoaderEntry, version string) (string, error) {
	if len(entries) == 0 {
		return "", errors.Wrap(ErrVersionNotFound, "no loader available")
	}

	if version == "" || version == overlayLatest {
		for _, e := range entries {
			if e.Loader.Stable {
				return e.Loader.Version, nil
			}
		}
		return entries[0].Loader.Version, nil
	}

	for _, e := range entries {
		if e.Loader.Version == version {
			return version, nil
		}
	}
	return "", errors.Wrapf(ErrVersionNotFound, "loader version %q", version)
}

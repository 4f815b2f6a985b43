package launcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/prelaunch/internals/assets"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/patch"
	"github.com/minepkg/prelaunch/internals/progress"
	"github.com/minepkg/prelaunch/internals/resolver"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/pkg/errors"
)

// Prepare resolves the requested version, downloads every missing artifact and repairs the
// asset store. Only directory, metadata and canceled context errors are returned,
// everything else is reported in the result
func (l *Launcher) Prepare(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	if err := l.Instance.EnsureDirs(); err != nil {
		return nil, err
	}

	l.OnProgress.Notify(progress.PhaseManifests, 0, 2)
	base, err := l.Loader.ResolveBase(ctx, req.Version)
	if err != nil {
		return nil, err
	}
	var overlay *minecraft.LaunchManifest
	if req.Loader != "" {
		if req.Loader != "fabric" {
			return nil, errors.Errorf("unsupported loader %q", req.Loader)
		}
		overlay, err = l.Loader.ResolveOverlay(ctx, base.ID, req.LoaderVersion)
		if err != nil {
			return nil, err
		}
	}
	l.OnProgress.Notify(progress.PhaseManifests, 2, 2)

	result = &Result{BaseID: base.ID, VersionID: base.ID}
	session := patch.NewSession()
	defer func() {
		if restoreErr := session.Restore(); restoreErr != nil {
			l.logger().Warn(gchalk.Bold(gchalk.Red("PATCH RESTORE FAILED")) + " " + restoreErr.Error())
			if result != nil {
				result.RestoreErr = restoreErr
			}
		}
	}()

	base, overlay, conflicts, err := l.reconcile(ctx, session, base, overlay)
	if err != nil {
		return nil, err
	}
	result.Conflicts = conflicts
	for _, c := range conflicts {
		l.logger().Debugf("conflict resolved: %s", c)
	}

	merged := base
	if overlay != nil {
		merged = overlay.Inherit(base)
		result.VersionID = overlay.ID
	}
	result.Manifest = merged

	seen := downloadmgr.NewSeenSet()
	if err := l.downloadArtifacts(ctx, base, merged, seen, result); err != nil {
		return nil, err
	}

	if !req.SkipAssets && merged.AssetIndex.ID != "" {
		if err := l.prepareAssets(ctx, merged, seen, result); err != nil {
			return nil, err
		}
	}

	result.MissingLibraries = l.missingLibraries(merged)
	result.Success = l.clientJarValid(base) && len(l.missingMainLibraries(merged)) == 0
	result.Duration = time.Since(start)
	return result, nil
}

// reconcile removes conflicting libraries from the base working copy (and applies extra patches).
// The descriptors are read again so the result reflects the working copies
func (l *Launcher) reconcile(
	ctx context.Context,
	session *patch.Session,
	base *minecraft.LaunchManifest,
	overlay *minecraft.LaunchManifest,
) (*minecraft.LaunchManifest, *minecraft.LaunchManifest, []resolver.Conflict, error) {
	conflicts := []resolver.Conflict{}
	if overlay != nil {
		conflicts = resolver.FindConflicts(base, overlay)
	}
	if len(conflicts) == 0 && len(l.Patches) == 0 {
		return base, overlay, conflicts, nil
	}

	basePath := l.Loader.DescriptorPath(base.ID)
	paths := []string{basePath}
	if overlay != nil {
		paths = append(paths, l.Loader.DescriptorPath(overlay.ID))
	}
	if err := session.Backup(paths...); err != nil {
		return nil, nil, nil, err
	}

	if err := session.RemoveLibraries(basePath, resolver.Keys(conflicts)); err != nil {
		return nil, nil, nil, errors.Wrap(err, "writing resolved descriptor")
	}

	overlayPatched := false
	for _, p := range l.Patches {
		target := basePath
		switch {
		case p.For == "" || p.For == base.ID:
		case overlay != nil && p.For == overlay.ID:
			target = l.Loader.DescriptorPath(overlay.ID)
			overlayPatched = true
		default:
			return nil, nil, nil, errors.Errorf("patch %q is for %s which is not part of this run", p.Name, p.For)
		}
		if err := session.Apply(target, p); err != nil {
			return nil, nil, nil, err
		}
	}

	reloaded, err := l.Loader.ResolveBase(ctx, base.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if overlayPatched {
		patched := &minecraft.LaunchManifest{}
		if err := utils.ReadJSONFile(l.Loader.DescriptorPath(overlay.ID), patched); err != nil {
			return nil, nil, nil, errors.Wrap(err, "reading patched loader descriptor")
		}
		overlay = patched
	}
	if overlay != nil {
		reloaded = resolver.Resolve(reloaded, overlay, nil)
	}
	return reloaded, overlay, conflicts, nil
}

// downloadArtifacts downloads the client jar and all libraries (including natives)
func (l *Launcher) downloadArtifacts(
	ctx context.Context,
	base *minecraft.LaunchManifest,
	merged *minecraft.LaunchManifest,
	seen *downloadmgr.SeenSet,
	result *Result,
) error {
	mgr := downloadmgr.New()
	mgr.Concurrency = l.Concurrency
	mgr.Seen = seen
	mgr.OnProgress = l.OnProgress

	if client := base.Downloads.Client; client != nil && client.URL != "" {
		item := l.Download.Item([]string{client.URL}, l.Instance.ClientJarPath(base.ID), client.Sha1)
		item.Key = "client:" + base.ID
		item.Size = client.SizeBytes()
		mgr.Add(item)
	}
	for _, item := range l.libraryItems(merged) {
		mgr.Add(item)
	}

	res, err := mgr.Start(ctx)
	if err != nil {
		return err
	}
	if !res.OK() {
		l.logger().Warnf("%d downloads failed, retrying them one by one", len(res.Failed))
		if res, err = mgr.RetryFailed(ctx, res); err != nil {
			return err
		}
	}

	result.Downloaded = len(res.Succeeded)
	result.Failed = []FailedArtifact{}
	for _, f := range res.Failed {
		name := "unknown"
		if named, ok := f.Item.(interface{ Name() string }); ok {
			name = named.Name()
		}
		result.Failed = append(result.Failed, FailedArtifact{Target: name, Reason: failureReason(f.Err), Error: f.Err.Error()})
	}
	return nil
}

// libraryItems returns one item per library file of the descriptor that applies to this environment
func (l *Launcher) libraryItems(m *minecraft.LaunchManifest) []*downloadmgr.HTTPItem {
	items := []*downloadmgr.HTTPItem{}
	queued := map[string]bool{}

	add := func(lib *minecraft.Library, a *minecraft.Artifact) {
		target := filepath.Join(l.Instance.LibrariesDir(), filepath.FromSlash(a.Path))
		if queued[target] {
			return
		}
		queued[target] = true

		roots := append([]string{lib.URL}, l.LibraryRepositories...)
		item := l.Download.Item(downloadmgr.MirrorURLs(a.URL, a.Path, roots...), target, a.Sha1)
		item.Key = "library:" + a.Path
		item.Size = a.SizeBytes()
		items = append(items, item)
	}

	for _, lib := range m.Libraries.Required(l.Env) {
		if lib.HasMainArtifact() {
			a, err := lib.Artifact()
			if err != nil {
				l.logger().Debugf("skipping library %q: %s", lib.Name, err)
			} else {
				add(&lib, a)
			}
		}
		if native, ok := lib.NativeArtifact(l.Env); ok {
			add(&lib, native)
		}
	}
	return items
}

func (l *Launcher) prepareAssets(ctx context.Context, m *minecraft.LaunchManifest, seen *downloadmgr.SeenSet, result *Result) error {
	store := l.Assets
	store.Download = l.Download
	store.Concurrency = l.Concurrency
	store.Seen = seen
	store.OnProgress = l.OnProgress
	store.Logger = l.Logger

	summary := &AssetsSummary{Index: m.AssetIndex.ID}
	result.Assets = summary
	result.MissingAssets = []string{}

	index, err := store.LoadIndex(ctx, m.AssetIndex)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger().Warnf("Could not load asset index: %s", err)
		result.MissingAssets = append(result.MissingAssets, "index:"+m.AssetIndex.ID)
		return nil
	}

	report := store.VerifyIndex(index)
	summary.Objects = len(index.Objects)
	summary.Valid = len(report.Valid)

	if !report.OK() {
		repair, err := store.Repair(ctx, report.Broken())
		if err != nil {
			return err
		}
		summary.Repaired = len(repair.Repaired)
		for _, obj := range repair.StillMissing {
			result.MissingAssets = append(result.MissingAssets, obj.Name)
		}
	}

	if index.IsLegacy() {
		materialized, err := store.MaterializeVirtual(index)
		if err != nil {
			l.logger().Warnf("Could not materialize legacy assets: %s", err)
		}
		summary.Materialized = materialized
	}
	return nil
}

// missingLibraries returns the names of all required library files that do not exist
func (l *Launcher) missingLibraries(m *minecraft.LaunchManifest) []string {
	missing := []string{}
	for _, item := range l.libraryItems(m) {
		if !utils.FileExists(item.Target) {
			missing = append(missing, strings.TrimPrefix(item.Key, "library:"))
		}
	}
	return missing
}

// missingMainLibraries returns missing libraries whose group contains the main class
func (l *Launcher) missingMainLibraries(m *minecraft.LaunchManifest) []string {
	missing := []string{}
	for _, lib := range m.Libraries.Required(l.Env) {
		c, err := lib.Coordinate()
		if err != nil || !lib.HasMainArtifact() || !strings.HasPrefix(m.MainClass, c.Group+".") {
			continue
		}
		a, err := lib.Artifact()
		if err != nil {
			continue
		}
		if !utils.FileExists(filepath.Join(l.Instance.LibrariesDir(), filepath.FromSlash(a.Path))) {
			missing = append(missing, lib.Name)
		}
	}
	return missing
}

func (l *Launcher) clientJarValid(base *minecraft.LaunchManifest) bool {
	path := l.Instance.ClientJarPath(base.ID)
	if client := base.Downloads.Client; client != nil && client.Sha1 != "" {
		return assets.Verify(path, client.Sha1).Valid
	}
	return utils.FileExists(path)
}

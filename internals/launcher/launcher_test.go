package launcher

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minepkg/prelaunch/internals/classpath"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/instances"
	"github.com/minepkg/prelaunch/internals/launchcmd"
	"github.com/minepkg/prelaunch/internals/manifests"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// fakeUpstream serves metadata, libraries, the client jar and asset objects
type fakeUpstream struct {
	*httptest.Server
	files       map[string][]byte
	descriptors map[string]string
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/mc/game/version_manifest_v2.json":
		versions := []string{}
		for id, body := range f.descriptors {
			versions = append(versions, fmt.Sprintf(
				`{"id": %q, "type": "release", "url": "%s/v1/packages/%s.json", "sha1": %q}`,
				id, f.URL, id, sha([]byte(body)),
			))
		}
		fmt.Fprintf(w, `{"latest": {"release": "1.20.1"}, "versions": [%s]}`, strings.Join(versions, ","))
	case strings.HasPrefix(r.URL.Path, "/v1/packages/"):
		id := strings.TrimSuffix(filepath.Base(r.URL.Path), ".json")
		body, ok := f.descriptors[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	default:
		body, ok := f.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}
}

type fixture struct {
	upstream  *fakeUpstream
	launcher  *Launcher
	baseJSON  string
	missingAs string
}

// newFixture builds an upstream with a vanilla 1.20.1 (asm 9.3) and a fabric profile (asm 9.5)
func newFixture(t *testing.T) *fixture {
	up := &fakeUpstream{files: map[string][]byte{}, descriptors: map[string]string{}}
	up.Server = httptest.NewServer(http.HandlerFunc(up.serve))
	t.Cleanup(up.Close)

	asm93 := []byte("asm 9.3")
	asm95 := []byte("asm 9.5")
	loaderJar := []byte("fabric loader")
	logging := []byte("logging")
	client := []byte("client jar")
	sound := []byte("a sound")
	up.files["/libs/org/ow2/asm/asm/9.3/asm-9.3.jar"] = asm93
	up.files["/libs/com/mojang/logging/1.1.1/logging-1.1.1.jar"] = logging
	up.files["/maven/org/ow2/asm/asm/9.5/asm-9.5.jar"] = asm95
	up.files["/maven/net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar"] = loaderJar
	up.files["/client.jar"] = client
	up.files["/objects/"+sha(sound)[:2]+"/"+sha(sound)] = sound

	missing := []byte("never served")
	index := fmt.Sprintf(`{"objects": {
		"minecraft/sounds/a.ogg": {"hash": %q, "size": %d},
		"minecraft/sounds/b.ogg": {"hash": %q, "size": %d}
	}}`, sha(sound), len(sound), sha(missing), len(missing))
	up.files["/indexes/5.json"] = []byte(index)

	base := fmt.Sprintf(`{
	"id": "1.20.1",
	"type": "release",
	"mainClass": "net.minecraft.client.main.Main",
	"assets": "5",
	"assetIndex": {"id": "5", "sha1": %q, "url": "%s/indexes/5.json"},
	"downloads": {"client": {"sha1": %q, "size": %d, "url": "%s/client.jar"}},
	"arguments": {
		"game": ["--username", "${auth_player_name}", "--version", "${version_name}", "--assetIndex", "${assets_index_name}"],
		"jvm": ["-Djava.library.path=${natives_directory}", "-cp", "${classpath}"]
	},
	"libraries": [
		{"name": "org.ow2.asm:asm:9.3", "downloads": {"artifact": {
			"path": "org/ow2/asm/asm/9.3/asm-9.3.jar", "sha1": %q, "url": "%s/libs/org/ow2/asm/asm/9.3/asm-9.3.jar"
		}}},
		{"name": "com.mojang:logging:1.1.1", "downloads": {"artifact": {
			"path": "com/mojang/logging/1.1.1/logging-1.1.1.jar", "sha1": %q, "url": "%s/libs/com/mojang/logging/1.1.1/logging-1.1.1.jar"
		}}}
	]
}`, sha([]byte(index)), up.URL, sha(client), len(client), up.URL, sha(asm93), up.URL, sha(logging), up.URL)
	up.descriptors["1.20.1"] = base

	profile := fmt.Sprintf(`{
	"id": "fabric-loader-0.14.21-1.20.1",
	"inheritsFrom": "1.20.1",
	"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
	"arguments": {"game": [], "jvm": ["-DFabricMcEmu= net.minecraft.client.main.Main "]},
	"libraries": [
		{"name": "org.ow2.asm:asm:9.5", "url": "%s/maven/", "sha1": %q},
		{"name": "net.fabricmc:fabric-loader:0.14.21", "url": "%s/maven/"}
	]
}`, up.URL, sha(asm95), up.URL)
	up.files["/v2/versions/loader/1.20.1/0.14.21/profile/json"] = []byte(profile)
	up.files["/v2/versions/loader/1.20.1"] = []byte(`[{"loader": {"version": "0.14.21", "stable": true}}]`)

	instance := instances.New(t.TempDir(), "")
	l := New(instance)
	l.Env = minecraft.Env{OS: "linux", Arch: "x64"}
	l.Loader.Base = manifests.Endpoint{Primary: up.URL}
	l.Loader.Overlay = manifests.Endpoint{Primary: up.URL}
	l.Loader.Backoff = time.Millisecond
	l.Download = downloadmgr.Options{Retries: 1, Backoff: time.Millisecond, Timeout: 5 * time.Second}
	l.LibraryRepositories = []string{up.URL + "/maven/"}
	l.Assets.CDN = up.URL + "/objects"

	return &fixture{upstream: up, launcher: l, baseJSON: base, missingAs: "minecraft/sounds/b.ogg"}
}

func (f *fixture) libraryPath(rel string) string {
	return filepath.Join(f.launcher.Instance.LibrariesDir(), filepath.FromSlash(rel))
}

func TestPrepareWithLoader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.launcher.Prepare(ctx, Request{Version: "1.20.1", Loader: "fabric"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NoError(t, result.RestoreErr)
	assert.Equal(t, "1.20.1", result.BaseID)
	assert.Equal(t, "fabric-loader-0.14.21-1.20.1", result.VersionID)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "org.ow2.asm:asm", result.Conflicts[0].Key)

	// the on-disk working copy is restored byte for byte
	onDisk, err := os.ReadFile(f.launcher.Loader.DescriptorPath("1.20.1"))
	require.NoError(t, err)
	assert.Equal(t, f.baseJSON, string(onDisk))

	// only the overlay version of the conflicting library is downloaded
	assert.FileExists(t, f.libraryPath("org/ow2/asm/asm/9.5/asm-9.5.jar"))
	assert.NoFileExists(t, f.libraryPath("org/ow2/asm/asm/9.3/asm-9.3.jar"))
	assert.FileExists(t, f.libraryPath("net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar"))
	assert.FileExists(t, f.launcher.Instance.ClientJarPath("1.20.1"))
	assert.Empty(t, result.Failed)
	assert.Empty(t, result.MissingLibraries)

	// one object is not served by the CDN, this is not fatal
	assert.Equal(t, []string{f.missingAs}, result.MissingAssets)
	require.NotNil(t, result.Assets)
	assert.Equal(t, 2, result.Assets.Objects)
	assert.Equal(t, 1, result.Assets.Repaired)

	composition, err := f.launcher.Compose(ctx, result, launchcmd.Options{PlayerName: "Steve", RamMiB: 2048})
	require.NoError(t, err)
	cmd := composition.Command
	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", cmd.MainClass)
	assert.Contains(t, cmd.GameArgs, "Steve")
	assert.Contains(t, cmd.GameArgs, "fabric-loader-0.14.21-1.20.1")
	assert.Contains(t, cmd.JVMArgs, "-Xmx2048M")

	cp := strings.Join(composition.Classpath, "|")
	assert.Contains(t, cp, "asm-9.5.jar")
	assert.NotContains(t, cp, "asm-9.3.jar")
	assert.Contains(t, cp, "logging-1.1.1.jar")
	assert.Equal(t, f.launcher.Instance.ClientJarPath("1.20.1"), composition.Classpath[len(composition.Classpath)-1])
}

func nativesJar(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		entry.Write([]byte(content))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestPrepareAndCompose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	jarPath := "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar"
	jar := nativesJar(t, map[string]string{
		"META-INF/MANIFEST.MF": "manifest",
		"liblwjgl64.so":        "native",
		"libopenal64.so":       "openal",
	})
	f.upstream.files["/libs/"+jarPath] = jar
	natives := fmt.Sprintf(`{"name": "org.lwjgl:lwjgl-platform:2.9.4",
		"natives": {"linux": "natives-linux"},
		"extract": {"exclude": ["META-INF/"]},
		"downloads": {"classifiers": {"natives-linux": {"path": %q, "sha1": %q, "url": "%s/libs/%s"}}}
	},
	`, jarPath, sha(jar), f.upstream.URL, jarPath)
	f.upstream.descriptors["1.20.1"] = strings.Replace(f.baseJSON, `"libraries": [`, `"libraries": [`+natives, 1)

	result, err := f.launcher.Prepare(ctx, Request{Version: "1.20.1", Loader: "fabric", SkipAssets: true})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.FileExists(t, f.libraryPath(jarPath))

	composition, err := f.launcher.Compose(ctx, result, launchcmd.Options{PlayerName: "Steve"})
	require.NoError(t, err)

	nativesDir := f.launcher.Instance.NativesDir(result.VersionID)
	assert.Equal(t, 2, composition.Natives.Extracted)
	assert.Empty(t, composition.Natives.Failed)
	assert.FileExists(t, filepath.Join(nativesDir, "liblwjgl64.so"))
	assert.FileExists(t, filepath.Join(nativesDir, "libopenal64.so"))
	assert.NoDirExists(t, filepath.Join(nativesDir, "META-INF"))

	// the natives jar is not part of the classpath
	for _, entry := range composition.Classpath {
		assert.NotContains(t, entry, "natives-linux")
	}

	jvm := composition.Command.JVMArgs
	assert.Contains(t, jvm, "-Djava.library.path="+nativesDir)
	i := indexOf(jvm, "-cp")
	require.GreaterOrEqual(t, i, 0, "no -cp argument in %v", jvm)
	require.Less(t, i+1, len(jvm))
	assert.Equal(t, classpath.Join(composition.Classpath), jvm[i+1])
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestPrepareIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.launcher.Prepare(ctx, Request{Version: "1.20.1", Loader: "fabric"})
	require.NoError(t, err)

	second, err := f.launcher.Prepare(ctx, Request{Version: "1.20.1", Loader: "fabric"})
	require.NoError(t, err)

	assert.Equal(t, first.Conflicts, second.Conflicts)
	assert.Equal(t, first.Success, second.Success)
	assert.Equal(t, 0, second.Assets.Repaired)
	assert.Equal(t, first.MissingAssets, second.MissingAssets)
}

func TestPrepareVanilla(t *testing.T) {
	f := newFixture(t)

	result, err := f.launcher.Prepare(context.Background(), Request{Version: "latest", SkipAssets: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Conflicts)
	assert.Nil(t, result.Assets)
	assert.FileExists(t, f.libraryPath("org/ow2/asm/asm/9.3/asm-9.3.jar"))
	assert.Equal(t, "net.minecraft.client.main.Main", result.Manifest.MainClass)
}

func TestPrepareMissingClientJar(t *testing.T) {
	f := newFixture(t)
	delete(f.upstream.files, "/client.jar")

	result, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", SkipAssets: true})
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Target, "1.20.1.jar")
	assert.Equal(t, ReasonNetwork, result.Failed[0].Reason)
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&downloadmgr.ErrInvalidSha{}, ReasonHashMismatch},
		{&downloadmgr.NetworkError{URL: "u", Err: fmt.Errorf("%w: slow", downloadmgr.ErrDownloadTimeout)}, ReasonTimeout},
		{&downloadmgr.NetworkError{URL: "u", StatusCode: 404}, ReasonNetwork},
		{fmt.Errorf("disk full"), ReasonOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureReason(tt.err), tt.err.Error())
	}
}

func TestPrepareMissingLibraryIsAdvisory(t *testing.T) {
	f := newFixture(t)
	delete(f.upstream.files, "/libs/com/mojang/logging/1.1.1/logging-1.1.1.jar")

	result, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", Loader: "fabric", SkipAssets: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"com/mojang/logging/1.1.1/logging-1.1.1.jar"}, result.MissingLibraries)
}

func TestPrepareMissingMainLibrary(t *testing.T) {
	f := newFixture(t)
	delete(f.upstream.files, "/maven/net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar")

	result, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", Loader: "fabric", SkipAssets: true})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestPrepareWithPatch(t *testing.T) {
	f := newFixture(t)
	f.launcher.Patches = []*patch.Patch{patch.RemoveLibrariesPatch([]string{"com.mojang:logging"})}

	result, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", SkipAssets: true})
	require.NoError(t, err)

	for _, lib := range result.Manifest.Libraries {
		assert.NotEqual(t, "com.mojang:logging:1.1.1", lib.Name)
	}
	assert.NoFileExists(t, f.libraryPath("com/mojang/logging/1.1.1/logging-1.1.1.jar"))

	onDisk, err := os.ReadFile(f.launcher.Loader.DescriptorPath("1.20.1"))
	require.NoError(t, err)
	assert.Equal(t, f.baseJSON, string(onDisk))
}

func TestPrepareForeignPatch(t *testing.T) {
	f := newFixture(t)
	p := patch.RemoveLibrariesPatch([]string{"com.mojang:logging"})
	p.For = "1.8.9"
	f.launcher.Patches = []*patch.Patch{p}

	_, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", SkipAssets: true})
	assert.Error(t, err)

	onDisk, err := os.ReadFile(f.launcher.Loader.DescriptorPath("1.20.1"))
	require.NoError(t, err)
	assert.Equal(t, f.baseJSON, string(onDisk))
}

func TestPrepareUnknownLoader(t *testing.T) {
	f := newFixture(t)
	_, err := f.launcher.Prepare(context.Background(), Request{Version: "1.20.1", Loader: "forge"})
	assert.Error(t, err)
}

func TestPrepareCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.launcher.Prepare(ctx, Request{Version: "1.20.1"})
	assert.Error(t, err)
}

func TestComposeNotPrepared(t *testing.T) {
	f := newFixture(t)
	_, err := f.launcher.Compose(context.Background(), &Result{}, launchcmd.Options{})
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestSpinnerNotifier(t *testing.T) {
	out := &strings.Builder{}
	s := NewMaybeSpinnerWithWriter(false, out)
	n := s.Notifier()

	n.Notify("download", 1, 3)
	n.Notify("download", 2, 3)
	n.Notify("assets.verify", 1, 1)

	assert.Equal(t, "Downloading libraries\nVerifying assets\n", out.String())
	assert.Equal(t, "unknown", PhaseText("unknown"))
}

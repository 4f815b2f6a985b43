package classpath

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/resolver"
)

var linux = minecraft.Env{OS: "linux", Arch: "x86_64"}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("jar"), 0644); err != nil {
		t.Fatal(err)
	}
}

func testComposer(t *testing.T) *Composer {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "libraries"), filepath.Join(dir, "versions", "1.20.1", "1.20.1.jar"))
	c.Env = linux
	touch(t, c.ClientJar)
	return c
}

func libs(names ...string) minecraft.Libraries {
	out := minecraft.Libraries{}
	for _, n := range names {
		out = append(out, minecraft.Library{Name: n})
	}
	return out
}

// foo 1.0 of the base is replaced by foo 2.0 of the overlay
func TestClasspathConflictResolved(t *testing.T) {
	c := testComposer(t)
	touch(t, filepath.Join(c.LibrariesDir, "com/example/foo/1.0/foo-1.0.jar"))
	touch(t, filepath.Join(c.LibrariesDir, "com/example/foo/2.0/foo-2.0.jar"))

	base := &minecraft.LaunchManifest{ID: "1.20.1", Libraries: libs("com.example:foo:1.0")}
	overlay := &minecraft.LaunchManifest{ID: "fabric", Libraries: libs("com.example:foo:2.0")}

	merged := overlay.Inherit(resolver.Resolve(base, overlay, nil))
	cp, err := c.Classpath(merged)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(c.LibrariesDir, "com", "example", "foo", "2.0", "foo-2.0.jar"),
		c.ClientJar,
	}
	if !reflect.DeepEqual(cp, want) {
		t.Errorf("Classpath() = %v, want %v", cp, want)
	}
}

func TestClasspathGraph(t *testing.T) {
	c := testComposer(t)
	touch(t, filepath.Join(c.LibrariesDir, "org/ow2/asm/asm/9.3/asm-9.3.jar"))
	touch(t, filepath.Join(c.LibrariesDir, "custom/path.jar"))

	m := &minecraft.LaunchManifest{Libraries: minecraft.Libraries{
		{Name: "bad:coord"},
		{Name: "org.ow2.asm:asm:9.3"},
		// same file under another name is only included once
		{Name: "org.ow2.asm:asm-copy:9.3", Downloads: minecraft.LibraryDownloads{
			Artifact: &minecraft.Artifact{Path: "org/ow2/asm/asm/9.3/asm-9.3.jar"},
		}},
		{Name: "com.example:missing:1.0"},
		{Name: "com.example:mac-only:1.0", Rules: minecraft.Rules{{Action: "allow", OS: minecraft.OS{Name: "osx"}}}},
		{Name: "invalid", Downloads: minecraft.LibraryDownloads{
			Artifact: &minecraft.Artifact{Path: "custom/path.jar"},
		}},
	}}

	cp, err := c.Classpath(m)
	if err != nil {
		t.Fatalf("invalid coordinates must not fail: %v", err)
	}
	want := []string{
		filepath.Join(c.LibrariesDir, "org", "ow2", "asm", "asm", "9.3", "asm-9.3.jar"),
		filepath.Join(c.LibrariesDir, "custom", "path.jar"),
		c.ClientJar,
	}
	if !reflect.DeepEqual(cp, want) {
		t.Errorf("Classpath() = %v, want %v", cp, want)
	}
}

func TestClasspathScan(t *testing.T) {
	c := testComposer(t)
	c.Strategy = ScanStrategy{}
	touch(t, filepath.Join(c.LibrariesDir, "b/b.jar"))
	touch(t, filepath.Join(c.LibrariesDir, "a/a.jar"))
	touch(t, filepath.Join(c.LibrariesDir, "a/a.pom"))

	cp, err := c.Classpath(&minecraft.LaunchManifest{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(c.LibrariesDir, "a", "a.jar"),
		filepath.Join(c.LibrariesDir, "b", "b.jar"),
		c.ClientJar,
	}
	if !reflect.DeepEqual(cp, want) {
		t.Errorf("Classpath() = %v, want %v", cp, want)
	}
}

func TestStrategyByName(t *testing.T) {
	if s, err := StrategyByName(""); err != nil || s != (GraphStrategy{}) {
		t.Errorf("default strategy = %v, %v", s, err)
	}
	if s, err := StrategyByName("scan"); err != nil || s != (ScanStrategy{}) {
		t.Errorf("scan strategy = %v, %v", s, err)
	}
	if _, err := StrategyByName("everything"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestJoin(t *testing.T) {
	got := Join([]string{"a", "b"})
	if got != "a"+string(os.PathListSeparator)+"b" {
		t.Errorf("Join() = %q", got)
	}
}

func writeJar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		entry.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestExtractNatives(t *testing.T) {
	c := testComposer(t)
	writeJar(t, filepath.Join(c.LibrariesDir, "org/lwjgl/lwjgl/2.9.4/lwjgl-2.9.4-natives-linux.jar"), map[string]string{
		"META-INF/MANIFEST.MF":   "manifest",
		"liblwjgl64.so":          "native",
		"liblwjgl64.so.sha1":     "hash",
		"linux/x64/libopenal.so": "openal",
	})

	m := &minecraft.LaunchManifest{Libraries: minecraft.Libraries{
		{
			Name:    "org.lwjgl:lwjgl:2.9.4",
			Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"},
			Extract: &minecraft.ExtractRules{Exclude: []string{"**/*.sha1"}},
		},
		{Name: "org.ow2.asm:asm:9.3"},
	}}

	target := filepath.Join(t.TempDir(), "natives")
	report, err := c.ExtractNatives(m, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Extracted != 2 {
		t.Errorf("extracted %d entries, want 2 (%+v)", report.Extracted, report)
	}

	for _, present := range []string{"liblwjgl64.so", "linux/x64/libopenal.so"} {
		if _, err := os.Stat(filepath.Join(target, filepath.FromSlash(present))); err != nil {
			t.Errorf("%s was not extracted", present)
		}
	}
	for _, absent := range []string{"META-INF", "liblwjgl64.so.sha1"} {
		if _, err := os.Stat(filepath.Join(target, absent)); err == nil {
			t.Errorf("%s should not be extracted", absent)
		}
	}
}

// an entry that can not be opened is skipped, the rest of the archive is still extracted
func TestExtractNativesSkipsBrokenEntry(t *testing.T) {
	c := testComposer(t)
	archive := filepath.Join(c.LibrariesDir, "org/lwjgl/lwjgl/2.9.4/lwjgl-2.9.4-natives-linux.jar")
	if err := os.MkdirAll(filepath.Dir(archive), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	raw, err := w.CreateRaw(&zip.FileHeader{
		Name:               "libbroken.so",
		Method:             99,
		CompressedSize64:   4,
		UncompressedSize64: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	raw.Write([]byte("????"))
	entry, err := w.Create("liblwjgl64.so")
	if err != nil {
		t.Fatal(err)
	}
	entry.Write([]byte("native"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m := &minecraft.LaunchManifest{Libraries: minecraft.Libraries{
		{Name: "org.lwjgl:lwjgl:2.9.4", Natives: map[string]string{"linux": "natives-linux"}},
	}}

	target := t.TempDir()
	report, err := c.ExtractNatives(m, target, nil)
	if err != nil {
		t.Fatalf("a single broken entry should not fail the library: %v", err)
	}
	if report.Extracted != 1 {
		t.Errorf("extracted %d entries, want 1", report.Extracted)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Entry != "libbroken.so" {
		t.Errorf("unexpected skipped entries: %+v", report.Skipped)
	}
	if _, err := os.Stat(filepath.Join(target, "liblwjgl64.so")); err != nil {
		t.Error("liblwjgl64.so was not extracted")
	}
	if _, err := os.Stat(filepath.Join(target, "libbroken.so")); err == nil {
		t.Error("libbroken.so should not exist")
	}
}

// every entry failing marks the library as failed
func TestExtractNativesAllEntriesBroken(t *testing.T) {
	c := testComposer(t)
	archive := filepath.Join(c.LibrariesDir, "org/lwjgl/lwjgl/2.9.4/lwjgl-2.9.4-natives-linux.jar")
	if err := os.MkdirAll(filepath.Dir(archive), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	raw, err := w.CreateRaw(&zip.FileHeader{Name: "libbroken.so", Method: 99, CompressedSize64: 1, UncompressedSize64: 1})
	if err != nil {
		t.Fatal(err)
	}
	raw.Write([]byte("?"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	m := &minecraft.LaunchManifest{Libraries: minecraft.Libraries{
		{Name: "org.lwjgl:lwjgl:2.9.4", Natives: map[string]string{"linux": "natives-linux"}},
	}}
	report, err := c.ExtractNatives(m, t.TempDir(), nil)
	if !errors.Is(err, ErrNativesFailed) {
		t.Fatalf("expected ErrNativesFailed, got %v", err)
	}
	if _, ok := report.Failed["org.lwjgl:lwjgl:2.9.4"]; !ok {
		t.Errorf("library not reported as failed: %+v", report.Failed)
	}
}

func TestExtractNativesMissingArchive(t *testing.T) {
	c := testComposer(t)
	m := &minecraft.LaunchManifest{Libraries: minecraft.Libraries{
		{Name: "org.lwjgl:lwjgl:2.9.4", Natives: map[string]string{"linux": "natives-linux"}},
	}}

	report, err := c.ExtractNatives(m, t.TempDir(), nil)
	if !errors.Is(err, ErrNativesFailed) {
		t.Fatalf("expected ErrNativesFailed, got %v", err)
	}
	if _, ok := report.Failed["org.lwjgl:lwjgl:2.9.4"]; !ok {
		t.Errorf("library not reported as failed: %+v", report.Failed)
	}
}

func TestExtractEntryRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	err := extractEntry(strings.NewReader("x"), dir, "../evil.so")
	if err == nil {
		t.Fatal("expected an error for an entry outside of the target")
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "evil.so")); statErr == nil {
		t.Error("entry was written outside of the target")
	}
}

package patch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptor = `{
    "id": "1.20.1",
    "mainClass": "net.minecraft.client.main.Main",
    "libraries": [
        {"name": "com.example:foo:1.0", "downloads": {"artifact": {"path": "com/example/foo/1.0/foo-1.0.jar"}}},
        {"name": "bad:coord"},
        {"name": "org.ow2.asm:asm:9.3"}
    ],
    "arguments": {"game": ["--username", "${auth_player_name}"]}
}
`

func writeDescriptor(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "1.20.1.json")
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))
	return path
}

func libraryNames(t *testing.T, path string) []string {
	doc, err := ReadDocument(path)
	require.NoError(t, err)
	libs, err := doc.Libraries()
	require.NoError(t, err)
	names := []string{}
	for _, raw := range libs {
		var lib struct{ Name string }
		require.NoError(t, json.Unmarshal(raw, &lib))
		names = append(names, lib.Name)
	}
	return names
}

func TestSessionRoundTrip(t *testing.T) {
	path := writeDescriptor(t)
	s := NewSession()

	require.NoError(t, s.RemoveLibraries(path, []string{"com.example:foo"}))
	assert.Equal(t, []string{"bad:coord", "org.ow2.asm:asm:9.3"}, libraryNames(t, path))

	// untouched fields survive the rewrite
	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.JSONEq(t, `"net.minecraft.client.main.Main"`, string(doc["mainClass"]))
	assert.JSONEq(t, `{"game": ["--username", "${auth_player_name}"]}`, string(doc["arguments"]))

	require.NoError(t, s.Restore())
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor, string(restored))
	assert.Empty(t, s.Files())
}

func TestSessionBackupOnce(t *testing.T) {
	path := writeDescriptor(t)
	s := NewSession()

	require.NoError(t, s.RemoveLibraries(path, []string{"com.example:foo"}))
	require.NoError(t, s.RemoveLibraries(path, []string{"org.ow2.asm:asm"}))
	assert.Equal(t, []string{"bad:coord"}, libraryNames(t, path))
	assert.Len(t, s.Files(), 1)

	require.NoError(t, s.Restore())
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor, string(restored))
}

func TestSessionRestoreRemovesNewFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	s := NewSession()
	require.NoError(t, s.Backup(path))
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	require.NoError(t, s.Restore())
	assert.NoFileExists(t, path)
}

func TestSessionRestoreFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "1.20.1.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))

	s := NewSession()
	require.NoError(t, s.Backup(path))

	// a directory where the file was makes the atomic rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0755))

	err := s.Restore()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRestoreFailed))
	var restoreErr *RestoreError
	require.ErrorAs(t, err, &restoreErr)
	assert.Contains(t, restoreErr.Failed, path)
	assert.Equal(t, []string{path}, s.Files())

	// once the obstacle is gone a second restore succeeds
	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, s.Restore())
	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor, string(restored))
}

func TestRestoreErrorIsSorted(t *testing.T) {
	err := &RestoreError{Failed: map[string]error{
		"c.json": errors.New("three"),
		"a.json": errors.New("one"),
		"b.json": errors.New("two"),
	}}
	want := "patch restore failed for 3 file(s):\n\ta.json: one\n\tb.json: two\n\tc.json: three"
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, err.Error())
	}
}

func TestSessionNoKeys(t *testing.T) {
	path := writeDescriptor(t)
	s := NewSession()
	require.NoError(t, s.RemoveLibraries(path, nil))
	assert.Empty(t, s.Files())
}

func TestPatchApplyTo(t *testing.T) {
	doc := Document{"libraries": json.RawMessage(`[{"name": "net.fabricmc:fabric-loader:0.14.21"}, {"name": "org.ow2.asm:asm:9.3"}]`)}

	p := &Patch{Patches: []Operation{
		{Action: "removeLibraries", With: json.RawMessage(`{"prefix": "net.fabricmc:"}`)},
		{Action: "addLibraries", With: json.RawMessage(`{"libraries": [{"name": "com.example:foo:2.0"}]}`)},
	}}
	require.NoError(t, p.ApplyTo(doc))

	libs, err := doc.Libraries()
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.JSONEq(t, `{"name": "org.ow2.asm:asm:9.3"}`, string(libs[0]))
	assert.JSONEq(t, `{"name": "com.example:foo:2.0"}`, string(libs[1]))

	unknown := &Patch{Patches: []Operation{{Action: "explode"}}}
	assert.Error(t, unknown.ApplyTo(doc))

	empty := &Patch{Patches: []Operation{{Action: "removeLibraries", With: json.RawMessage(`{}`)}}}
	assert.Error(t, empty.ApplyTo(doc))

	nameless := &Patch{Patches: []Operation{{Action: "addLibraries", With: json.RawMessage(`{"libraries": [{}]}`)}}}
	assert.Error(t, nameless.ApplyTo(doc))
}

func TestFetchPatchFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "drop-asm",
		"patches": [{"action": "removeLibraries", "with": {"keys": ["org.ow2.asm:asm"]}}]
	}`), 0644))

	p, err := FetchPatch(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, "drop-asm", p.Name)
	require.Len(t, p.Patches, 1)
	assert.Equal(t, "removeLibraries", p.Patches[0].Action)
}

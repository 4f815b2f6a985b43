// Package assets manages the hash addressed asset object store
package assets

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/minepkg/prelaunch/internals/cmdlog"
	"github.com/minepkg/prelaunch/internals/downloadmgr"
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/progress"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/pkg/errors"
)

// Object is a asset object together with its logical name
type Object struct {
	Name string `json:"name"`
	minecraft.AssetObject
}

// Store is the asset directory containing `indexes`, `objects` and `virtual/legacy`
type Store struct {
	Dir string
	// ResourcesDir receives the assets of indexes with `map_to_resources`
	ResourcesDir string
	// CDN is the root of the object download urls
	CDN         string
	Download    downloadmgr.Options
	Concurrency int
	// Seen is shared with the other downloads of a run. May be nil
	Seen       *downloadmgr.SeenSet
	OnProgress progress.Notifier
	Logger     *cmdlog.Logger
}

// New returns a store in dir using the default CDN
func New(dir string) *Store {
	return &Store{Dir: dir, CDN: downloadmgr.DefaultResourcesURL}
}

// ObjectPath returns the path of the object with the given hash
func (s *Store) ObjectPath(hash string) string {
	obj := minecraft.AssetObject{Hash: hash}
	return filepath.Join(s.Dir, "objects", filepath.FromSlash(obj.UnixPath()))
}

// IndexPath returns the path of the asset index with the given id
func (s *Store) IndexPath(id string) string {
	return filepath.Join(s.Dir, "indexes", id+".json")
}

// VirtualDir returns the root of the materialized legacy tree
func (s *Store) VirtualDir() string {
	return filepath.Join(s.Dir, "virtual", "legacy")
}

// LoadIndex returns the asset index. It is downloaded if it is missing or does not match ref's hash
func (s *Store) LoadIndex(ctx context.Context, ref minecraft.AssetIndexRef) (*minecraft.AssetIndex, error) {
	if ref.ID == "" {
		return nil, errors.New("asset index has no id")
	}
	path := s.IndexPath(ref.ID)

	if ref.URL != "" {
		item := s.Download.Item([]string{ref.URL}, path, ref.Sha1)
		if err := item.Download(ctx); err != nil {
			return nil, errors.Wrapf(err, "downloading asset index %s", ref.ID)
		}
	}

	index := &minecraft.AssetIndex{}
	if err := utils.ReadJSONFile(path, index); err != nil {
		return nil, errors.Wrapf(err, "reading asset index %s", ref.ID)
	}
	return index, nil
}

// Objects returns all objects of the index sorted by name
func Objects(index *minecraft.AssetIndex) []Object {
	objects := make([]Object, 0, len(index.Objects))
	for name, obj := range index.Objects {
		objects = append(objects, Object{Name: name, AssetObject: obj})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects
}

func (s *Store) logger() *cmdlog.Logger {
	if s.Logger == nil {
		return cmdlog.Discard()
	}
	return s.Logger
}

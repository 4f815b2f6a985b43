package assets

import (
	"path"
	"path/filepath"

	"github.com/minepkg/prelaunch/internals/artifacts"
	"github.com/minepkg/prelaunch/internals/minecraft"
)

// Orphans returns all object files that are not referenced by any of the indexes
func (s *Store) Orphans(indexes ...*minecraft.AssetIndex) ([]artifacts.Entry, error) {
	referenced := map[string]bool{}
	for _, index := range indexes {
		for _, obj := range index.Objects {
			referenced[obj.Hash] = true
		}
	}

	orphans := []artifacts.Entry{}
	objects := artifacts.New(filepath.Join(s.Dir, "objects"))
	err := objects.Walk(func(e artifacts.Entry) error {
		if !referenced[path.Base(e.Rel)] {
			orphans = append(orphans, e)
		}
		return nil
	})
	return orphans, err
}

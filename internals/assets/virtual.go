package assets

import (
	"path/filepath"
	"strings"

	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/progress"
	"github.com/minepkg/prelaunch/internals/utils"
	"github.com/pkg/errors"
)

// MaterializeReport counts what MaterializeVirtual did
type MaterializeReport struct {
	Copied   int `json:"copied"`
	Existing int `json:"existing"`
	// Missing objects are not in the store and were skipped
	Missing int `json:"missing"`
}

// MaterializeVirtual copies the objects of legacy indexes into a tree of their logical names:
// `virtual/legacy` for virtual indexes and ResourcesDir for `map_to_resources` ones.
// Existing files are never overwritten
func (s *Store) MaterializeVirtual(index *minecraft.AssetIndex) (*MaterializeReport, error) {
	report := &MaterializeReport{}

	roots := []string{}
	if index.Virtual {
		roots = append(roots, s.VirtualDir())
	}
	if index.MapToResources && s.ResourcesDir != "" {
		roots = append(roots, s.ResourcesDir)
	}
	if len(roots) == 0 {
		return report, nil
	}

	objects := Objects(index)
	total := len(objects) * len(roots)
	done := 0
	for _, root := range roots {
		for _, obj := range objects {
			done++
			target, ok := logicalPath(root, obj.Name)
			if !ok {
				s.logger().Warnf("Skipping asset with invalid name %q", obj.Name)
				s.OnProgress.Batched(progress.PhaseMaterialize, done, total)
				continue
			}

			switch {
			case utils.FileExists(target):
				report.Existing++
			case !utils.FileExists(s.ObjectPath(obj.Hash)):
				report.Missing++
			default:
				if err := utils.CopyFileAtomic(s.ObjectPath(obj.Hash), target); err != nil {
					return report, errors.Wrapf(err, "materializing %s", obj.Name)
				}
				report.Copied++
			}
			s.OnProgress.Batched(progress.PhaseMaterialize, done, total)
		}
	}
	return report, nil
}

// logicalPath joins the slash separated name to root. ok is false for names leaving root
func logicalPath(root string, name string) (string, bool) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

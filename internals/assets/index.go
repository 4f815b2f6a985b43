package assets

import (
	"github.com/minepkg/prelaunch/internals/minecraft"
	"github.com/minepkg/prelaunch/internals/progress"
)

// IndexReport is the outcome of VerifyIndex
type IndexReport struct {
	Valid   []Object `json:"valid"`
	Invalid []Object `json:"invalid"`
	Missing []Object `json:"missing"`
	// Errors contains objects that could not be read
	Errors map[string]error `json:"-"`
}

// Broken returns the invalid and missing objects
func (r *IndexReport) Broken() []Object {
	return append(append([]Object{}, r.Invalid...), r.Missing...)
}

// OK returns true if every object is valid
func (r *IndexReport) OK() bool {
	return len(r.Invalid) == 0 && len(r.Missing) == 0
}

// VerifyIndex verifies every object of the index against the store.
// Objects that can not be read are counted as invalid
func (s *Store) VerifyIndex(index *minecraft.AssetIndex) *IndexReport {
	report := &IndexReport{
		Valid:   []Object{},
		Invalid: []Object{},
		Missing: []Object{},
		Errors:  map[string]error{},
	}

	objects := Objects(index)
	for n, obj := range objects {
		result := Verify(s.ObjectPath(obj.Hash), obj.Hash)
		switch {
		case result.Valid:
			report.Valid = append(report.Valid, obj)
		case result.Reason == ReasonNotFound:
			report.Missing = append(report.Missing, obj)
		default:
			if result.Err != nil {
				report.Errors[obj.Name] = result.Err
			}
			report.Invalid = append(report.Invalid, obj)
		}
		s.OnProgress.Batched(progress.PhaseVerify, n+1, len(objects))
	}
	return report
}

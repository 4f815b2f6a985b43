// Package artifacts walks artifact directories (libraries, asset objects) with one
// consistent set of filters
package artifacts

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// Entry is one file found by the enumerator
type Entry struct {
	// Path is the full path
	Path string
	// Rel is the slash separated path relative to the root
	Rel  string
	Size int64
}

// Filter decides if a file is included. rel is slash separated
type Filter func(rel string, d fs.DirEntry) bool

// Enumerator lists all files below Root that pass every filter.
// Hidden files (temporary downloads) are always skipped
type Enumerator struct {
	Root    string
	Filters []Filter
}

// New returns a enumerator for root
func New(root string, filters ...Filter) *Enumerator {
	return &Enumerator{Root: root, Filters: filters}
}

// WithExtension only includes files with one of the extensions (like ".jar")
func WithExtension(exts ...string) Filter {
	return func(rel string, d fs.DirEntry) bool {
		ext := strings.ToLower(filepath.Ext(rel))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

// Excluding skips files matching any of the patterns (see Match)
func Excluding(patterns ...string) Filter {
	return func(rel string, d fs.DirEntry) bool {
		return !MatchAny(patterns, rel)
	}
}

// Walk calls fn for every matching file in lexical order.
// A missing root is not an error
func (e *Enumerator) Walk(fn func(Entry) error) error {
	return filepath.WalkDir(e.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == e.Root {
				return fs.SkipAll
			}
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != e.Root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(e.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, f := range e.Filters {
			if !f(rel, d) {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(Entry{Path: path, Rel: rel, Size: info.Size()})
	})
}

// List returns all matching files in lexical order
func (e *Enumerator) List() ([]Entry, error) {
	entries := []Entry{}
	err := e.Walk(func(entry Entry) error {
		entries = append(entries, entry)
		return nil
	})
	return entries, err
}

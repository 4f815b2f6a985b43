package patch

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/minepkg/prelaunch/internals/utils"
)

// ErrRestoreFailed is returned if at least one original file could not be written back
var ErrRestoreFailed = errors.New("patch restore failed")

// RestoreError lists every file that could not be restored
type RestoreError struct {
	Failed map[string]error
}

func (e *RestoreError) Error() string {
	paths := make([]string, 0, len(e.Failed))
	for path := range e.Failed {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	msg := fmt.Sprintf("%s for %d file(s):", ErrRestoreFailed, len(e.Failed))
	for _, path := range paths {
		msg += fmt.Sprintf("\n\t%s: %s", path, e.Failed[path])
	}
	return msg
}

func (e *RestoreError) Is(target error) bool {
	return target == ErrRestoreFailed
}

type original struct {
	path   string
	data   []byte
	absent bool
}

// Session keeps the original content of every file it changes. Restore must be called on every exit path
type Session struct {
	mu        sync.Mutex
	originals []original
	seen      map[string]bool
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{seen: make(map[string]bool)}
}

// Backup remembers the current bytes of the files. Files that are backed up already are ignored,
// files that do not exist are removed again on restore
func (s *Session) Backup(paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range paths {
		if s.seen[path] {
			continue
		}
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			s.originals = append(s.originals, original{path: path, absent: true})
		case err != nil:
			return fmt.Errorf("backup of %s: %w", path, err)
		default:
			s.originals = append(s.originals, original{path: path, data: data})
		}
		s.seen[path] = true
	}
	return nil
}

// Apply backs up path and writes the patched document to it
func (s *Session) Apply(path string, p *Patch) error {
	if err := s.Backup(path); err != nil {
		return err
	}
	doc, err := ReadDocument(path)
	if err != nil {
		return err
	}
	if err := p.ApplyTo(doc); err != nil {
		return fmt.Errorf("patch %q: %w", p.Name, err)
	}
	buf, err := doc.Marshal()
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, buf)
}

// RemoveLibraries removes the libraries with the given keys from the descriptor at path
func (s *Session) RemoveLibraries(path string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.Apply(path, RemoveLibrariesPatch(keys))
}

// Files returns the backed up paths
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]string, len(s.originals))
	for i, o := range s.originals {
		files[i] = o.path
	}
	return files
}

// Restore writes every original back. All files are attempted even if one fails,
// failed files stay in the session so Restore can be called again
func (s *Session) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	failed := make(map[string]error)
	remaining := []original{}
	for _, o := range s.originals {
		var err error
		if o.absent {
			if err = os.Remove(o.path); os.IsNotExist(err) {
				err = nil
			}
		} else {
			err = utils.WriteFileAtomic(o.path, o.data)
		}
		if err != nil {
			failed[o.path] = err
			remaining = append(remaining, o)
			continue
		}
		delete(s.seen, o.path)
	}

	s.originals = remaining
	if len(failed) != 0 {
		return &RestoreError{Failed: failed}
	}
	return nil
}

package downloadmgr

import "sync"

// SeenSet remembers which artifacts were already satisfied during one run.
// It is safe for concurrent use, a nil SeenSet never contains anything
type SeenSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewSeenSet returns an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// Has returns true if key was added before
func (s *SeenSet) Has(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[key]
	return ok
}

// Add marks key as seen
func (s *SeenSet) Add(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[key] = struct{}{}
}

// Len returns the number of seen keys
func (s *SeenSet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

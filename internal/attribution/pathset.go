package attribution

import "sort"

// PathSet is the mutable set of paths still waiting for an attribution.
// Entries are unique; the set shrinks as commits are matched and an empty
// set is the success terminal state.
type PathSet struct {
	paths map[string]struct{}
}

// NewPathSet builds a set from the given paths, deduplicating as it goes.
func NewPathSet(paths ...string) *PathSet {
	s := &PathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	return s
}

// Add inserts a path. Adding an existing path is a no-op.
func (s *PathSet) Add(path string) {
	s.paths[path] = struct{}{}
}

// Contains reports whether path is still in the set.
func (s *PathSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Remove deletes path from the set and reports whether it was present.
func (s *PathSet) Remove(path string) bool {
	if _, ok := s.paths[path]; !ok {
		return false
	}
	delete(s.paths, path)
	return true
}

// Len returns the number of paths still in the set.
func (s *PathSet) Len() int {
	return len(s.paths)
}

// Paths returns a sorted snapshot of the remaining paths, so reports of
// unresolved paths are deterministic.
func (s *PathSet) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

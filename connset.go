package btthermo

import "sort"

// Handle denotes an opaque identifier of an established radio link
type Handle string

// ConnectionSet denotes the set of currently established links. It is not safe
// for concurrent use and is only mutated from the goroutine applying radio events.
type ConnectionSet struct {
	handles map[Handle]struct{}
}

// NewConnectionSet instantiates an empty ConnectionSet
func NewConnectionSet() *ConnectionSet {
	return &ConnectionSet{handles: make(map[Handle]struct{})}
}

// Add inserts a handle, reporting false if it is already present
func (s *ConnectionSet) Add(h Handle) bool {
	if _, exists := s.handles[h]; exists {
		return false
	}
	s.handles[h] = struct{}{}
	return true
}

// Remove deletes a handle, reporting false if it was not present
func (s *ConnectionSet) Remove(h Handle) bool {
	if _, exists := s.handles[h]; !exists {
		return false
	}
	delete(s.handles, h)
	return true
}

// Contains reports whether the handle is present
func (s *ConnectionSet) Contains(h Handle) bool {
	_, exists := s.handles[h]
	return exists
}

// Len returns the number of established links
func (s *ConnectionSet) Len() int {
	return len(s.handles)
}

// Handles returns a sorted snapshot of all handles
func (s *ConnectionSet) Handles() []Handle {
	res := make([]Handle, 0, len(s.handles))
	for h := range s.handles {
		res = append(res, h)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

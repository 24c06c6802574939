// Package dedupe tracks distinct identifiers in first-seen order.
package dedupe

// Set records identifiers and remembers the order they were first seen in.
// The zero value is not usable; call New. A Set is not safe for concurrent use;
// each computation builds its own.
type Set struct {
	seen  map[string]struct{}
	order []string
}

// New creates an empty Set sized for about n identifiers.
func New(n int) *Set {
	if n < 0 {
		n = 0
	}
	return &Set{
		seen:  make(map[string]struct{}, n),
		order: make([]string, 0, n),
	}
}

// SeenAndRecord checks if id was seen and records it if not.
// Returns true if id was already seen, false if it was newly recorded.
func (s *Set) SeenAndRecord(id string) bool {
	if _, exists := s.seen[id]; exists {
		return true
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return false
}

// Has reports whether id was recorded.
func (s *Set) Has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of distinct identifiers.
func (s *Set) Len() int {
	return len(s.order)
}

// IDs returns the distinct identifiers in first-seen order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.order...)
}

// Members returns the identifiers as a membership map.
func (s *Set) Members() map[string]struct{} {
	out := make(map[string]struct{}, len(s.seen))
	for id := range s.seen {
		out[id] = struct{}{}
	}
	return out
}

// Unique returns the distinct values of ids in first-seen order, along with
// the values that occurred more than once.
func Unique(ids []string) (distinct, duplicates []string) {
	s := New(len(ids))
	dups := New(0)
	for _, id := range ids {
		if s.SeenAndRecord(id) {
			dups.SeenAndRecord(id)
		}
	}
	return s.IDs(), dups.IDs()
}

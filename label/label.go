// Package label holds the identifiers used to express ordering constraints
// and the two resolution passes that turn those constraints into a total
// order.
//
// A Label is not unique by itself: several items may carry the same label,
// and an "after L" constraint waits for every item tagged L. Stages use the
// unique-key pass (ResolveUnique); controllers inside a stage use the
// shared-label pass (ResolveShared).
package label

import "strings"

// Label identifies a stage or tags a controller.
type Label string

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// IsZero reports whether the label is empty.
func (l Label) IsZero() bool {
	return strings.TrimSpace(string(l)) == ""
}

// Trimmed returns l without surrounding whitespace. Labels are compared in
// this form everywhere, so " Early" and "Early" name the same stage.
func (l Label) Trimmed() Label {
	return Label(strings.TrimSpace(string(l)))
}

// Set is an insertion-ordered set of labels. The zero value is ready to use.
// Iteration order is always the order in which labels were first added, so
// every resolution pass built on top of it is deterministic.
type Set struct {
	items []Label
	index map[Label]struct{}
}

// NewSet returns a set holding labels in the given order, skipping empty and
// repeated entries.
func NewSet(labels ...Label) Set {
	var s Set
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add appends the trimmed l unless it is empty or already present. It
// reports whether the set changed.
func (s *Set) Add(l Label) bool {
	l = l.Trimmed()
	if l.IsZero() {
		return false
	}
	if _, ok := s.index[l]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[Label]struct{})
	}
	s.index[l] = struct{}{}
	s.items = append(s.items, l)
	return true
}

// Union adds every label of other, preserving other's order for new entries.
func (s *Set) Union(other Set) {
	for _, l := range other.items {
		s.Add(l)
	}
}

// Has reports whether l is in the set.
func (s Set) Has(l Label) bool {
	_, ok := s.index[l.Trimmed()]
	return ok
}

// Len returns the number of labels.
func (s Set) Len() int {
	return len(s.items)
}

// At returns the i-th label in insertion order.
func (s Set) At(i int) Label {
	return s.items[i]
}

// Slice returns a copy of the labels in insertion order.
func (s Set) Slice() []Label {
	if len(s.items) == 0 {
		return nil
	}
	out := make([]Label, len(s.items))
	copy(out, s.items)
	return out
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	return NewSet(s.items...)
}

// Strings converts labels to plain strings.
func Strings(labels []Label) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

// FromStrings converts plain strings to labels, trimming whitespace.
func FromStrings(values []string) []Label {
	if len(values) == 0 {
		return nil
	}
	out := make([]Label, 0, len(values))
	for _, v := range values {
		out = append(out, Label(strings.TrimSpace(v)))
	}
	return out
}

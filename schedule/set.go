package schedule

import "github.com/kingrea/legion/label"

// ControllerSet is a reusable template: an ordered list of controllers plus
// labels and constraints that are unioned onto every member when the set is
// registered into a stage. A set never appears in the resolved schedule.
//
// Misuse while filling the set is latched and reported by the builder method
// that registers it.
type ControllerSet[C any] struct {
	controllers []*Controller[C]
	labels      label.Set
	after       label.Set
	before      label.Set
	current     label.Label
	err         error
}

// NewControllerSet returns an empty set.
func NewControllerSet[C any]() *ControllerSet[C] {
	return &ControllerSet[C]{}
}

// WithLabel tags every member with l.
func (s *ControllerSet[C]) WithLabel(l label.Label) *ControllerSet[C] {
	s.labels.Add(l)
	return s
}

// After orders every member after the controllers carrying l.
func (s *ControllerSet[C]) After(l label.Label) *ControllerSet[C] {
	s.after.Add(l)
	return s
}

// Before orders every member before the controllers carrying l.
func (s *ControllerSet[C]) Before(l label.Label) *ControllerSet[C] {
	s.before.Add(l)
	return s
}

// AddController appends a copy of c.
func (s *ControllerSet[C]) AddController(c *Controller[C]) *ControllerSet[C] {
	if s.err != nil {
		return s
	}
	if c == nil {
		s.err = ErrUnnamedController
		return s
	}
	name, err := c.validate()
	if err != nil {
		s.err = err
		return s
	}
	s.controllers = append(s.controllers, c.clone())
	s.current = name
	return s
}

// AddControllerSeq appends a copy of c ordered after the previously added
// member.
func (s *ControllerSet[C]) AddControllerSeq(c *Controller[C]) *ControllerSet[C] {
	if s.err != nil {
		return s
	}
	if s.current.IsZero() {
		s.err = ErrNoSequenceCursor
		return s
	}
	if c == nil {
		s.err = ErrUnnamedController
		return s
	}
	next := c.clone()
	next.after.Add(s.current)
	return s.AddController(next)
}

// Len returns the number of members.
func (s *ControllerSet[C]) Len() int {
	return len(s.controllers)
}

// Err returns the first misuse recorded while filling the set.
func (s *ControllerSet[C]) Err() error {
	return s.err
}

// expand returns private copies of the members with the shared labels and
// constraints applied.
func (s *ControllerSet[C]) expand() []*Controller[C] {
	out := make([]*Controller[C], 0, len(s.controllers))
	for _, c := range s.controllers {
		member := c.clone()
		member.labels.Union(s.labels)
		member.after.Union(s.after)
		member.before.Union(s.before)
		out = append(out, member)
	}
	return out
}

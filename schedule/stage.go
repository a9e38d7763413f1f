package schedule

import (
	"errors"

	"github.com/kingrea/legion/label"
)

// stage owns the controllers registered into it, in registration order.
// Controllers may be added before the stage itself is declared; declared
// records whether AddStage* ever ran for it.
type stage[C any] struct {
	label       label.Label
	declared    bool
	after       label.Set
	before      label.Set
	controllers []*Controller[C]
	names       map[label.Label]struct{}
}

func (s *stage[C]) has(name label.Label) bool {
	_, ok := s.names[name]
	return ok
}

func (s *stage[C]) add(c *Controller[C]) {
	name, _ := c.Name()
	if s.names == nil {
		s.names = make(map[label.Label]struct{})
	}
	s.names[name] = struct{}{}
	s.controllers = append(s.controllers, c)
}

// resolve orders the stage's controllers with shared-label semantics.
func (s *stage[C]) resolve() ([]*Controller[C], error) {
	items := make([]label.Item, len(s.controllers))
	for i, c := range s.controllers {
		items[i] = c.item()
	}
	order, err := label.ResolveShared(items)
	if err != nil {
		return nil, s.translate(err)
	}
	out := make([]*Controller[C], len(order))
	for i, idx := range order {
		out[i] = s.controllers[idx]
	}
	return out, nil
}

func (s *stage[C]) translate(err error) error {
	var unknown label.UnknownReferenceError
	if errors.As(err, &unknown) {
		return UnknownLabelError{Stage: s.label, Controller: unknown.Item, Label: unknown.Label, Relation: unknown.Relation}
	}
	var cycle label.CycleError
	if errors.As(err, &cycle) {
		return ControllerCycleError{Stage: s.label, Unresolved: cycle.Unresolved}
	}
	var dup label.DuplicateError
	if errors.As(err, &dup) {
		return DuplicateControllerError{Stage: s.label, Controller: dup.Label}
	}
	if errors.As(err, new(label.UnnamedItemError)) {
		return ErrUnnamedController
	}
	return err
}

func (s *stage[C]) plan(controllers []*Controller[C]) StagePlan {
	sp := StagePlan{
		Label:  s.label,
		After:  s.after.Slice(),
		Before: s.before.Slice(),
	}
	if len(controllers) > 0 {
		sp.Controllers = make([]ControllerPlan, len(controllers))
		for i, c := range controllers {
			sp.Controllers[i] = c.plan()
		}
	}
	return sp
}

// stageRegistry keeps stages in first-mention order.
type stageRegistry[C any] struct {
	stages []*stage[C]
	index  map[label.Label]*stage[C]
}

func newStageRegistry[C any]() stageRegistry[C] {
	return stageRegistry[C]{index: make(map[label.Label]*stage[C])}
}

// lookup returns the stage for l, creating an undeclared placeholder if needed.
func (r *stageRegistry[C]) lookup(l label.Label) *stage[C] {
	if st, ok := r.index[l]; ok {
		return st
	}
	st := &stage[C]{label: l}
	r.index[l] = st
	r.stages = append(r.stages, st)
	return st
}

func (r *stageRegistry[C]) declare(l label.Label) (*stage[C], error) {
	if l.IsZero() {
		return nil, ErrEmptyStageLabel
	}
	st := r.lookup(l)
	if st.declared {
		return nil, DuplicateStageError{Stage: l}
	}
	st.declared = true
	return st, nil
}

// resolve orders declared stages with unique-key semantics.
func (r *stageRegistry[C]) resolve() ([]*stage[C], error) {
	for _, st := range r.stages {
		if !st.declared {
			return nil, UnknownStageError{Target: st.label}
		}
	}
	items := make([]label.Item, len(r.stages))
	for i, st := range r.stages {
		items[i] = label.Item{
			Labels: []label.Label{st.label},
			After:  st.after.Slice(),
			Before: st.before.Slice(),
		}
	}
	order, err := label.ResolveUnique(items)
	if err != nil {
		var unknown label.UnknownReferenceError
		if errors.As(err, &unknown) {
			return nil, UnknownStageError{Stage: unknown.Item, Target: unknown.Label, Relation: unknown.Relation}
		}
		var cycle label.CycleError
		if errors.As(err, &cycle) {
			return nil, StageCycleError{Unresolved: cycle.Unresolved}
		}
		return nil, err
	}
	out := make([]*stage[C], len(order))
	for i, idx := range order {
		out[i] = r.stages[idx]
	}
	return out, nil
}

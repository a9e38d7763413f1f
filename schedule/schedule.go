package schedule

// Schedule is the immutable result of a successful Build: a flat list of
// actions in stage-major, controller-minor order.
type Schedule[C any] struct {
	actions []Action[C]
	plan    Plan
}

// Execute runs every action against ctx, in order, on the calling goroutine.
func (s *Schedule[C]) Execute(ctx C) {
	for _, act := range s.actions {
		act(ctx)
	}
}

// Len returns the number of actions.
func (s *Schedule[C]) Len() int {
	return len(s.actions)
}

// Plan returns a copy of the resolved structure.
func (s *Schedule[C]) Plan() Plan {
	return s.plan.Clone()
}

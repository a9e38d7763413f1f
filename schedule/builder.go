package schedule

import (
	"fmt"
	"strings"

	"github.com/kingrea/legion/label"
)

// cursor remembers the last registered controller so AddControllerSeq can
// chain after it. It is cleared whenever a stage is declared or a set
// registration begins.
type cursor struct {
	stage      label.Label
	controller label.Label
}

func (c *cursor) reset() {
	*c = cursor{}
}

func (c *cursor) set(stage, controller label.Label) {
	c.stage = stage
	c.controller = controller
}

func (c cursor) empty() bool {
	return c.controller.IsZero()
}

// Builder collects stages and controllers and resolves them into a Schedule.
// A Builder is single use: after Build, successful or not, every method
// returns ErrAlreadyBuilt. It is not safe for concurrent use.
type Builder[C any] struct {
	stages       stageRegistry[C]
	defaultStage label.Label
	logger       Logger
	cursor       cursor
	built        bool
}

// New returns a builder with the default stage already declared.
func New[C any](opts ...Option) *Builder[C] {
	o := buildOptions(opts)
	b := &Builder[C]{
		stages:       newStageRegistry[C](),
		defaultStage: o.defaultStage,
		logger:       o.logger,
	}
	_, _ = b.stages.declare(o.defaultStage)
	return b
}

// DefaultStage returns the label of the implicit stage.
func (b *Builder[C]) DefaultStage() label.Label {
	return b.defaultStage
}

// AddStage declares a stage with no ordering constraints.
func (b *Builder[C]) AddStage(l label.Label) error {
	_, err := b.addStage(l)
	return err
}

// AddStageAfter declares a stage ordered after every target. Targets are
// checked at Build, so they may be declared later; an empty target fails
// with ErrEmptyStageLabel before anything is declared.
func (b *Builder[C]) AddStageAfter(l label.Label, targets ...label.Label) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if err := checkTargets(targets); err != nil {
		return err
	}
	st, err := b.addStage(l)
	if err != nil {
		return err
	}
	for _, t := range targets {
		st.after.Add(t)
	}
	return nil
}

// AddStageBefore declares a stage ordered before every target.
func (b *Builder[C]) AddStageBefore(l label.Label, targets ...label.Label) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if err := checkTargets(targets); err != nil {
		return err
	}
	st, err := b.addStage(l)
	if err != nil {
		return err
	}
	for _, t := range targets {
		st.before.Add(t)
	}
	return nil
}

func (b *Builder[C]) addStage(l label.Label) (*stage[C], error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.cursor.reset()
	return b.stages.declare(l.Trimmed())
}

func checkTargets(targets []label.Label) error {
	for _, t := range targets {
		if t.IsZero() {
			return ErrEmptyStageLabel
		}
	}
	return nil
}

// AddController registers a copy of c into the default stage.
func (b *Builder[C]) AddController(c *Controller[C]) error {
	return b.AddControllerToStage(b.defaultStage, c)
}

// AddControllerToStage registers a copy of c into stage. The stage does not
// have to be declared yet, but it must be by the time Build runs.
func (b *Builder[C]) AddControllerToStage(stage label.Label, c *Controller[C]) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	stage = stage.Trimmed()
	if stage.IsZero() {
		return ErrEmptyStageLabel
	}
	if c == nil {
		return ErrUnnamedController
	}
	name, err := c.validate()
	if err != nil {
		return err
	}
	st := b.stages.lookup(stage)
	if st.has(name) {
		return DuplicateControllerError{Stage: stage, Controller: name}
	}
	st.add(c.clone())
	b.cursor.set(stage, name)
	return nil
}

// AddControllerSeq registers a copy of c into the stage of the previously
// registered controller, ordered after it.
func (b *Builder[C]) AddControllerSeq(c *Controller[C]) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if b.cursor.empty() {
		return ErrNoSequenceCursor
	}
	if c == nil {
		return ErrUnnamedController
	}
	next := c.clone()
	next.after.Add(b.cursor.controller)
	return b.AddControllerToStage(b.cursor.stage, next)
}

// AddControllerSet registers every member of set into the default stage.
func (b *Builder[C]) AddControllerSet(set *ControllerSet[C]) error {
	return b.AddControllerSetToStage(b.defaultStage, set)
}

// AddControllerSetToStage registers every member of set into stage with the
// set's labels and constraints applied. Either every member is registered or
// none is. Afterwards the sequence cursor points at the last member.
func (b *Builder[C]) AddControllerSetToStage(stage label.Label, set *ControllerSet[C]) error {
	if b.built {
		return ErrAlreadyBuilt
	}
	b.cursor.reset()
	stage = stage.Trimmed()
	if stage.IsZero() {
		return ErrEmptyStageLabel
	}
	if set == nil {
		return nil
	}
	if err := set.Err(); err != nil {
		return fmt.Errorf("schedule: controller set for stage '%s': %w", stage, err)
	}

	members := set.expand()
	st := b.stages.lookup(stage)
	seen := make(map[label.Label]struct{}, len(members))
	for _, m := range members {
		name, err := m.validate()
		if err != nil {
			return err
		}
		if _, dup := seen[name]; dup || st.has(name) {
			return DuplicateControllerError{Stage: stage, Controller: name}
		}
		seen[name] = struct{}{}
	}
	for _, m := range members {
		name, _ := m.Name()
		st.add(m)
		b.cursor.set(stage, name)
	}
	return nil
}

// Build resolves the stage order, then the controller order inside each
// stage, and flattens the actions into a Schedule. The trace of every
// resolved stage goes to the configured Logger.
func (b *Builder[C]) Build() (*Schedule[C], error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true
	b.cursor.reset()

	stages, err := b.stages.resolve()
	if err != nil {
		return nil, err
	}

	out := &Schedule[C]{}
	out.plan.Stages = make([]StagePlan, 0, len(stages))
	for i, st := range stages {
		controllers, err := st.resolve()
		if err != nil {
			return nil, err
		}
		sp := st.plan(controllers)
		b.trace(i, sp)
		out.plan.Stages = append(out.plan.Stages, sp)
		for _, c := range controllers {
			out.actions = append(out.actions, c.action)
		}
	}
	return out, nil
}

func (b *Builder[C]) trace(i int, sp StagePlan) {
	b.logger.Info("Stage %d: '%s'", i, sp.Label)
	b.logger.Info("%s", formatNames(sp.Names()))
}

func formatNames(names []label.Label) string {
	if len(names) == 0 {
		return "[ ]"
	}
	return "[ " + strings.Join(label.Strings(names), ", ") + " ]"
}

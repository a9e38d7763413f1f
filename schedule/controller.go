package schedule

import "github.com/kingrea/legion/label"

// Action is the unit of work a controller performs against the execution
// context. The context is owned by the caller; actions may mutate it freely.
type Action[C any] func(C)

// Controller is a named action plus the labels it carries and the labels it
// must run after or before. The first label is the controller's name and must
// be unique within its stage.
//
// Controllers are configured fluently and copied when registered, so a value
// may be reused as a template after it has been added to a builder.
type Controller[C any] struct {
	action Action[C]
	labels label.Set
	after  label.Set
	before label.Set
}

// NewController returns a controller named name that runs action.
func NewController[C any](name label.Label, action Action[C]) *Controller[C] {
	return &Controller[C]{
		action: action,
		labels: label.NewSet(name),
	}
}

// WithLabel tags the controller with l. Repeated labels are ignored.
func (c *Controller[C]) WithLabel(l label.Label) *Controller[C] {
	c.labels.Add(l)
	return c
}

// After orders the controller after every controller in the same stage that
// carries l.
func (c *Controller[C]) After(l label.Label) *Controller[C] {
	c.after.Add(l)
	return c
}

// Before orders the controller before every controller in the same stage that
// carries l.
func (c *Controller[C]) Before(l label.Label) *Controller[C] {
	c.before.Add(l)
	return c
}

// Name returns the controller's first label.
func (c *Controller[C]) Name() (label.Label, bool) {
	if c == nil || c.labels.Len() == 0 {
		return "", false
	}
	return c.labels.At(0), true
}

// Labels returns every label the controller carries, name first.
func (c *Controller[C]) Labels() []label.Label {
	return c.labels.Slice()
}

// AfterLabels returns the labels the controller waits for.
func (c *Controller[C]) AfterLabels() []label.Label {
	return c.after.Slice()
}

// BeforeLabels returns the labels the controller must precede.
func (c *Controller[C]) BeforeLabels() []label.Label {
	return c.before.Slice()
}

func (c *Controller[C]) clone() *Controller[C] {
	return &Controller[C]{
		action: c.action,
		labels: c.labels.Clone(),
		after:  c.after.Clone(),
		before: c.before.Clone(),
	}
}

func (c *Controller[C]) item() label.Item {
	return label.Item{
		Labels: c.labels.Slice(),
		After:  c.after.Slice(),
		Before: c.before.Slice(),
	}
}

func (c *Controller[C]) plan() ControllerPlan {
	name, _ := c.Name()
	return ControllerPlan{
		Name:   name,
		Labels: c.labels.Slice(),
		After:  c.after.Slice(),
		Before: c.before.Slice(),
	}
}

// validate checks what can be checked without the rest of the stage.
func (c *Controller[C]) validate() (label.Label, error) {
	name, ok := c.Name()
	if !ok {
		return "", ErrUnnamedController
	}
	if c.action == nil {
		return "", NilActionError{Controller: name}
	}
	return name, nil
}

package schedule

import (
	"fmt"

	"github.com/kingrea/legion/label"
)

// Plan describes a resolved schedule. Constraints are recorded as declared,
// before any before-to-after rewriting.
type Plan struct {
	Stages []StagePlan `json:"stages"`
}

// StagePlan is one stage of a Plan with its controllers in resolved order.
type StagePlan struct {
	Label       label.Label      `json:"label"`
	After       []label.Label    `json:"after,omitempty"`
	Before      []label.Label    `json:"before,omitempty"`
	Controllers []ControllerPlan `json:"controllers,omitempty"`
}

// ControllerPlan is one controller of a StagePlan.
type ControllerPlan struct {
	Name   label.Label   `json:"name"`
	Labels []label.Label `json:"labels,omitempty"`
	After  []label.Label `json:"after,omitempty"`
	Before []label.Label `json:"before,omitempty"`
}

// Names returns the controller names in resolved order.
func (sp StagePlan) Names() []label.Label {
	if len(sp.Controllers) == 0 {
		return nil
	}
	out := make([]label.Label, len(sp.Controllers))
	for i, c := range sp.Controllers {
		out[i] = c.Name
	}
	return out
}

// StageOrder returns the stage labels in resolved order.
func (p Plan) StageOrder() []label.Label {
	out := make([]label.Label, len(p.Stages))
	for i, sp := range p.Stages {
		out[i] = sp.Label
	}
	return out
}

// Stage returns the stage labelled l.
func (p Plan) Stage(l label.Label) (StagePlan, bool) {
	for _, sp := range p.Stages {
		if sp.Label == l {
			return sp, true
		}
	}
	return StagePlan{}, false
}

// Trace renders the same lines the builder logs: a header per stage followed
// by its controller names.
func (p Plan) Trace() []string {
	lines := make([]string, 0, 2*len(p.Stages))
	for i, sp := range p.Stages {
		lines = append(lines, fmt.Sprintf("Stage %d: '%s'", i, sp.Label))
		lines = append(lines, formatNames(sp.Names()))
	}
	return lines
}

// Clone returns a deep copy.
func (p Plan) Clone() Plan {
	out := Plan{Stages: make([]StagePlan, len(p.Stages))}
	for i, sp := range p.Stages {
		cp := StagePlan{
			Label:  sp.Label,
			After:  cloneLabels(sp.After),
			Before: cloneLabels(sp.Before),
		}
		if sp.Controllers != nil {
			cp.Controllers = make([]ControllerPlan, len(sp.Controllers))
			for j, c := range sp.Controllers {
				cp.Controllers[j] = ControllerPlan{
					Name:   c.Name,
					Labels: cloneLabels(c.Labels),
					After:  cloneLabels(c.After),
					Before: cloneLabels(c.Before),
				}
			}
		}
		out.Stages[i] = cp
	}
	return out
}

func cloneLabels(in []label.Label) []label.Label {
	if in == nil {
		return nil
	}
	out := make([]label.Label, len(in))
	copy(out, in)
	return out
}

package plugins

import (
	"fmt"
	"strings"
)

// Definition is one declarative schedule fragment: stages, controllers and
// controller sets, applied to a builder in that order.
//
// The struct mirrors the on-disk schema under .legion/schedules/*.yaml.
type Definition struct {
	Stages      []StageDefinition      `json:"stages,omitempty" yaml:"stages,omitempty"`
	Controllers []ControllerDefinition `json:"controllers,omitempty" yaml:"controllers,omitempty"`
	Sets        []SetDefinition        `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// StageDefinition declares a stage. At most one of After and Before may be set.
type StageDefinition struct {
	Label  string   `json:"label" yaml:"label"`
	After  []string `json:"after,omitempty" yaml:"after,omitempty"`
	Before []string `json:"before,omitempty" yaml:"before,omitempty"`
}

// ActionDefinition names a registered action kind and its payload.
type ActionDefinition struct {
	Kind   string         `json:"kind" yaml:"kind"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ControllerDefinition declares a controller. An empty Stage targets the
// builder's default stage; Seq chains it after the previous controller.
type ControllerDefinition struct {
	Name   string           `json:"name" yaml:"name"`
	Stage  string           `json:"stage,omitempty" yaml:"stage,omitempty"`
	Action ActionDefinition `json:"action" yaml:"action"`
	Labels []string         `json:"labels,omitempty" yaml:"labels,omitempty"`
	After  []string         `json:"after,omitempty" yaml:"after,omitempty"`
	Before []string         `json:"before,omitempty" yaml:"before,omitempty"`
	Seq    bool             `json:"seq,omitempty" yaml:"seq,omitempty"`
}

// SetDefinition declares a controller set registered into Stage. Member
// Stage fields are ignored.
type SetDefinition struct {
	Stage       string                 `json:"stage,omitempty" yaml:"stage,omitempty"`
	Labels      []string               `json:"labels,omitempty" yaml:"labels,omitempty"`
	After       []string               `json:"after,omitempty" yaml:"after,omitempty"`
	Before      []string               `json:"before,omitempty" yaml:"before,omitempty"`
	Controllers []ControllerDefinition `json:"controllers" yaml:"controllers"`
}

// Normalized returns a trimmed copy of the definition.
func (def Definition) Normalized() Definition {
	var clone Definition
	if len(def.Stages) > 0 {
		clone.Stages = make([]StageDefinition, len(def.Stages))
		for i, st := range def.Stages {
			clone.Stages[i] = StageDefinition{
				Label:  strings.TrimSpace(st.Label),
				After:  trimAll(st.After),
				Before: trimAll(st.Before),
			}
		}
	}
	if len(def.Controllers) > 0 {
		clone.Controllers = make([]ControllerDefinition, len(def.Controllers))
		for i, c := range def.Controllers {
			clone.Controllers[i] = c.normalized()
		}
	}
	if len(def.Sets) > 0 {
		clone.Sets = make([]SetDefinition, len(def.Sets))
		for i, set := range def.Sets {
			ns := SetDefinition{
				Stage:  strings.TrimSpace(set.Stage),
				Labels: trimAll(set.Labels),
				After:  trimAll(set.After),
				Before: trimAll(set.Before),
			}
			if len(set.Controllers) > 0 {
				ns.Controllers = make([]ControllerDefinition, len(set.Controllers))
				for j, c := range set.Controllers {
					member := c.normalized()
					member.Stage = ""
					ns.Controllers[j] = member
				}
			}
			clone.Sets[i] = ns
		}
	}
	return clone
}

func (c ControllerDefinition) normalized() ControllerDefinition {
	clone := ControllerDefinition{
		Name:   strings.TrimSpace(c.Name),
		Stage:  strings.TrimSpace(c.Stage),
		Action: ActionDefinition{Kind: strings.TrimSpace(c.Action.Kind)},
		Labels: trimAll(c.Labels),
		After:  trimAll(c.After),
		Before: trimAll(c.Before),
		Seq:    c.Seq,
	}
	if len(c.Action.Config) > 0 {
		clone.Action.Config = make(map[string]any, len(c.Action.Config))
		for key, value := range c.Action.Config {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			clone.Action.Config[trimmed] = value
		}
	}
	return clone
}

// Validate checks the definition for problems that can be found without a
// builder: missing names, duplicates within the fragment, and misused flags.
// Ordering problems are left to the builder.
func (def Definition) Validate() error {
	normalized := def.Normalized()
	if len(normalized.Stages) == 0 && len(normalized.Controllers) == 0 && len(normalized.Sets) == 0 {
		return fmt.Errorf("plugin: definition declares no stages, controllers or sets")
	}
	stages := make(map[string]int, len(normalized.Stages))
	for idx, st := range normalized.Stages {
		if st.Label == "" {
			return fmt.Errorf("plugin: stages[%d]: label is required", idx)
		}
		if prev, exists := stages[st.Label]; exists {
			return fmt.Errorf("plugin: stages[%d]: duplicate stage %s (first at stages[%d])", idx, st.Label, prev)
		}
		stages[st.Label] = idx
		if len(st.After) > 0 && len(st.Before) > 0 {
			return fmt.Errorf("plugin: stages[%d] %s: after and before are mutually exclusive", idx, st.Label)
		}
		if err := validateLabels(st.After, st.Before); err != nil {
			return fmt.Errorf("plugin: stages[%d] %s: %w", idx, st.Label, err)
		}
	}

	// Names are keyed by stage; "" stands for the default stage.
	names := make(map[string]string)
	claim := func(stage, name, where string) error {
		key := stage + "\x00" + name
		if prev, exists := names[key]; exists {
			return fmt.Errorf("plugin: %s: duplicate controller %s (first at %s)", where, name, prev)
		}
		names[key] = where
		return nil
	}
	prevStage := ""
	for idx, c := range normalized.Controllers {
		where := fmt.Sprintf("controllers[%d]", idx)
		if err := c.validate(); err != nil {
			return fmt.Errorf("plugin: %s: %w", where, err)
		}
		if c.Seq && c.Stage != "" {
			return fmt.Errorf("plugin: %s %s: seq controllers follow the previous controller's stage, stage must be empty", where, c.Name)
		}
		if c.Seq && idx == 0 {
			return fmt.Errorf("plugin: %s %s: seq requires a preceding controller", where, c.Name)
		}
		stage := c.Stage
		if c.Seq {
			stage = prevStage
		}
		if err := claim(stage, c.Name, where); err != nil {
			return err
		}
		prevStage = stage
	}
	for idx, set := range normalized.Sets {
		if len(set.Controllers) == 0 {
			return fmt.Errorf("plugin: sets[%d]: at least one controller is required", idx)
		}
		if err := validateLabels(set.Labels, set.After, set.Before); err != nil {
			return fmt.Errorf("plugin: sets[%d]: %w", idx, err)
		}
		for j, c := range set.Controllers {
			where := fmt.Sprintf("sets[%d].controllers[%d]", idx, j)
			if err := c.validate(); err != nil {
				return fmt.Errorf("plugin: %s: %w", where, err)
			}
			if c.Seq && j == 0 {
				return fmt.Errorf("plugin: %s %s: seq requires a preceding controller", where, c.Name)
			}
			if err := claim(set.Stage, c.Name, where); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c ControllerDefinition) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Action.Kind == "" {
		return fmt.Errorf("%s: action kind is required", c.Name)
	}
	if err := validateLabels(c.Labels, c.After, c.Before); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

func validateLabels(groups ...[]string) error {
	for _, group := range groups {
		for _, l := range group {
			if l == "" {
				return fmt.Errorf("labels must not be empty")
			}
		}
	}
	return nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

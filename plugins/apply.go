package plugins

import (
	"fmt"

	"github.com/kingrea/legion/internal/action"
	"github.com/kingrea/legion/label"
	"github.com/kingrea/legion/schedule"
)

// ActionResolver turns an action definition into a runnable action.
// *action.Registry satisfies it.
type ActionResolver[C any] interface {
	Resolve(kind string, cfg action.Config) (schedule.Action[C], error)
}

// Apply registers every definition onto b, file by file. Within a file,
// stages go first, then controllers, then sets. The first failure stops
// registration; b must then be discarded.
func Apply[C any](b *schedule.Builder[C], files []DefinitionFile, actions ActionResolver[C]) error {
	if b == nil {
		return fmt.Errorf("plugin: builder is required")
	}
	if actions == nil {
		return fmt.Errorf("plugin: action resolver is required")
	}
	for _, file := range files {
		if err := applyDefinition(b, file.Definition, actions); err != nil {
			return fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
	}
	return nil
}

func applyDefinition[C any](b *schedule.Builder[C], def Definition, actions ActionResolver[C]) error {
	for idx, st := range def.Stages {
		var err error
		l := label.Label(st.Label)
		switch {
		case len(st.After) > 0:
			err = b.AddStageAfter(l, label.FromStrings(st.After)...)
		case len(st.Before) > 0:
			err = b.AddStageBefore(l, label.FromStrings(st.Before)...)
		default:
			err = b.AddStage(l)
		}
		if err != nil {
			return fmt.Errorf("stages[%d]: %w", idx, err)
		}
	}

	for idx, cd := range def.Controllers {
		c, err := buildController(cd, actions)
		if err != nil {
			return fmt.Errorf("controllers[%d]: %w", idx, err)
		}
		switch {
		case cd.Seq:
			err = b.AddControllerSeq(c)
		case cd.Stage == "":
			err = b.AddController(c)
		default:
			err = b.AddControllerToStage(label.Label(cd.Stage), c)
		}
		if err != nil {
			return fmt.Errorf("controllers[%d]: %w", idx, err)
		}
	}

	for idx, sd := range def.Sets {
		set := schedule.NewControllerSet[C]()
		for _, l := range sd.Labels {
			set.WithLabel(label.Label(l))
		}
		for _, l := range sd.After {
			set.After(label.Label(l))
		}
		for _, l := range sd.Before {
			set.Before(label.Label(l))
		}
		for j, cd := range sd.Controllers {
			c, err := buildController(cd, actions)
			if err != nil {
				return fmt.Errorf("sets[%d].controllers[%d]: %w", idx, j, err)
			}
			if cd.Seq {
				set.AddControllerSeq(c)
			} else {
				set.AddController(c)
			}
		}
		var err error
		if sd.Stage == "" {
			err = b.AddControllerSet(set)
		} else {
			err = b.AddControllerSetToStage(label.Label(sd.Stage), set)
		}
		if err != nil {
			return fmt.Errorf("sets[%d]: %w", idx, err)
		}
	}
	return nil
}

func buildController[C any](cd ControllerDefinition, actions ActionResolver[C]) (*schedule.Controller[C], error) {
	cfg := action.Config(cd.Action.Config).Clone()
	cfg[action.ControllerKey] = cd.Name
	act, err := actions.Resolve(cd.Action.Kind, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cd.Name, err)
	}
	c := schedule.NewController(label.Label(cd.Name), act)
	for _, l := range cd.Labels {
		c.WithLabel(label.Label(l))
	}
	for _, l := range cd.After {
		c.After(label.Label(l))
	}
	for _, l := range cd.Before {
		c.Before(label.Label(l))
	}
	return c, nil
}

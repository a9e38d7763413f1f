package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/legion/label"
)

var (
	// ErrAlreadyBuilt is returned by Build and by every registration method
	// once Build has been called.
	ErrAlreadyBuilt = errors.New("schedule: Build must not be called more than once on the same builder")

	// ErrNoSequenceCursor means AddControllerSeq ran without a preceding
	// controller to chain after.
	ErrNoSequenceCursor = errors.New("schedule: AddControllerSeq requires a preceding AddController, AddControllerSeq or AddControllerToStage")

	// ErrUnnamedController means a controller carries no labels.
	ErrUnnamedController = errors.New("schedule: controller has no name")

	// ErrEmptyStageLabel means a stage was declared or targeted with an empty
	// label.
	ErrEmptyStageLabel = errors.New("schedule: stage label is required")
)

// NilActionError means a controller was registered without an action.
type NilActionError struct {
	Controller label.Label
}

func (e NilActionError) Error() string {
	return fmt.Sprintf("schedule: controller '%s' has no action", e.Controller)
}

// DuplicateStageError means a stage label was declared twice.
type DuplicateStageError struct {
	Stage label.Label
}

func (e DuplicateStageError) Error() string {
	return fmt.Sprintf("schedule: trying to add already existing stage '%s'", e.Stage)
}

// DuplicateControllerError means a controller name was registered twice in one
// stage.
type DuplicateControllerError struct {
	Stage      label.Label
	Controller label.Label
}

func (e DuplicateControllerError) Error() string {
	return fmt.Sprintf("schedule: stage '%s' already has a controller named '%s'", e.Stage, e.Controller)
}

// UnknownStageError means a stage constraint names a stage that was never
// declared. An empty Relation means controllers were registered into Target
// but Target itself was never declared.
type UnknownStageError struct {
	Stage    label.Label
	Target   label.Label
	Relation label.Relation
}

func (e UnknownStageError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("schedule: stage '%s' has controllers but was never added", e.Target)
	}
	return fmt.Sprintf("schedule: trying to add stage '%s' %s non-existing stage '%s'", e.Stage, e.Relation, e.Target)
}

// UnknownLabelError means a controller constraint names a label no controller
// in the same stage carries.
type UnknownLabelError struct {
	Stage      label.Label
	Controller label.Label
	Label      label.Label
	Relation   label.Relation
}

func (e UnknownLabelError) Error() string {
	return fmt.Sprintf("schedule: stage '%s': trying to add controller '%s' %s non-existing label '%s'",
		e.Stage, e.Controller, e.Relation, e.Label)
}

// StageCycleError means the stage constraints cannot be satisfied.
type StageCycleError struct {
	Unresolved []label.Label
}

func (e StageCycleError) Error() string {
	return "schedule: failed to resolve stage order, cycle among " + joinLabels(e.Unresolved)
}

// ControllerCycleError means the controller constraints of one stage cannot
// be satisfied.
type ControllerCycleError struct {
	Stage      label.Label
	Unresolved []label.Label
}

func (e ControllerCycleError) Error() string {
	return fmt.Sprintf("schedule: failed to resolve controller order in stage '%s', cycle among %s",
		e.Stage, joinLabels(e.Unresolved))
}

func joinLabels(labels []label.Label) string {
	if len(labels) == 0 {
		return "[]"
	}
	return "[" + strings.Join(label.Strings(labels), ", ") + "]"
}

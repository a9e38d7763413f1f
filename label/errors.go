package label

import (
	"fmt"
	"strings"
)

// Relation names the kind of constraint that referenced a label.
type Relation string

const (
	RelationAfter  Relation = "after"
	RelationBefore Relation = "before"
)

// UnnamedItemError means an item carries no labels, so no key can be derived.
type UnnamedItemError struct {
	Index int
}

func (e UnnamedItemError) Error() string {
	return fmt.Sprintf("label: item %d has no name", e.Index)
}

// DuplicateError means two items share the same key.
type DuplicateError struct {
	Label Label
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("label: duplicate item %q", string(e.Label))
}

// UnknownReferenceError means an after/before constraint names a label that no
// item carries.
type UnknownReferenceError struct {
	Item     Label
	Label    Label
	Relation Relation
}

func (e UnknownReferenceError) Error() string {
	return fmt.Sprintf("label: %q is ordered %s unknown label %q", string(e.Item), e.Relation, string(e.Label))
}

// CycleError means the fixed-point pass stalled. Unresolved lists the items
// that could not be placed, in registration order.
type CycleError struct {
	Unresolved []Label
}

func (e CycleError) Error() string {
	if len(e.Unresolved) == 0 {
		return "label: ordering cycle detected"
	}
	return "label: ordering cycle detected among " + strings.Join(Strings(e.Unresolved), ", ")
}

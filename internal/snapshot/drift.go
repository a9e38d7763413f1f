package snapshot

import (
	"fmt"

	"github.com/kingrea/legion/label"
	"github.com/kingrea/legion/schedule"
)

// Move records an item whose position differs between two plans. From or To
// is -1 when the item is absent on that side.
type Move struct {
	Stage label.Label
	Name  label.Label
	From  int
	To    int
}

// Drift lists every stage and controller that moved. Controller positions
// are indexes within their stage.
type Drift struct {
	Stages      []Move
	Controllers []Move
}

// Empty reports whether the two plans resolved identically.
func (d Drift) Empty() bool {
	return len(d.Stages) == 0 && len(d.Controllers) == 0
}

// Lines renders the drift for humans, one item per line.
func (d Drift) Lines() []string {
	var out []string
	for _, m := range d.Stages {
		out = append(out, "stage "+describe(m.Stage.String(), m))
	}
	for _, m := range d.Controllers {
		out = append(out, "controller "+describe(fmt.Sprintf("%s/%s", m.Stage, m.Name), m))
	}
	return out
}

func describe(name string, m Move) string {
	switch {
	case m.From < 0:
		return fmt.Sprintf("%s added at %d", name, m.To)
	case m.To < 0:
		return fmt.Sprintf("%s removed from %d", name, m.From)
	default:
		return fmt.Sprintf("%s moved %d -> %d", name, m.From, m.To)
	}
}

// Compare reports how current differs from previous. Items present in both
// at the same position are omitted. Entries follow current's order, then
// removed items in previous's order.
func Compare(previous, current schedule.Plan) Drift {
	var d Drift
	d.Stages = diffPositions(previous.StageOrder(), current.StageOrder(), func(l label.Label) Move {
		return Move{Stage: l}
	})

	prevStages := make(map[label.Label]schedule.StagePlan, len(previous.Stages))
	for _, sp := range previous.Stages {
		prevStages[sp.Label] = sp
	}
	seen := make(map[label.Label]struct{}, len(current.Stages))
	for _, sp := range current.Stages {
		seen[sp.Label] = struct{}{}
		stage := sp.Label
		d.Controllers = append(d.Controllers, diffPositions(prevStages[stage].Names(), sp.Names(), func(l label.Label) Move {
			return Move{Stage: stage, Name: l}
		})...)
	}
	for _, sp := range previous.Stages {
		if _, ok := seen[sp.Label]; ok {
			continue
		}
		stage := sp.Label
		d.Controllers = append(d.Controllers, diffPositions(sp.Names(), nil, func(l label.Label) Move {
			return Move{Stage: stage, Name: l}
		})...)
	}
	return d
}

func diffPositions(before, after []label.Label, mk func(label.Label) Move) []Move {
	from := make(map[label.Label]int, len(before))
	for i, l := range before {
		from[l] = i
	}
	var moves []Move
	present := make(map[label.Label]struct{}, len(after))
	for i, l := range after {
		present[l] = struct{}{}
		j, ok := from[l]
		if ok && j == i {
			continue
		}
		m := mk(l)
		m.From, m.To = -1, i
		if ok {
			m.From = j
		}
		moves = append(moves, m)
	}
	for i, l := range before {
		if _, ok := present[l]; ok {
			continue
		}
		m := mk(l)
		m.From, m.To = i, -1
		moves = append(moves, m)
	}
	return moves
}

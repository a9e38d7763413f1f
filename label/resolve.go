package label

// Item is one participant in a resolution pass. Labels[0] is the item's key.
type Item struct {
	Labels []Label
	After  []Label
	Before []Label
}

// Key returns the identifying label, or the zero label if there is none.
func (it Item) Key() Label {
	if len(it.Labels) == 0 {
		return ""
	}
	return it.Labels[0]
}

// ResolveUnique orders items whose keys are globally unique and whose
// constraints reference other keys directly. It returns indexes into items.
//
// "X before Y" is rewritten into "Y after X" up front. An item becomes ready
// once every key in its after set has been placed; passes repeat in
// registration order until nothing changes.
func ResolveUnique(items []Item) ([]int, error) {
	keys := make(map[Label]int, len(items))
	for i, it := range items {
		key := it.Key()
		if key.IsZero() {
			return nil, UnnamedItemError{Index: i}
		}
		if _, exists := keys[key]; exists {
			return nil, DuplicateError{Label: key}
		}
		keys[key] = i
	}

	after := make([]Set, len(items))
	for i, it := range items {
		after[i] = NewSet(it.After...)
	}
	for _, it := range items {
		for _, target := range it.After {
			if _, ok := keys[target]; !ok {
				return nil, UnknownReferenceError{Item: it.Key(), Label: target, Relation: RelationAfter}
			}
		}
		for _, target := range it.Before {
			j, ok := keys[target]
			if !ok {
				return nil, UnknownReferenceError{Item: it.Key(), Label: target, Relation: RelationBefore}
			}
			after[j].Add(it.Key())
		}
	}

	placed := make(map[Label]struct{}, len(items))
	ready := func(i int) bool {
		for _, dep := range after[i].items {
			if _, ok := placed[dep]; !ok {
				return false
			}
		}
		return true
	}
	order := fixedPoint(len(items), ready, func(i int) {
		placed[items[i].Key()] = struct{}{}
	})
	if len(order) != len(items) {
		return nil, CycleError{Unresolved: unresolved(items, order)}
	}
	return order, nil
}

// ResolveShared orders items where a label may be carried by several items.
// It returns indexes into items.
//
// "after L" means after every item carrying L, so readiness is tracked with a
// per-label count of items not yet placed rather than per-item in-degree.
// "X before L" is rewritten into "after X" on every item carrying L. Every
// referenced label must be carried by at least one item; an unknown label
// would otherwise never drain and would be misreported as a cycle.
func ResolveShared(items []Item) ([]int, error) {
	labels := make([]Set, len(items))
	names := make(map[Label]struct{}, len(items))
	remaining := make(map[Label]int)
	for i, it := range items {
		key := it.Key()
		if key.IsZero() {
			return nil, UnnamedItemError{Index: i}
		}
		if _, exists := names[key]; exists {
			return nil, DuplicateError{Label: key}
		}
		names[key] = struct{}{}
		labels[i] = NewSet(it.Labels...)
		for _, l := range labels[i].items {
			remaining[l]++
		}
	}

	after := make([]Set, len(items))
	for i, it := range items {
		after[i] = NewSet(it.After...)
	}
	for _, it := range items {
		for _, target := range it.After {
			if remaining[target] == 0 {
				return nil, UnknownReferenceError{Item: it.Key(), Label: target, Relation: RelationAfter}
			}
		}
		for _, target := range it.Before {
			if remaining[target] == 0 {
				return nil, UnknownReferenceError{Item: it.Key(), Label: target, Relation: RelationBefore}
			}
			for j := range items {
				if labels[j].Has(target) {
					after[j].Add(it.Key())
				}
			}
		}
	}

	ready := func(i int) bool {
		for _, dep := range after[i].items {
			if remaining[dep] > 0 {
				return false
			}
		}
		return true
	}
	order := fixedPoint(len(items), ready, func(i int) {
		for _, l := range labels[i].items {
			remaining[l]--
		}
	})
	if len(order) != len(items) {
		return nil, CycleError{Unresolved: unresolved(items, order)}
	}
	return order, nil
}

// fixedPoint scans unplaced items in index order, placing every ready one,
// until a full pass places nothing.
func fixedPoint(n int, ready func(int) bool, place func(int)) []int {
	done := make([]bool, n)
	order := make([]int, 0, n)
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			if done[i] || !ready(i) {
				continue
			}
			done[i] = true
			order = append(order, i)
			place(i)
			changed = true
		}
	}
	return order
}

func unresolved(items []Item, order []int) []Label {
	seen := make([]bool, len(items))
	for _, i := range order {
		seen[i] = true
	}
	var out []Label
	for i, it := range items {
		if !seen[i] {
			out = append(out, it.Key())
		}
	}
	return out
}

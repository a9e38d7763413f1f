package label

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/gammazero/toposort"
	"github.com/google/go-cmp/cmp"
)

func keysOf(items []Item, order []int) []Label {
	out := make([]Label, len(order))
	for i, idx := range order {
		out[i] = items[idx].Key()
	}
	return out
}

func position(order []Label, l Label) int {
	for i, v := range order {
		if v == l {
			return i
		}
	}
	return -1
}

func TestResolveUniqueRewritesBefore(t *testing.T) {
	items := []Item{
		{Labels: []Label{"Default"}, Before: []Label{"Early"}},
		{Labels: []Label{"Early"}},
		{Labels: []Label{"Late"}, After: []Label{"Early"}},
	}
	order, err := ResolveUnique(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []Label{"Default", "Early", "Late"}
	if diff := cmp.Diff(want, keysOf(items, order)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveUniqueKeepsRegistrationOrderForTies(t *testing.T) {
	items := []Item{
		{Labels: []Label{"c"}},
		{Labels: []Label{"a"}},
		{Labels: []Label{"b"}},
	}
	order, err := ResolveUnique(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveUniqueDetectsCycle(t *testing.T) {
	items := []Item{
		{Labels: []Label{"free"}},
		{Labels: []Label{"x"}, After: []Label{"y"}},
		{Labels: []Label{"y"}, After: []Label{"x"}},
	}
	_, err := ResolveUnique(items)
	var cycle CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if diff := cmp.Diff([]Label{"x", "y"}, cycle.Unresolved); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveUniqueSelfReferenceIsCycle(t *testing.T) {
	items := []Item{{Labels: []Label{"solo"}, Before: []Label{"solo"}}}
	_, err := ResolveUnique(items)
	var cycle CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestResolveUniqueReportsUnknownReference(t *testing.T) {
	items := []Item{
		{Labels: []Label{"a"}, Before: []Label{"ghost"}},
	}
	_, err := ResolveUnique(items)
	var unknown UnknownReferenceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownReferenceError, got %v", err)
	}
	if unknown.Relation != RelationBefore || unknown.Label != "ghost" || unknown.Item != "a" {
		t.Fatalf("unexpected error detail: %+v", unknown)
	}
}

func TestResolveUniqueRejectsDuplicatesAndUnnamed(t *testing.T) {
	_, err := ResolveUnique([]Item{{Labels: []Label{"a"}}, {Labels: []Label{"a"}}})
	var dup DuplicateError
	if !errors.As(err, &dup) || dup.Label != "a" {
		t.Fatalf("expected DuplicateError for a, got %v", err)
	}
	_, err = ResolveUnique([]Item{{Labels: []Label{"a"}}, {}})
	var unnamed UnnamedItemError
	if !errors.As(err, &unnamed) || unnamed.Index != 1 {
		t.Fatalf("expected UnnamedItemError at 1, got %v", err)
	}
}

func TestResolveSharedWaitsForEveryCarrier(t *testing.T) {
	items := []Item{
		{Labels: []Label{"C"}, After: []Label{"L"}},
		{Labels: []Label{"A", "L"}},
		{Labels: []Label{"other"}},
		{Labels: []Label{"B", "L"}, After: []Label{"other"}},
	}
	order, err := ResolveShared(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := keysOf(items, order)
	c := position(got, "C")
	if c < position(got, "A") || c < position(got, "B") {
		t.Fatalf("C must follow both carriers of L, got %v", got)
	}
	want := []Label{"A", "other", "B", "C"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSharedBeforeGroup(t *testing.T) {
	items := []Item{
		{Labels: []Label{"E", "Group"}},
		{Labels: []Label{"F", "Group"}},
		{Labels: []Label{"D"}, Before: []Label{"Group"}},
	}
	order, err := ResolveShared(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []Label{"D", "E", "F"}
	if diff := cmp.Diff(want, keysOf(items, order)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSharedContradictionIsCycle(t *testing.T) {
	items := []Item{
		{Labels: []Label{"a"}, After: []Label{"b"}},
		{Labels: []Label{"b"}, After: []Label{"a"}},
	}
	if _, err := ResolveShared(items); !errors.As(err, new(CycleError)) {
		t.Fatalf("expected CycleError, got %v", err)
	}

	conflicting := []Item{
		{Labels: []Label{"a"}, Before: []Label{"b"}},
		{Labels: []Label{"b"}, Before: []Label{"a"}},
	}
	if _, err := ResolveShared(conflicting); !errors.As(err, new(CycleError)) {
		t.Fatalf("expected CycleError for conflicting before edges, got %v", err)
	}
}

func TestResolveSharedAfterOwnLabelIsCycle(t *testing.T) {
	items := []Item{
		{Labels: []Label{"a", "physics"}, After: []Label{"physics"}},
		{Labels: []Label{"b", "physics"}},
	}
	if _, err := ResolveShared(items); !errors.As(err, new(CycleError)) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestResolveSharedValidatesReferences(t *testing.T) {
	_, err := ResolveShared([]Item{{Labels: []Label{"a"}, After: []Label{"missing"}}})
	var unknown UnknownReferenceError
	if !errors.As(err, &unknown) || unknown.Relation != RelationAfter {
		t.Fatalf("expected unknown after reference, got %v", err)
	}
	_, err = ResolveShared([]Item{{Labels: []Label{"a"}, Before: []Label{"missing"}}})
	if !errors.As(err, &unknown) || unknown.Relation != RelationBefore {
		t.Fatalf("expected unknown before reference, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	items := []Item{
		{Labels: []Label{"z", "g"}},
		{Labels: []Label{"y"}, After: []Label{"g"}},
		{Labels: []Label{"x", "g"}},
		{Labels: []Label{"w"}, Before: []Label{"g"}},
	}
	first, err := ResolveShared(items)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := ResolveShared(items)
		if err != nil {
			t.Fatalf("resolve #%d: %v", i, err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

// randomDAG builds items whose after edges only point backwards along a random
// permutation, so the constraint graph is acyclic by construction.
func randomDAG(rng *rand.Rand, n int) ([]Item, []toposort.Edge) {
	perm := rng.Perm(n)
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Labels: []Label{Label(fmt.Sprintf("n%d", i))}}
	}
	var edges []toposort.Edge
	for j := 1; j < n; j++ {
		for i := 0; i < j; i++ {
			if rng.Intn(4) != 0 {
				continue
			}
			from, to := perm[i], perm[j]
			fromKey, toKey := items[from].Key(), items[to].Key()
			if rng.Intn(2) == 0 {
				items[to].After = append(items[to].After, fromKey)
			} else {
				items[from].Before = append(items[from].Before, toKey)
			}
			edges = append(edges, toposort.Edge{string(fromKey), string(toKey)})
		}
	}
	return items, edges
}

func TestResolveAgreesWithToposortOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		items, edges := randomDAG(rng, 3+rng.Intn(12))
		if len(edges) > 0 {
			if _, err := toposort.Toposort(edges); err != nil {
				t.Fatalf("round %d: oracle rejected an acyclic graph: %v", round, err)
			}
		}
		for name, resolve := range map[string]func([]Item) ([]int, error){
			"unique": ResolveUnique,
			"shared": ResolveShared,
		} {
			order, err := resolve(items)
			if err != nil {
				t.Fatalf("round %d %s: %v", round, name, err)
			}
			got := keysOf(items, order)
			for _, e := range edges {
				from, to := Label(e[0].(string)), Label(e[1].(string))
				if position(got, from) > position(got, to) {
					t.Fatalf("round %d %s: %s placed after %s in %v", round, name, from, to, got)
				}
			}
		}
	}
}

func TestResolveAgreesWithToposortOnCycles(t *testing.T) {
	items := []Item{
		{Labels: []Label{"a"}, After: []Label{"c"}},
		{Labels: []Label{"b"}, After: []Label{"a"}},
		{Labels: []Label{"c"}, After: []Label{"b"}},
	}
	edges := []toposort.Edge{{"c", "a"}, {"a", "b"}, {"b", "c"}}
	if _, err := toposort.Toposort(edges); err == nil {
		t.Fatalf("oracle accepted a cyclic graph")
	}
	if _, err := ResolveUnique(items); !errors.As(err, new(CycleError)) {
		t.Fatalf("unique: expected CycleError, got %v", err)
	}
	if _, err := ResolveShared(items); !errors.As(err, new(CycleError)) {
		t.Fatalf("shared: expected CycleError, got %v", err)
	}
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	s := NewSet("b", "a", "", "b", "c")
	if diff := cmp.Diff([]Label{"b", "a", "c"}, s.Slice()); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
	other := NewSet("d", "a")
	s.Union(other)
	if s.Len() != 4 || s.At(3) != "d" {
		t.Fatalf("union produced %v", s.Slice())
	}
	clone := s.Clone()
	clone.Add("e")
	if s.Has("e") {
		t.Fatalf("clone shares storage with the original")
	}
}

func TestSetTrimsLabels(t *testing.T) {
	s := NewSet(" a", "a ", "\tb", "  ")
	if diff := cmp.Diff([]Label{"a", "b"}, s.Slice()); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
	if !s.Has(" b ") {
		t.Fatalf("Has must compare trimmed labels")
	}
}

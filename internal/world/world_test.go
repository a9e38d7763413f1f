package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/legion/internal/action"
	"github.com/kingrea/legion/schedule"
)

func resolve(t *testing.T, reg *action.Registry[*World], kind string, cfg action.Config) schedule.Action[*World] {
	t.Helper()
	act, err := reg.Resolve(kind, cfg)
	if err != nil {
		t.Fatalf("resolve %s: %v", kind, err)
	}
	return act
}

func TestBuiltinsMutateWorld(t *testing.T) {
	reg := NewRegistry()
	w := New()
	resolve(t, reg, KindLog, action.Config{"message": "hello"})(w)
	resolve(t, reg, KindTick, nil)(w)
	resolve(t, reg, KindLog, action.Config{action.ControllerKey: "greeter"})(w)
	resolve(t, reg, KindAdd, action.Config{"key": "speed", "amount": 4})(w)
	resolve(t, reg, KindAdd, action.Config{"key": "speed"})(w)
	resolve(t, reg, KindScale, action.Config{"key": "speed", "factor": 0.5})(w)
	resolve(t, reg, KindScale, action.Config{"key": "missing", "factor": 2})(w)

	if diff := cmp.Diff([]string{"[0] hello", "[1] greeter"}, w.Journal); diff != "" {
		t.Fatalf("journal mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]float64{"speed": 2.5}, w.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if w.Tick != 1 {
		t.Fatalf("Tick = %d, want 1", w.Tick)
	}
}

func TestBuiltinsValidateConfig(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve(KindAdd, action.Config{"amount": 1}); err == nil {
		t.Fatalf("expected missing key to fail")
	}
	if _, err := reg.Resolve(KindScale, action.Config{"key": "x", "factor": "big"}); err == nil {
		t.Fatalf("expected non-numeric factor to fail")
	}
	if err := RegisterBuiltins(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if diff := cmp.Diff([]string{KindAdd, KindLog, KindScale, KindTick}, reg.Kinds()); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScheduleDrivesWorld(t *testing.T) {
	reg := NewRegistry()
	b := schedule.New[*World]()
	if err := b.AddController(schedule.NewController("accelerate", resolve(t, reg, KindAdd, action.Config{"key": "v", "amount": 2}))); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.AddControllerSeq(schedule.NewController("advance", resolve(t, reg, KindTick, nil))); err != nil {
		t.Fatalf("seq: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w := New()
	for i := 0; i < 3; i++ {
		s.Execute(w)
	}
	if w.Tick != 3 || w.Values["v"] != 6 {
		t.Fatalf("unexpected world after 3 runs: %+v", w)
	}
}

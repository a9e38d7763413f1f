package world

import (
	"github.com/kingrea/legion/internal/action"
	"github.com/kingrea/legion/schedule"
)

// Built-in action kinds.
const (
	KindLog   = "log"
	KindAdd   = "add"
	KindScale = "scale"
	KindTick  = "tick"
)

// RegisterBuiltins installs the log, add, scale and tick kinds.
func RegisterBuiltins(reg *action.Registry[*World]) error {
	for kind, factory := range map[string]action.Factory[*World]{
		KindLog:   logAction,
		KindAdd:   addAction,
		KindScale: scaleAction,
		KindTick:  tickAction,
	} {
		if err := reg.Register(kind, factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with the built-ins already installed.
func NewRegistry() *action.Registry[*World] {
	reg := action.NewRegistry[*World]()
	if err := RegisterBuiltins(reg); err != nil {
		panic(err)
	}
	return reg
}

func logAction(cfg action.Config) (schedule.Action[*World], error) {
	msg, ok := cfg.String("message")
	if !ok {
		msg, _ = cfg.String(action.ControllerKey)
	}
	return func(w *World) { w.Logf("%s", msg) }, nil
}

func addAction(cfg action.Config) (schedule.Action[*World], error) {
	key, err := cfg.RequireString("key")
	if err != nil {
		return nil, err
	}
	amount, err := cfg.Float("amount", 1)
	if err != nil {
		return nil, err
	}
	return func(w *World) {
		if w.Values == nil {
			w.Values = map[string]float64{}
		}
		w.Values[key] += amount
	}, nil
}

func scaleAction(cfg action.Config) (schedule.Action[*World], error) {
	key, err := cfg.RequireString("key")
	if err != nil {
		return nil, err
	}
	factor, err := cfg.Float("factor", 1)
	if err != nil {
		return nil, err
	}
	return func(w *World) {
		if w.Values == nil {
			return
		}
		if v, ok := w.Values[key]; ok {
			w.Values[key] = v * factor
		}
	}, nil
}

func tickAction(action.Config) (schedule.Action[*World], error) {
	return func(w *World) { w.Tick++ }, nil
}

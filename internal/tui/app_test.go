package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/legion/internal/logbook"
	"github.com/kingrea/legion/internal/snapshot"
	"github.com/kingrea/legion/schedule"
)

func noop(*int) {}

func samplePlan(t *testing.T) schedule.Plan {
	t.Helper()
	b := schedule.New[*int]()
	steps := []error{
		b.AddStageAfter("Physics", b.DefaultStage()),
		b.AddController(schedule.NewController[*int]("input", noop)),
		b.AddControllerToStage("Physics", schedule.NewController[*int]("gravity", noop).WithLabel("forces")),
		b.AddControllerToStage("Physics", schedule.NewController[*int]("integrate", noop).After("forces")),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s.Plan()
}

func key(k string) tea.KeyMsg {
	switch k {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func send(t *testing.T, app *App, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		model, next := app.Update(msg)
		if model != app {
			t.Fatalf("Update must return the same app")
		}
		cmd = next
	}
	return cmd
}

func TestNavigateStagesAndControllers(t *testing.T) {
	app := NewApp(samplePlan(t))
	send(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})

	if got := app.selectedStage().Label; got != schedule.DefaultStage {
		t.Fatalf("initial stage = %s", got)
	}
	send(t, app, key("down"))
	if got := app.selectedStage().Label; got != "Physics" {
		t.Fatalf("stage after down = %s, want Physics", got)
	}

	send(t, app, key("enter"), key("down"))
	if app.focus != paneControllers || app.controller != 1 {
		t.Fatalf("expected controller 1 focused, got focus=%d controller=%d", app.focus, app.controller)
	}
	send(t, app, key("down"))
	if app.controller != 1 {
		t.Fatalf("controller selection must clamp, got %d", app.controller)
	}
	view := app.View()
	for _, want := range []string{"gravity", "integrate", "after forces"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	send(t, app, key("esc"), key("up"))
	if app.focus != paneStages || app.selectedStage().Label != schedule.DefaultStage {
		t.Fatalf("expected stage focus on default stage, got focus=%d stage=%s", app.focus, app.selectedStage().Label)
	}
	if app.controller != 0 {
		t.Fatalf("changing stage must reset controller selection, got %d", app.controller)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		app := NewApp(samplePlan(t))
		msg := key(k)
		if k == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		cmd := send(t, app, msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestViewShowsLogAndDrift(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "legion.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	lb.Warn("plan drifted")
	drift := snapshot.Drift{Stages: []snapshot.Move{{Stage: schedule.DefaultStage, From: 1, To: 0}}}
	app := NewApp(samplePlan(t), WithLogbook(lb), WithDrift(drift))
	view := app.View()
	for _, want := range []string{"plan drifted", "LOG · legion.log", "moved", "2 stages · 3 controllers"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestEmptyPlan(t *testing.T) {
	app := NewApp(schedule.Plan{})
	send(t, app, key("enter"), key("down"))
	if app.focus != paneStages {
		t.Fatalf("empty plan must keep stage focus")
	}
	if !strings.Contains(app.View(), "No stages resolved.") {
		t.Fatalf("expected empty-plan notice")
	}
}

func TestRenderPlan(t *testing.T) {
	out := RenderPlan(samplePlan(t))
	for _, want := range []string{"Stage 0: DefaultStage", "Stage 1: Physics", "1. input", "2. integrate", "after forces", "labels forces"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered plan missing %q:\n%s", want, out)
		}
	}
}

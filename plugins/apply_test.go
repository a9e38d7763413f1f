package plugins

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/legion/internal/action"
	"github.com/kingrea/legion/internal/config"
	"github.com/kingrea/legion/label"
	"github.com/kingrea/legion/schedule"
)

type trail struct {
	steps []string
}

func trailRegistry(t *testing.T) *action.Registry[*trail] {
	t.Helper()
	reg := action.NewRegistry[*trail]()
	step := func(cfg action.Config) (schedule.Action[*trail], error) {
		name, _ := cfg.String(action.ControllerKey)
		return func(tr *trail) { tr.steps = append(tr.steps, name) }, nil
	}
	for _, kind := range []string{"log", "add", "tick"} {
		reg.MustRegister(kind, step)
	}
	return reg
}

func parse(t *testing.T, path, payload string) DefinitionFile {
	t.Helper()
	def, err := ParseDefinitionYAML([]byte(payload))
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return DefinitionFile{Definition: def, Path: path}
}

func TestApplyBuildsSchedule(t *testing.T) {
	files := []DefinitionFile{
		parse(t, "a.yaml", sampleDefinition),
		parse(t, "b.yaml", `controllers:
  - name: render
    stage: Input
    action: {kind: log}
    after: [late]
  - name: late-input
    stage: Input
    labels: [late]
    action: {kind: log}
    after: [input]
`),
	}
	b := schedule.New[*trail]()
	if err := Apply(b, files, trailRegistry(t)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// The default stage was registered before Input and Physics.
	wantStages := []label.Label{schedule.DefaultStage, "Input", "Physics"}
	if diff := cmp.Diff(wantStages, s.Plan().StageOrder()); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
	tr := &trail{}
	s.Execute(tr)
	want := []string{"read-keys", "read-mouse", "late-input", "render", "gravity", "integrate"}
	if diff := cmp.Diff(want, tr.steps); diff != "" {
		t.Fatalf("execution mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyReportsBuilderErrors(t *testing.T) {
	files := []DefinitionFile{
		parse(t, "a.yaml", "stages:\n  - label: Input\n"),
		parse(t, "b.yaml", "stages:\n  - label: Input\n"),
	}
	b := schedule.New[*trail]()
	err := Apply(b, files, trailRegistry(t))
	var dup schedule.DuplicateStageError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateStageError, got %v", err)
	}
	if !strings.Contains(err.Error(), "b.yaml") || !strings.Contains(err.Error(), "stages[0]") {
		t.Fatalf("error should locate the definition: %v", err)
	}
}

func TestApplyReportsUnknownAction(t *testing.T) {
	files := []DefinitionFile{parse(t, "a.yaml", "controllers:\n  - name: x\n    action: {kind: teleport}\n")}
	err := Apply(schedule.New[*trail](), files, trailRegistry(t))
	if !errors.Is(err, action.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestApplyRequiresCollaborators(t *testing.T) {
	if err := Apply[*trail](nil, nil, trailRegistry(t)); err == nil {
		t.Fatalf("expected nil builder to fail")
	}
	if err := Apply[*trail](schedule.New[*trail](), nil, nil); err == nil {
		t.Fatalf("expected nil resolver to fail")
	}
}

func TestDiscoverUsesConfiguredDir(t *testing.T) {
	root := t.TempDir()
	if err := config.InitLegionDir(root); err != nil {
		t.Fatalf("init legion: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	dir := cfg.SchedulesPath()
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("stages:\n  - label: Late\n"), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte(goScheduleSource), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	defs, err := Discover(cfg)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	var paths []string
	for _, d := range defs {
		paths = append(paths, filepath.Base(d.Path))
	}
	if diff := cmp.Diff([]string{"a.go#1", "a.go#2", "b.yaml"}, paths); diff != "" {
		t.Fatalf("discovery order mismatch (-want +got):\n%s", diff)
	}
	if defs, err := Discover(nil); err != nil || defs != nil {
		t.Fatalf("nil config should discover nothing, got %v, %v", defs, err)
	}
}

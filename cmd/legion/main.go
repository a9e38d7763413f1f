package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/legion/internal/config"
	"github.com/kingrea/legion/internal/logbook"
	"github.com/kingrea/legion/internal/snapshot"
	"github.com/kingrea/legion/internal/tui"
	"github.com/kingrea/legion/internal/world"
	"github.com/kingrea/legion/label"
	"github.com/kingrea/legion/plugins"
	"github.com/kingrea/legion/schedule"
)

const usage = `usage: legion <command> [flags]

commands:
  init      create .legion/ in the project
  plan      build the schedule and print the resolved order
  graph     export the resolved order as DOT or Mermaid
  run       execute the schedule against a fresh world
  inspect   browse the resolved order interactively
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "init":
		runInit(args)
	case "plan":
		runPlan(args)
	case "graph":
		runGraph(args)
	case "run":
		runRun(args)
	case "inspect":
		runInspect(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	return fs, projectDir
}

func runInit(args []string) {
	fs, projectDir := newFlagSet("init")
	defaultStage := fs.String("default-stage", "", "override the default stage label")
	_ = fs.Parse(args)

	project := resolveProject(*projectDir)
	if err := config.InitLegionDir(project); err != nil {
		die("init .legion: %v", err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		die("load config: %v", err)
	}
	if strings.TrimSpace(*defaultStage) != "" {
		if err := cfg.SetDefaultStage(*defaultStage); err != nil {
			die("set default stage: %v", err)
		}
	}
	fmt.Printf("Initialized %s (default stage %s)\n", cfg.LegionProjectDir, cfg.DefaultStage())
	fmt.Printf("Add schedule definitions under %s\n", cfg.SchedulesPath())
}

func runPlan(args []string) {
	fs, projectDir := newFlagSet("plan")
	check := fs.Bool("check", false, "exit non-zero when the plan differs from the saved snapshot")
	save := fs.Bool("save", false, "save the resolved plan as the new snapshot")
	_ = fs.Parse(args)

	cfg := loadConfig(*projectDir)
	b := mustBuild(cfg)
	plan := b.schedule.Plan()
	fmt.Print(tui.RenderPlan(plan))

	store := snapshot.NewFileStore(cfg.SnapshotPath())
	if *check {
		prev, err := store.Load()
		if err != nil {
			if errors.Is(err, snapshot.ErrSnapshotNotFound) {
				die("no saved plan at %s; run legion plan --save first", store.Path())
			}
			die("load snapshot: %v", err)
		}
		drift := snapshot.Compare(prev.Plan, plan)
		if !drift.Empty() {
			for _, line := range drift.Lines() {
				fmt.Fprintln(os.Stderr, line)
			}
			b.log.Warn("plan drifted from %s", store.Path())
			os.Exit(1)
		}
		fmt.Println("Plan matches the saved snapshot.")
	}
	if *save {
		if err := store.Save(snapshot.New(plan, b.sources)); err != nil {
			die("save snapshot: %v", err)
		}
		b.log.Info("saved plan to %s", store.Path())
		fmt.Printf("Saved plan to %s\n", store.Path())
	}
}

func runGraph(args []string) {
	fs, projectDir := newFlagSet("graph")
	format := fs.String("format", "dot", "output format: dot or mermaid")
	_ = fs.Parse(args)

	cfg := loadConfig(*projectDir)
	plan := mustBuild(cfg).schedule.Plan()
	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "dot":
		fmt.Print(plan.DOT())
	case "mermaid":
		fmt.Print(plan.Mermaid())
	default:
		die("unknown graph format %q (want dot or mermaid)", *format)
	}
}

func runRun(args []string) {
	fs, projectDir := newFlagSet("run")
	ticks := fs.Int("ticks", 1, "number of times to execute the schedule")
	_ = fs.Parse(args)
	if *ticks < 1 {
		die("--ticks must be >= 1")
	}

	cfg := loadConfig(*projectDir)
	b := mustBuild(cfg)
	w := world.New()
	for i := 0; i < *ticks; i++ {
		b.schedule.Execute(w)
	}
	b.log.Info("ran %d controllers for %d ticks", b.schedule.Len(), *ticks)

	for _, line := range w.Journal {
		fmt.Println(line)
	}
	if keys := w.Keys(); len(keys) > 0 {
		fmt.Println()
		for _, k := range keys {
			fmt.Printf("%s = %g\n", k, w.Values[k])
		}
	}
}

func runInspect(args []string) {
	fs, projectDir := newFlagSet("inspect")
	_ = fs.Parse(args)

	cfg := loadConfig(*projectDir)
	b := mustBuild(cfg)
	plan := b.schedule.Plan()

	opts := []tui.AppOption{tui.WithLogbook(b.log)}
	if prev, err := snapshot.NewFileStore(cfg.SnapshotPath()).Load(); err == nil {
		opts = append(opts, tui.WithDrift(snapshot.Compare(prev.Plan, plan)))
	} else if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		b.log.Warn("load snapshot: %v", err)
	}
	if err := tui.Run(tui.NewApp(plan, opts...)); err != nil {
		die("inspector: %v", err)
	}
}

type built struct {
	schedule *schedule.Schedule[*world.World]
	sources  []string
	log      *logbook.Logbook
}

// mustBuild loads every definition under the schedules directory and builds
// the schedule, tracing to the logbook when enabled.
func mustBuild(cfg *config.Config) built {
	book, err := logbook.New(cfg.LogFilePath())
	if err != nil {
		die("open log: %v", err)
	}
	files, err := plugins.Discover(cfg)
	if err != nil {
		book.Error("load definitions: %v", err)
		die("load definitions: %v", err)
	}
	if len(files) == 0 {
		book.Warn("no schedule definitions under %s", cfg.SchedulesPath())
	}

	opts := []schedule.Option{schedule.WithDefaultStage(label.Label(cfg.DefaultStage()))}
	if cfg.TraceEnabled() {
		opts = append(opts, schedule.WithLogger(book))
	}
	b := schedule.New[*world.World](opts...)
	if err := plugins.Apply(b, files, world.NewRegistry()); err != nil {
		book.Error("apply definitions: %v", err)
		die("apply definitions: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		book.Error("build: %v", err)
		die("build: %v", err)
	}

	sources := make([]string, len(files))
	for i, f := range files {
		sources[i] = relativeTo(cfg.ProjectDir, f.Path)
	}
	return built{schedule: s, sources: sources, log: book}
}

func loadConfig(projectDir string) *config.Config {
	cfg, err := config.NewConfig(resolveProject(projectDir))
	if err != nil {
		die("load config: %v", err)
	}
	return cfg
}

func resolveProject(projectDir string) string {
	project := projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	return abs
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

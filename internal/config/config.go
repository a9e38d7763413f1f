// internal/config/config.go
//
// This package handles configuration and the .legion directory structure.
// Every project that declares schedules gets a .legion/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LegionDir is the name of the directory created in each project.
	LegionDir = ".legion"

	defaultStageLabel = "DefaultStage"
)

var (
	defaultSchedulesDir = filepath.Join(LegionDir, "schedules")
	defaultLogFile      = filepath.Join(LegionDir, "logs", "legion.log")
	defaultSnapshotPath = filepath.Join(LegionDir, "state", "plan.json")
)

const defaultProjectConfigYAML = `# legion project configuration
version: 1

schedules:
  # Directory holding *.yaml and *.go schedule definitions, relative to the project.
  dir: .legion/schedules
  # Stage that controllers without an explicit stage are registered into.
  default_stage: DefaultStage

trace:
  # Write the resolved stage/controller order to the log file on every build.
  enabled: true
  log_file: .legion/logs/legion.log

snapshot:
  # Where "legion plan --save" stores the resolved plan for drift checks.
  path: .legion/state/plan.json
`

// SchedulesConfig locates schedule definitions.
type SchedulesConfig struct {
	Dir          string `yaml:"dir"`
	DefaultStage string `yaml:"default_stage"`
}

// TraceConfig controls the build trace.
type TraceConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	LogFile string `yaml:"log_file"`
}

// SnapshotConfig locates the saved plan.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// ProjectConfig models .legion/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Schedules SchedulesConfig `yaml:"schedules"`
	Trace     TraceConfig     `yaml:"trace"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory legion was run from.
	ProjectDir string

	// LegionProjectDir is ProjectDir/.legion
	LegionProjectDir string

	Project ProjectConfig
}

// InitLegionDir creates the .legion directory structure in projectDir and
// writes a default config.yaml if none exists.
//
// Structure created:
// .legion/
// ├── schedules/   <- YAML and Go schedule definitions
// ├── logs/        <- build traces
// └── state/       <- saved plans
func InitLegionDir(projectDir string) error {
	legionDir := filepath.Join(projectDir, LegionDir)
	dirs := []string{
		filepath.Join(legionDir, "schedules"),
		filepath.Join(legionDir, "logs"),
		filepath.Join(legionDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(legionDir, "config.yaml"))
}

// NewConfig returns the configuration of projectDir. A missing config.yaml
// yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir:       abs,
		LegionProjectDir: filepath.Join(abs, LegionDir),
		Project:          defaultProjectConfig(),
	}
	cfg.Project.normalize(abs)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location of config.yaml.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LegionProjectDir, "config.yaml")
}

// SchedulesPath returns the absolute definition directory.
func (c *Config) SchedulesPath() string {
	return c.Project.Schedules.Dir
}

// DefaultStage returns the configured default stage label.
func (c *Config) DefaultStage() string {
	return c.Project.Schedules.DefaultStage
}

// TraceEnabled reports whether builds should write their trace.
func (c *Config) TraceEnabled() bool {
	return c.Project.Trace.Enabled == nil || *c.Project.Trace.Enabled
}

// LogFilePath returns the absolute trace log path.
func (c *Config) LogFilePath() string {
	return c.Project.Trace.LogFile
}

// SnapshotPath returns the absolute saved-plan path.
func (c *Config) SnapshotPath() string {
	return c.Project.Snapshot.Path
}

// SetDefaultStage updates the default stage and persists config.yaml.
func (c *Config) SetDefaultStage(stage string) error {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return fmt.Errorf("config: default stage is required")
	}
	c.Project.Schedules.DefaultStage = stage
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Schedules.Dir) == "" {
		pc.Schedules.Dir = defaultSchedulesDir
	}
	if strings.TrimSpace(pc.Schedules.DefaultStage) == "" {
		pc.Schedules.DefaultStage = defaultStageLabel
	}
	if pc.Trace.Enabled == nil {
		enabled := true
		pc.Trace.Enabled = &enabled
	}
	if strings.TrimSpace(pc.Trace.LogFile) == "" {
		pc.Trace.LogFile = defaultLogFile
	}
	if strings.TrimSpace(pc.Snapshot.Path) == "" {
		pc.Snapshot.Path = defaultSnapshotPath
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Schedules.Dir = resolvePath(base, pc.Schedules.Dir)
	pc.Schedules.DefaultStage = strings.TrimSpace(pc.Schedules.DefaultStage)
	pc.Trace.LogFile = resolvePath(base, pc.Trace.LogFile)
	pc.Snapshot.Path = resolvePath(base, pc.Snapshot.Path)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Schedules.Dir == "" {
		return fmt.Errorf("schedules.dir is required")
	}
	if pc.Schedules.DefaultStage == "" {
		return fmt.Errorf("schedules.default_stage is required")
	}
	if pc.Trace.LogFile == "" {
		return fmt.Errorf("trace.log_file is required")
	}
	if pc.Snapshot.Path == "" {
		return fmt.Errorf("snapshot.path is required")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

// saveProjectConfig writes paths relative to the project so the file stays
// portable.
func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.LegionProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure legion dir: %w", err)
	}
	out := c.Project
	out.Schedules.Dir = relativePath(c.ProjectDir, out.Schedules.Dir)
	out.Trace.LogFile = relativePath(c.ProjectDir, out.Trace.LogFile)
	out.Snapshot.Path = relativePath(c.ProjectDir, out.Snapshot.Path)
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

func relativePath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// internal/tui/app.go
//
// The inspector is a bubbletea program over a resolved schedule plan:
// stages on the left, the selected stage's controllers on the right, and
// the tail of the logbook underneath.
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/legion/internal/logbook"
	"github.com/kingrea/legion/internal/snapshot"
	"github.com/kingrea/legion/schedule"
)

// pane is the part of the screen receiving navigation keys.
type pane int

const (
	paneStages pane = iota
	paneControllers
)

const logTailLines = 6

// AppOption customizes App construction.
type AppOption func(*App)

// WithLogbook shows the tail of lb under the plan.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithDrift highlights stages and controllers that moved since the saved plan.
func WithDrift(d snapshot.Drift) AppOption {
	return func(a *App) {
		a.drift = &d
	}
}

// stageItem implements list.Item for one resolved stage.
type stageItem struct {
	index int
	stage schedule.StagePlan
}

func (i stageItem) Title() string {
	return fmt.Sprintf("%d · %s", i.index, i.stage.Label)
}

func (i stageItem) Description() string {
	n := len(i.stage.Controllers)
	if n == 1 {
		return "1 controller"
	}
	return fmt.Sprintf("%d controllers", n)
}

func (i stageItem) FilterValue() string { return i.stage.Label.String() }

// App is the inspector model.
type App struct {
	plan    schedule.Plan
	stages  list.Model
	logbook *logbook.Logbook
	drift   *snapshot.Drift
	moved   map[string]struct{}

	focus      pane
	controller int
	lastStage  int

	width  int
	height int
}

// NewApp returns an inspector for plan.
func NewApp(plan schedule.Plan, opts ...AppOption) *App {
	items := make([]list.Item, len(plan.Stages))
	for i, sp := range plan.Stages {
		items[i] = stageItem{index: i, stage: sp}
	}
	stages := list.New(items, list.NewDefaultDelegate(), 0, 0)
	stages.Title = "STAGES"
	stages.SetShowStatusBar(false)
	stages.SetFilteringEnabled(false)
	stages.SetShowHelp(false)
	stages.KeyMap.Quit.SetEnabled(false)

	app := &App{
		plan:   plan,
		stages: stages,
		moved:  map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.drift != nil {
		for _, m := range app.drift.Stages {
			app.moved[m.Stage.String()] = struct{}{}
		}
		for _, m := range app.drift.Controllers {
			app.moved[m.Stage.String()+"/"+m.Name.String()] = struct{}{}
		}
	}
	return app
}

// Run starts the inspector on the alternate screen.
func Run(app *App) error {
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update handles window resizes and navigation keys.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.stages.SetSize(max(20, msg.Width/3), max(5, msg.Height-logTailLines-6))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			a.toggleFocus()
			return a, nil
		case "enter", "right", "l":
			if a.focus == paneStages && len(a.selectedStage().Controllers) > 0 {
				a.focus = paneControllers
			}
			return a, nil
		case "esc", "left", "h":
			a.focus = paneStages
			return a, nil
		}
		if a.focus == paneControllers {
			a.moveController(msg.String())
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.stages, cmd = a.stages.Update(msg)
	if idx := a.stages.Index(); idx != a.lastStage {
		a.lastStage = idx
		a.controller = 0
	}
	return a, cmd
}

func (a *App) toggleFocus() {
	if a.focus == paneStages && len(a.selectedStage().Controllers) > 0 {
		a.focus = paneControllers
		return
	}
	a.focus = paneStages
}

func (a *App) moveController(key string) {
	n := len(a.selectedStage().Controllers)
	switch key {
	case "up", "k":
		if a.controller > 0 {
			a.controller--
		}
	case "down", "j":
		if a.controller < n-1 {
			a.controller++
		}
	case "home", "g":
		a.controller = 0
	case "end", "G":
		a.controller = max(0, n-1)
	}
}

func (a *App) selectedStage() schedule.StagePlan {
	idx := a.stages.Index()
	if idx < 0 || idx >= len(a.plan.Stages) {
		return schedule.StagePlan{}
	}
	return a.plan.Stages[idx]
}

// View renders the stage list, the detail panel and the log tail.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	leftWidth := max(20, width/3)
	rightWidth := max(30, width-leftWidth-4)

	left := paneStyle(a.focus == paneStages).Width(leftWidth).Render(a.stages.View())
	right := paneStyle(a.focus == paneControllers).Width(rightWidth).Render(a.renderDetail(rightWidth))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{titleStyle.Render(fmt.Sprintf("legion · %d stages · %d controllers", len(a.plan.Stages), countControllers(a.plan))), body}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	sections = append(sections, hintStyle.Render("↑/↓ move · enter/tab controllers · esc stages · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderDetail(width int) string {
	sp := a.selectedStage()
	if sp.Label == "" {
		return mutedStyle.Render("No stages resolved.")
	}
	lines := []string{stageHeaderStyle.Render(sp.Label.String())}
	if _, ok := a.moved[sp.Label.String()]; ok {
		lines[0] += " " + driftStyle.Render("moved")
	}
	if c := constraintLine(sp.After, sp.Before); c != "" {
		lines = append(lines, mutedStyle.Render(c))
	}
	lines = append(lines, "")
	if len(sp.Controllers) == 0 {
		lines = append(lines, mutedStyle.Render("No controllers."))
		return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
	}
	for i, c := range sp.Controllers {
		marker := "  "
		style := controllerStyle
		if a.focus == paneControllers && i == a.controller {
			marker = "▸ "
			style = selectedStyle
		}
		line := marker + style.Render(fmt.Sprintf("%d. %s", i+1, c.Name))
		if _, ok := a.moved[sp.Label.String()+"/"+c.Name.String()]; ok {
			line += " " + driftStyle.Render("moved")
		}
		lines = append(lines, line)
	}
	if a.focus == paneControllers && a.controller < len(sp.Controllers) {
		c := sp.Controllers[a.controller]
		lines = append(lines, "", stageHeaderStyle.Render(c.Name.String()))
		if len(c.Labels) > 1 {
			lines = append(lines, mutedStyle.Render("labels: "+joinLabels(c.Labels[1:])))
		}
		if con := constraintLine(c.After, c.Before); con != "" {
			lines = append(lines, mutedStyle.Render(con))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries, total := a.logbook.Tail(logTailLines)
	if len(entries) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = levelStyle(e.Level).Render(string(e.Level)) + " " + e.Message
	}
	head := logHeadStyle.Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	return logBoxStyle.Render(head + "\n" + strings.Join(lines, "\n"))
}

func countControllers(p schedule.Plan) int {
	n := 0
	for _, sp := range p.Stages {
		n += len(sp.Controllers)
	}
	return n
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/legion/internal/logbook"
	"github.com/kingrea/legion/label"
	"github.com/kingrea/legion/schedule"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	stageHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	controllerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	driftStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	logHeadStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	logBoxStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444")).
				Padding(0, 1)
)

func paneStyle(focused bool) lipgloss.Style {
	border := lipgloss.Color("#444444")
	if focused {
		border = lipgloss.Color("#5B8DEF")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func levelStyle(level logbook.Level) lipgloss.Style {
	switch level {
	case logbook.LevelWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	case logbook.LevelError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	}
}

func joinLabels(labels []label.Label) string {
	return strings.Join(label.Strings(labels), ", ")
}

func constraintLine(after, before []label.Label) string {
	var parts []string
	if len(after) > 0 {
		parts = append(parts, "after "+joinLabels(after))
	}
	if len(before) > 0 {
		parts = append(parts, "before "+joinLabels(before))
	}
	return strings.Join(parts, " · ")
}

// RenderPlan renders the resolved order for terminal output: one header per
// stage and one numbered line per controller.
func RenderPlan(p schedule.Plan) string {
	var b strings.Builder
	for i, sp := range p.Stages {
		header := stageHeaderStyle.Render(fmt.Sprintf("Stage %d: %s", i, sp.Label))
		if c := constraintLine(sp.After, sp.Before); c != "" {
			header += " " + mutedStyle.Render("("+c+")")
		}
		b.WriteString(header)
		b.WriteByte('\n')
		if len(sp.Controllers) == 0 {
			b.WriteString("  " + mutedStyle.Render("(no controllers)") + "\n")
			continue
		}
		for j, c := range sp.Controllers {
			line := "  " + controllerStyle.Render(fmt.Sprintf("%d. %s", j+1, c.Name))
			var extra []string
			if len(c.Labels) > 1 {
				extra = append(extra, "labels "+joinLabels(c.Labels[1:]))
			}
			if con := constraintLine(c.After, c.Before); con != "" {
				extra = append(extra, con)
			}
			if len(extra) > 0 {
				line += "  " + mutedStyle.Render(strings.Join(extra, " · "))
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Package dashboard is the learner's home: path progress, points, badges
// and the way back into the current step.
package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/badges"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/theme"
)

// DashboardScreen shows progress and the main menu.
type DashboardScreen struct {
	state   session.State
	outline []session.StepView
	menu    components.Menu

	confirmReset bool
}

var _ screen.Screen = (*DashboardScreen)(nil)

// New creates the dashboard for a snapshot and its outline.
func New(st session.State, outline []session.StepView) *DashboardScreen {
	d := &DashboardScreen{state: st, outline: outline}
	d.buildMenu()
	return d
}

func (d *DashboardScreen) buildMenu() {
	resetLabel := "Reset progress"
	if d.confirmReset {
		resetLabel = "Press enter again to erase all progress"
	}
	continueLabel := "Continue learning"
	if d.completed() == 0 {
		continueLabel = "Start learning"
	}

	items := []components.MenuItem{
		{Label: continueLabel, Action: func() tea.Cmd { return screen.Emit(screen.StartMsg{}) }},
		{Label: "Course outline", Action: func() tea.Cmd { return screen.Emit(screen.OpenOutlineMsg{}) }},
		{Label: "Settings", Action: func() tea.Cmd { return screen.Emit(screen.OpenSettingsMsg{}) }},
	}
	if d.state.User != nil && d.state.User.IsAdmin {
		items = append(items, components.MenuItem{
			Label:  "Analytics",
			Action: func() tea.Cmd { return screen.Emit(screen.OpenAdminMsg{}) },
		})
	}
	items = append(items,
		components.MenuItem{Label: resetLabel, Action: d.reset},
		components.MenuItem{Label: "Sign out", Action: func() tea.Cmd { return screen.Emit(screen.LogoutMsg{}) }},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)

	selected := d.menu.Selected
	d.menu = components.NewMenu(items)
	if selected < len(items) {
		d.menu.Selected = selected
	}
}

// reset asks for a second enter before emitting ResetMsg.
func (d *DashboardScreen) reset() tea.Cmd {
	if !d.confirmReset {
		d.confirmReset = true
		return nil
	}
	d.confirmReset = false
	return screen.Emit(screen.ResetMsg{})
}

func (d *DashboardScreen) completed() int {
	n := 0
	for _, s := range d.outline {
		if s.Completed {
			n++
		}
	}
	return n
}

func (d *DashboardScreen) totalMinutes() int {
	n := 0
	for _, s := range d.outline {
		n += s.EstimatedMinutes
	}
	return n
}

func (d *DashboardScreen) Init() tea.Cmd {
	return nil
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		d.state, d.outline = msg.State, msg.Outline
		d.buildMenu()
		return d, nil

	case tea.KeyPressMsg:
		confirming := d.confirmReset
		var cmd tea.Cmd
		d.menu, cmd = d.menu.Update(msg)
		if confirming && msg.String() != "enter" {
			d.confirmReset = false
		}
		if d.confirmReset != confirming {
			d.buildMenu()
		}
		return d, cmd
	}
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	sections := []string{
		d.renderProgress(cw),
		d.renderCurrent(cw),
	}
	if b := d.renderBadges(cw); b != "" {
		sections = append(sections, b)
	}
	sections = append(sections, components.Card("", d.menu.View(), cw))

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (d *DashboardScreen) renderProgress(cw int) string {
	total := len(d.outline)
	done := d.completed()
	bar := components.NewProgressBar(
		fmt.Sprintf("%d/%d steps", done, total),
		components.Ratio(done, total), true, cw-4,
	).View()

	points := 0
	if d.state.Progress != nil {
		points = d.state.Progress.TotalPoints
	}
	stats := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("★ %d points", points)) +
		"   " + theme.Hint.Render(fmt.Sprintf("about %d min in total", d.totalMinutes()))

	return components.Card(d.state.PathName, bar+"\n\n"+stats, cw)
}

func (d *DashboardScreen) renderCurrent(cw int) string {
	s := d.state.Step
	if s == nil {
		return ""
	}
	status := theme.Hint.Render(fmt.Sprintf("%d min · %d points", s.EstimatedMinutes, s.Points))
	if s.Completed {
		status += "  " + theme.Correct.Render("✓ done")
	}
	body := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(s.Emoji+"  "+s.Title) + "\n" + status
	return components.Card(fmt.Sprintf("Step %d of %d", s.Index+1, d.state.PathLength), body, cw)
}

func (d *DashboardScreen) renderBadges(cw int) string {
	if d.state.Progress == nil || len(d.state.Progress.AchievedBadges) == 0 {
		return ""
	}
	set := badges.All()
	lines := make([]string, 0, len(d.state.Progress.AchievedBadges))
	for _, id := range d.state.Progress.AchievedBadges {
		b, ok := badges.Lookup(set, id)
		if !ok {
			continue
		}
		lines = append(lines, b.Icon.Glyph()+"  "+
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(b.Name)+"  "+
			theme.Hint.Render(b.Description))
	}
	if len(lines) == 0 {
		return ""
	}
	return components.Card("Badges", strings.Join(lines, "\n"), cw)
}

func (d *DashboardScreen) Title() string {
	return "Dashboard"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

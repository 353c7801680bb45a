// Package outline is the course outline overlay.
package outline

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/theme"
)

// OutlineScreen lists every step of the path. Completed steps and the
// first incomplete one can be opened; later steps are locked.
type OutlineScreen struct {
	pathName string
	current  int
	steps    []session.StepView
	cursor   int
	notice   string
}

var _ screen.Screen = (*OutlineScreen)(nil)

// New creates the outline with the cursor on the current step.
func New(st session.State, steps []session.StepView) *OutlineScreen {
	o := &OutlineScreen{}
	o.apply(st, steps)
	o.cursor = o.current
	return o
}

func (o *OutlineScreen) apply(st session.State, steps []session.StepView) {
	o.pathName = st.PathName
	o.steps = steps
	if st.Step != nil {
		o.current = st.Step.Index
	}
	if o.cursor >= len(steps) {
		o.cursor = max(0, len(steps)-1)
	}
}

func (o *OutlineScreen) Init() tea.Cmd {
	return nil
}

func (o *OutlineScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		o.apply(msg.State, msg.Outline)
	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if o.cursor > 0 {
				o.cursor--
			}
			o.notice = ""
		case "down", "j":
			if o.cursor < len(o.steps)-1 {
				o.cursor++
			}
			o.notice = ""
		case "enter":
			if o.cursor >= len(o.steps) {
				return o, nil
			}
			if o.steps[o.cursor].Locked {
				o.notice = "Finish the earlier steps to unlock this one."
				return o, nil
			}
			return o, screen.Emit(screen.GotoMsg{Index: o.cursor})
		}
	}
	return o, nil
}

func (o *OutlineScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	lines := make([]string, 0, len(o.steps))
	for i, s := range o.steps {
		mark := "  "
		switch {
		case s.Completed:
			mark = "✓ "
		case s.Locked:
			mark = "🔒"
		}
		label := fmt.Sprintf("%s %d. %s %s", mark, i+1, s.Emoji, s.Title)
		detail := theme.Hint.Render(fmt.Sprintf("%d min", s.EstimatedMinutes))

		var line string
		switch {
		case i == o.cursor:
			line = theme.Selected.Render("▸ " + label)
		case s.Locked:
			line = theme.Locked.Render("  " + label)
		case s.Completed:
			line = theme.Correct.Render("  " + label)
		default:
			line = theme.Unselected.Render("  " + label)
		}
		if i == o.current {
			detail += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Render("you are here")
		}
		lines = append(lines, line+"  "+detail)
	}

	body := strings.Join(lines, "\n")
	if o.notice != "" {
		body += "\n\n" + theme.Incorrect.Render(o.notice)
	}
	card := components.Card(o.pathName, body, cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (o *OutlineScreen) Title() string {
	return "Course Outline"
}

func (o *OutlineScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open step"},
		{Key: "Esc", Description: "Back"},
	}
}

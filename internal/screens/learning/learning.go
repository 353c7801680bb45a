// Package learning is the step screen: the tutor's explanation, the
// challenge, a code editor and the tutor's feedback.
package learning

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/markdown"
	"github.com/abhisek/coacha/internal/ui/theme"
)

const (
	editorHeight   = 6
	feedbackHeight = 8
	minExplainRows = 4
)

// LearningScreen shows one step of the path.
type LearningScreen struct {
	state  session.State
	stepID string
	ready  bool

	editor   components.CodeInput
	spin     spinner.Model
	spinning bool
	md       markdown.Renderer
	scroll   int
}

var _ screen.Screen = (*LearningScreen)(nil)

// New creates the step screen for a snapshot.
func New(st session.State) *LearningScreen {
	l := &LearningScreen{
		spin: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
	l.apply(st)
	return l
}

func (l *LearningScreen) apply(st session.State) {
	l.state = st
	id, placeholder := "", ""
	if st.Step != nil {
		id, placeholder = st.Step.ID, st.Step.Placeholder
	}
	if id != l.stepID || !l.ready {
		l.stepID, l.ready = id, true
		l.editor = components.NewCodeInput(placeholder, 60, editorHeight)
		l.scroll = 0
	}
}

func (l *LearningScreen) loading() bool {
	return l.state.LoadingExplanation || l.state.LoadingFeedback
}

func (l *LearningScreen) startSpinner() tea.Cmd {
	if l.spinning || !l.loading() {
		return nil
	}
	l.spinning = true
	return l.spin.Tick
}

func (l *LearningScreen) Init() tea.Cmd {
	return tea.Batch(l.editor.Init(), l.startSpinner())
}

func (l *LearningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		prev := l.stepID
		l.apply(msg.State)
		var cmds []tea.Cmd
		if l.stepID != prev {
			cmds = append(cmds, l.editor.Init())
		}
		cmds = append(cmds, l.startSpinner())
		return l, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !l.loading() {
			l.spinning = false
			return l, nil
		}
		var cmd tea.Cmd
		l.spin, cmd = l.spin.Update(msg)
		return l, cmd

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+s":
			return l, screen.Emit(screen.SubmitMsg{Code: l.editor.Value()})
		case "ctrl+n":
			return l, screen.Emit(screen.NextMsg{})
		case "ctrl+p":
			return l, screen.Emit(screen.PreviousMsg{})
		case "ctrl+o":
			return l, screen.Emit(screen.OpenOutlineMsg{})
		case "ctrl+r":
			if l.state.LoadingExplanation {
				return l, nil
			}
			return l, screen.Emit(screen.RetryExplainMsg{})
		case "esc":
			return l, screen.Emit(screen.HomeMsg{})
		case "pgdown":
			l.scroll += 5
			return l, nil
		case "pgup":
			l.scroll = max(0, l.scroll-5)
			return l, nil
		}
	}

	var cmd tea.Cmd
	l.editor, cmd = l.editor.Update(msg)
	return l, cmd
}

func (l *LearningScreen) View(width, height int) string {
	step := l.state.Step
	if step == nil {
		return ""
	}
	cw := components.ContentWidth(width)

	title := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%s  %s", step.Emoji, step.Title))
	meta := theme.Hint.Render(fmt.Sprintf("Step %d of %d · %d min · %d points",
		step.Index+1, l.state.PathLength, step.EstimatedMinutes, step.Points))
	if step.Completed {
		meta += "  " + theme.Correct.Render("✓ completed")
	}
	head := title + "\n" + meta

	challenge := components.Card("🎯 Challenge", lipgloss.NewStyle().Foreground(theme.Text).Render(step.Challenge), cw)

	l.editor.SetSize(cw-2, editorHeight)
	editor := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(cw).
		Render(l.editor.View())

	feedback := l.renderFeedback(cw)

	used := lipgloss.Height(head) + lipgloss.Height(challenge) + lipgloss.Height(editor) + lipgloss.Height(feedback) + 4
	rows := max(minExplainRows, height-used-2)
	explain := components.Card("", l.renderExplanation(cw-4, rows), cw)

	sections := []string{head, explain, challenge, editor}
	if feedback != "" {
		sections = append(sections, feedback)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
}

func (l *LearningScreen) style() string {
	if l.state.Progress != nil {
		return markdown.StyleFor(l.state.Progress.Theme)
	}
	return markdown.StyleFor(theme.Current())
}

func (l *LearningScreen) renderExplanation(w, rows int) string {
	if l.state.LoadingExplanation {
		return l.spin.View() + " " + theme.Hint.Render("Your coach is preparing this lesson...")
	}
	text := l.state.Explanation
	if strings.HasPrefix(text, "Failed to load concept:") {
		return theme.Incorrect.Render(text) + "\n\n" + theme.Hint.Render("ctrl+r to try again")
	}
	lines := strings.Split(l.md.Render(text, l.style(), w), "\n")
	if l.scroll > len(lines)-rows {
		l.scroll = max(0, len(lines)-rows)
	}
	end := min(len(lines), l.scroll+rows)
	out := strings.Join(lines[l.scroll:end], "\n")
	if end < len(lines) {
		out += "\n" + theme.Hint.Render(fmt.Sprintf("pgdn for more (%d/%d)", end, len(lines)))
	}
	return out
}

func (l *LearningScreen) renderFeedback(cw int) string {
	switch {
	case l.state.LoadingFeedback:
		return components.Card("Feedback", l.spin.View()+" "+theme.Hint.Render("Your coach is reviewing your answer..."), cw)
	case l.state.Feedback == "":
		return ""
	case strings.HasPrefix(l.state.Feedback, "Failed to get feedback:"):
		return components.Card("Feedback", theme.Incorrect.Render(l.state.Feedback), cw)
	}
	lines := strings.Split(l.md.Render(l.state.Feedback, l.style(), cw-4), "\n")
	if len(lines) > feedbackHeight {
		lines = lines[:feedbackHeight]
	}
	body := strings.Join(lines, "\n")
	if l.state.Step != nil && l.state.Step.Completed && l.state.Step.Index+1 < l.state.PathLength {
		body += "\n\n" + theme.Correct.Render("ctrl+n for the next step")
	}
	return components.Card("Feedback", body, cw)
}

func (l *LearningScreen) Title() string {
	if l.state.Step == nil {
		return "Learning"
	}
	return l.state.PathName
}

func (l *LearningScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Ctrl+N/P", Description: "Next/Prev"},
		{Key: "Ctrl+O", Description: "Outline"},
		{Key: "Ctrl+R", Description: "Retry"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

// Package admin is the analytics view for administrators.
package admin

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/store"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/theme"
)

// Source loads the aggregates. *store.Store satisfies it.
type Source interface {
	LoadAnalytics(ctx context.Context) (*store.Analytics, error)
	LLMUsageSummary(ctx context.Context) ([]store.LLMUsage, error)
}

type loadedMsg struct {
	analytics *store.Analytics
	usage     []store.LLMUsage
	err       error
}

// AdminScreen shows learner and tutor usage aggregates.
type AdminScreen struct {
	ctx     context.Context
	source  Source
	loading bool
	data    loadedMsg
}

var _ screen.Screen = (*AdminScreen)(nil)

// New creates the analytics screen. Data is loaded by Init.
func New(ctx context.Context, source Source) *AdminScreen {
	return &AdminScreen{ctx: ctx, source: source, loading: true}
}

func (a *AdminScreen) load() tea.Cmd {
	a.loading = true
	ctx, src := a.ctx, a.source
	return func() tea.Msg {
		an, err := src.LoadAnalytics(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		usage, err := src.LLMUsageSummary(ctx)
		return loadedMsg{analytics: an, usage: usage, err: err}
	}
}

func (a *AdminScreen) Init() tea.Cmd {
	return a.load()
}

func (a *AdminScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		a.loading = false
		a.data = msg
	case tea.KeyPressMsg:
		switch msg.String() {
		case "r":
			return a, a.load()
		case "esc":
			return a, screen.Emit(screen.HomeMsg{})
		}
	}
	return a, nil
}

func (a *AdminScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var body string
	switch {
	case a.loading:
		body = theme.Hint.Render("Loading analytics...")
	case a.data.err != nil:
		body = theme.Incorrect.Render("Could not load analytics: " + a.data.err.Error())
	default:
		body = strings.Join([]string{
			a.renderTotals(cw),
			a.renderCounts("Personas", a.data.analytics.PersonaDistribution, cw),
			a.renderCounts("Courses", a.data.analytics.CoursePopularity, cw),
			a.renderUsage(cw),
		}, "\n")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (a *AdminScreen) renderTotals(cw int) string {
	an := a.data.analytics
	stat := func(label string, v int) string {
		return lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("%d", v)) +
			" " + theme.Hint.Render(label)
	}
	line := stat("learners", an.TotalUsers) + "    " +
		stat("avg points", an.AvgPoints) + "    " +
		stat("steps completed", an.TotalConceptsCompleted)
	return components.Card("Overview", line, cw)
}

func (a *AdminScreen) renderCounts(title string, counts []store.NamedCount, cw int) string {
	if len(counts) == 0 {
		return components.Card(title, theme.Hint.Render("No data yet"), cw)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		label := fmt.Sprintf("%-22s %3d", c.Name, c.Count)
		lines = append(lines, components.NewProgressBar(label, components.Ratio(c.Count, total), false, cw-4).View())
	}
	return components.Card(title, strings.Join(lines, "\n"), cw)
}

func (a *AdminScreen) renderUsage(cw int) string {
	if len(a.data.usage) == 0 {
		return components.Card("Tutor usage", theme.Hint.Render("No tutor calls recorded"), cw)
	}
	lines := []string{theme.Hint.Render(fmt.Sprintf("%-24s %-10s %6s %6s %9s %9s %7s",
		"model", "purpose", "calls", "failed", "in tok", "out tok", "avg ms"))}
	for _, u := range a.data.usage {
		lines = append(lines, theme.Body.Render(fmt.Sprintf("%-24s %-10s %6d %6d %9d %9d %7d",
			u.Model, u.Purpose, u.Calls, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)))
	}
	return components.Card("Tutor usage", strings.Join(lines, "\n"), cw)
}

func (a *AdminScreen) Title() string {
	return "Analytics"
}

func (a *AdminScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

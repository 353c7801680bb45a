// Package settings is the overlay for the visual and analogy themes.
package settings

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
)

const currentMark = "current"

// SettingsScreen lets the learner change themes.
type SettingsScreen struct {
	cat     *catalog.Catalog
	theme   catalog.Theme
	analogy string
	menu    components.Menu
}

var _ screen.Screen = (*SettingsScreen)(nil)

// New creates the settings overlay for a snapshot.
func New(cat *catalog.Catalog, st session.State) *SettingsScreen {
	s := &SettingsScreen{cat: cat}
	s.apply(st)
	return s
}

func (s *SettingsScreen) apply(st session.State) {
	if st.Progress != nil {
		s.theme, s.analogy = st.Progress.Theme, st.Progress.AnalogyTheme
	}

	items := []components.MenuItem{{Label: "Look and feel", Disabled: true}}
	for _, t := range []catalog.Theme{catalog.ThemePlayful, catalog.ThemeGraceful} {
		items = append(items, components.MenuItem{
			Label:  themeLabel(t),
			Detail: mark(t == s.theme),
			Action: func() tea.Cmd {
				return screen.Emit(screen.SettingsMsg{Settings: session.Settings{Theme: t}})
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Analogies", Disabled: true})
	for _, t := range s.cat.Themes() {
		items = append(items, components.MenuItem{
			Label:  t.Emoji + " " + t.Name,
			Detail: mark(t.Key == s.analogy),
			Action: func() tea.Cmd {
				return screen.Emit(screen.SettingsMsg{Settings: session.Settings{AnalogyTheme: t.Key}})
			},
		})
	}

	selected := s.menu.Selected
	s.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		s.menu.Selected = selected
	}
}

func themeLabel(t catalog.Theme) string {
	switch t {
	case catalog.ThemePlayful:
		return "Playful"
	case catalog.ThemeGraceful:
		return "Graceful"
	default:
		return string(t)
	}
}

func mark(current bool) string {
	if current {
		return currentMark
	}
	return ""
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if st, ok := msg.(screen.StateMsg); ok {
		s.apply(st.State)
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SettingsScreen) View(width, height int) string {
	card := components.Card("Settings", s.menu.View(), components.ContentWidth(width))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Apply"},
		{Key: "Esc", Description: "Back"},
	}
}

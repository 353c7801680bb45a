package components

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/ui/theme"
)

// ToastDuration is how long a toast stays on screen.
const ToastDuration = 3 * time.Second

// ToastExpiredMsg removes the toast with the given id.
type ToastExpiredMsg struct {
	ID int
}

type toast struct {
	id      int
	glyph   string
	message string
}

// Toasts is a stack of short-lived notifications, newest last.
type Toasts struct {
	items  []toast
	nextID int
}

// Push adds a toast and returns the command that expires it.
func (t *Toasts) Push(glyph, message string) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, glyph: glyph, message: message})
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes a toast by id.
func (t *Toasts) Expire(id int) {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Len returns the number of visible toasts.
func (t Toasts) Len() int { return len(t.items) }

// Messages returns the visible toast texts, oldest first.
func (t Toasts) Messages() []string {
	out := make([]string, len(t.items))
	for i, it := range t.items {
		out[i] = it.message
	}
	return out
}

// View renders the toasts as a right-aligned column.
func (t Toasts) View(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().
		Foreground(theme.BgDark).
		Background(theme.Accent).
		Bold(true).
		Padding(0, 2)
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		lines = append(lines, style.Render(it.glyph+"  "+it.message))
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		Render(strings.Join(lines, "\n"))
}

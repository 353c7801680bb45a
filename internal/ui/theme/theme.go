package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/catalog"
)

// Palette is a set of colors for one visual theme.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgDark    color.Color
	BgCard    color.Color
	Border    color.Color
}

// Playful is bright and bold, for younger learners.
var Playful = Palette{
	Primary:   lipgloss.Color("#8B5CF6"), // Vivid Purple
	Secondary: lipgloss.Color("#14B8A6"), // Teal
	Accent:    lipgloss.Color("#FACC15"), // Yellow
	Success:   lipgloss.Color("#22C55E"),
	Error:     lipgloss.Color("#F43F5E"),
	Text:      lipgloss.Color("#F8FAFC"),
	TextDim:   lipgloss.Color("#94A3B8"),
	BgDark:    lipgloss.Color("#0F172A"),
	BgCard:    lipgloss.Color("#1E293B"),
	Border:    lipgloss.Color("#334155"),
}

// Graceful is muted, for adults and professionals.
var Graceful = Palette{
	Primary:   lipgloss.Color("#38BDF8"), // Sky
	Secondary: lipgloss.Color("#64748B"), // Slate
	Accent:    lipgloss.Color("#F59E0B"), // Amber
	Success:   lipgloss.Color("#10B981"),
	Error:     lipgloss.Color("#EF4444"),
	Text:      lipgloss.Color("#E2E8F0"),
	TextDim:   lipgloss.Color("#7C8A9E"),
	BgDark:    lipgloss.Color("#111827"),
	BgCard:    lipgloss.Color("#1F2937"),
	Border:    lipgloss.Color("#374151"),
}

// For returns the palette for a visual theme.
func For(t catalog.Theme) Palette {
	switch t {
	case catalog.ThemePlayful:
		return Playful
	case catalog.ThemeGraceful:
		return Graceful
	default:
		return Playful
	}
}

// Active colors. Use switches them; the terminal front end renders from a
// single goroutine.
var (
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgDark    color.Color
	BgCard    color.Color
	Border    color.Color
)

// Typography and state styles, rebuilt by Use.
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style

	Card lipgloss.Style

	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Correct    lipgloss.Style
	Incorrect  lipgloss.Style
	Locked     lipgloss.Style
)

var current catalog.Theme

func init() {
	Use(catalog.ThemePlayful)
}

// Current returns the theme last passed to Use.
func Current() catalog.Theme { return current }

// Use makes t the active theme.
func Use(t catalog.Theme) {
	current = t
	p := For(t)
	Primary, Secondary, Accent = p.Primary, p.Secondary, p.Accent
	Success, Error = p.Success, p.Error
	Text, TextDim = p.Text, p.TextDim
	BgDark, BgCard, Border = p.BgDark, p.BgCard, p.Border

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().
		Foreground(TextDim).
		Align(lipgloss.Center)
	Body = lipgloss.NewStyle().
		Foreground(Text)
	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	Unselected = lipgloss.NewStyle().
		Foreground(Text)
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)
	Incorrect = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
	Locked = lipgloss.NewStyle().
		Foreground(TextDim).
		Faint(true)
}

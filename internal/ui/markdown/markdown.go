// Package markdown renders tutor replies for the terminal.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/abhisek/coacha/internal/catalog"
)

// StyleFor returns the glamour style that matches a visual theme.
func StyleFor(t catalog.Theme) string {
	if t == catalog.ThemeGraceful {
		return "dark"
	}
	return "dracula"
}

// Renderer turns markdown into styled terminal text. It rebuilds its
// glamour renderer only when the style or wrap width changes.
type Renderer struct {
	style string
	width int
	tr    *glamour.TermRenderer
}

// Render renders md wrapped at width. If glamour fails the trimmed source
// is returned as-is.
func (r *Renderer) Render(md string, style string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if r.tr == nil || r.style != style || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return strings.TrimSpace(md)
		}
		r.tr, r.style, r.width = tr, style, width
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return strings.TrimSpace(md)
	}
	return strings.Trim(out, "\n")
}

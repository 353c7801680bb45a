package badges

// Icon identifies the artwork for a badge. Front ends map icons to their
// own glyphs; the badge definitions never reference rendering symbols.
type Icon string

const (
	IconSparkles Icon = "sparkles"
	IconBrain    Icon = "brain"
	IconMedal    Icon = "medal"
	IconTrophy   Icon = "trophy"
	IconStar     Icon = "star"
)

// AllIcons returns all icons in display order.
func AllIcons() []Icon {
	return []Icon{IconSparkles, IconBrain, IconMedal, IconTrophy, IconStar}
}

// Glyph returns the terminal glyph for the icon.
func (i Icon) Glyph() string {
	switch i {
	case IconSparkles:
		return "✨"
	case IconBrain:
		return "🧠"
	case IconMedal:
		return "🏅"
	case IconTrophy:
		return "🏆"
	case IconStar:
		return "⭐"
	default:
		return "✦"
	}
}

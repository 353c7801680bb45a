// Package welcome is the sign-in and onboarding screen.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 500 * time.Millisecond
	introDur     = 1500 * time.Millisecond
)

type tickMsg time.Time

type stage int

const (
	stageSignIn stage = iota
	stagePersona
	stageCourse
	stageProfession
	stageAnalogy
)

// WelcomeScreen greets the learner, signs them in and walks them through
// persona, course and analogy choices.
type WelcomeScreen struct {
	cat     *catalog.Catalog
	elapsed time.Duration

	signedIn bool
	name     string
	stage    stage

	persona    catalog.Persona
	course     catalog.CourseMode
	profession components.TextInput
	menu       components.Menu
	notice     string
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the welcome screen for the given snapshot.
func New(cat *catalog.Catalog, st session.State) *WelcomeScreen {
	w := &WelcomeScreen{cat: cat}
	w.apply(st)
	if w.signedIn {
		w.elapsed = introDur
	}
	return w
}

func (w *WelcomeScreen) Title() string {
	if w.stage == stageSignIn {
		return "Welcome"
	}
	return "Getting Started"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) apply(st session.State) {
	signedIn := st.User != nil
	if signedIn == w.signedIn && w.menu.Items != nil {
		return
	}
	w.signedIn = signedIn
	if signedIn {
		w.name = st.User.Name
		w.toPersona()
		return
	}
	w.stage = stageSignIn
	w.menu = components.NewMenu([]components.MenuItem{
		{Label: "Sign in", Action: func() tea.Cmd { return screen.Emit(screen.SignInMsg{}) }},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
}

func (w *WelcomeScreen) toPersona() {
	w.stage = stagePersona
	w.persona, w.course = catalog.PersonaUnset, catalog.CourseUnset
	items := make([]components.MenuItem, 0, len(catalog.AllPersonas()))
	for _, p := range catalog.AllPersonas() {
		items = append(items, components.MenuItem{
			Label:  p.DisplayName(),
			Detail: p.Description(),
			Action: func() tea.Cmd { return w.choosePersona(p) },
		})
	}
	w.menu = components.NewMenu(items)
}

func (w *WelcomeScreen) choosePersona(p catalog.Persona) tea.Cmd {
	w.persona = p
	w.notice = ""
	if p == catalog.PersonaDoctor {
		w.stage = stageProfession
		w.profession = components.NewTextInput("e.g. Cardiologist, Nurse, Pharmacist", 80)
		return w.profession.Init()
	}
	w.stage = stageCourse
	items := make([]components.MenuItem, 0, len(catalog.AllCourseModes()))
	for _, m := range catalog.AllCourseModes() {
		items = append(items, components.MenuItem{
			Label:  m.DisplayName(),
			Detail: catalog.KindFor(p, m).DisplayName(),
			Action: func() tea.Cmd {
				w.course = m
				w.toAnalogy()
				return nil
			},
		})
	}
	w.menu = components.NewMenu(items)
	return nil
}

func (w *WelcomeScreen) toAnalogy() {
	w.stage = stageAnalogy
	def := catalog.DefaultAnalogyTheme(w.persona)
	items := []components.MenuItem{{
		Label:  "Default",
		Detail: "use the " + def + " analogies",
		Action: func() tea.Cmd { return w.finish("") },
	}}
	for _, t := range w.cat.Themes() {
		items = append(items, components.MenuItem{
			Label:  t.Emoji + " " + t.Name,
			Detail: t.Description,
			Action: func() tea.Cmd { return w.finish(t.Key) },
		})
	}
	w.menu = components.NewMenu(items)
}

func (w *WelcomeScreen) finish(analogy string) tea.Cmd {
	o := session.Onboarding{
		Persona:      w.persona,
		Course:       w.course,
		AnalogyTheme: analogy,
	}
	if w.persona == catalog.PersonaDoctor {
		o.Profession = w.profession.Value()
	}
	return screen.Emit(screen.OnboardMsg{Onboarding: o})
}

func (w *WelcomeScreen) back() {
	switch w.stage {
	case stageCourse, stageProfession:
		w.toPersona()
	case stageAnalogy:
		if w.persona == catalog.PersonaDoctor {
			w.stage = stageProfession
			return
		}
		w.choosePersona(w.persona)
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed >= introDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case screen.StateMsg:
		w.apply(msg.State)
		return w, nil

	case tea.KeyPressMsg:
		if w.elapsed < introDur {
			w.elapsed = introDur
			return w, nil
		}
		if msg.String() == "esc" {
			w.back()
			return w, nil
		}
		if w.stage == stageProfession {
			return w.updateProfession(msg)
		}
	}

	var cmd tea.Cmd
	w.menu, cmd = w.menu.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) updateProfession(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		if w.profession.Value() == "" {
			w.notice = "Tell us your profession so we can pick the right analogies."
			return w, nil
		}
		w.notice = ""
		w.course = catalog.CourseSWE
		w.toAnalogy()
		return w, nil
	}
	var cmd tea.Cmd
	w.profession, cmd = w.profession.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) prompt() string {
	switch w.stage {
	case stageSignIn:
		return "Personal coding lessons that speak your language."
	case stagePersona:
		greeting := "Welcome"
		if w.name != "" {
			greeting += ", " + w.name
		}
		return greeting + "! Who are you learning as?"
	case stageCourse:
		return "What would you like to learn?"
	case stageProfession:
		return "What is your medical profession?"
	case stageAnalogy:
		return "Pick a world for your analogies."
	default:
		return ""
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bannerAt {
		sections = append(sections, RenderBanner(width), "")
	}
	if w.elapsed < introDur {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
	}

	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(w.prompt()), "")

	cw := components.ContentWidth(width)
	if w.stage == stageProfession {
		sections = append(sections, components.Card("", w.profession.View(), cw))
	} else {
		sections = append(sections, components.Card("", w.menu.View(), cw))
	}

	if w.notice != "" {
		sections = append(sections, "", theme.Incorrect.Render(w.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Select"}}
	if w.stage != stageProfession {
		hints = append([]layout.KeyHint{{Key: "↑↓", Description: "Navigate"}}, hints...)
	}
	if w.stage > stagePersona {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

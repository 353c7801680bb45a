// Package app is the terminal front end. The root model owns the session
// machine; screens only emit intents.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/router"
	"github.com/abhisek/coacha/internal/screen"
	"github.com/abhisek/coacha/internal/screens/admin"
	"github.com/abhisek/coacha/internal/screens/dashboard"
	"github.com/abhisek/coacha/internal/screens/learning"
	"github.com/abhisek/coacha/internal/screens/outline"
	"github.com/abhisek/coacha/internal/screens/settings"
	"github.com/abhisek/coacha/internal/screens/welcome"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/tutor"
	"github.com/abhisek/coacha/internal/ui/components"
	"github.com/abhisek/coacha/internal/ui/layout"
	"github.com/abhisek/coacha/internal/ui/theme"
)

// Deps wires the front end. Machine must have been created with Identity.
type Deps struct {
	Catalog   *catalog.Catalog
	Machine   *session.Machine
	Identity  identity.Provider
	Tutor     session.Tutor
	Analytics admin.Source
	Logger    *zap.Logger
}

type signedInMsg struct {
	user *identity.User
	err  error
}

type explainDoneMsg struct {
	req  tutor.ExplainRequest
	text string
	err  error
}

type evaluateDoneMsg struct {
	req      tutor.EvaluateRequest
	feedback string
	err      error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx       context.Context
	cat       *catalog.Catalog
	machine   *session.Machine
	ident     identity.Provider
	tutor     session.Tutor
	analytics admin.Source
	logger    *zap.Logger

	router *router.Router
	toasts *components.Toasts
	view   session.View
	width  int
	height int
}

// newAppModel creates the model on the welcome screen.
func newAppModel(ctx context.Context, d Deps) AppModel {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	m := AppModel{
		ctx:       ctx,
		cat:       d.Catalog,
		machine:   d.Machine,
		ident:     d.Identity,
		tutor:     d.Tutor,
		analytics: d.Analytics,
		logger:    d.Logger,
		toasts:    &components.Toasts{},
	}
	st := d.Machine.Snapshot()
	m.view = st.View
	m.router = router.New(m.screenFor(st))
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Base().Init(), m.signIn())
}

func (m AppModel) signIn() tea.Cmd {
	ctx, ident := m.ctx, m.ident
	return func() tea.Msg {
		u, err := ident.SignIn(ctx)
		return signedInMsg{user: u, err: err}
	}
}

func (m AppModel) explain(req tutor.ExplainRequest) tea.Cmd {
	ctx, t := m.ctx, m.tutor
	return func() tea.Msg {
		text, err := t.Explain(ctx, req)
		return explainDoneMsg{req: req, text: text, err: err}
	}
}

func (m AppModel) evaluate(req tutor.EvaluateRequest) tea.Cmd {
	ctx, t := m.ctx, m.tutor
	return func() tea.Msg {
		feedback, err := t.Evaluate(ctx, req)
		return evaluateDoneMsg{req: req, feedback: feedback, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil
	}

	if work, ok := m.handle(msg); ok {
		return m, tea.Batch(work, m.sync())
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// handle applies intents and tutor results to the machine. It returns
// the follow-up work and whether msg was one of its messages.
func (m *AppModel) handle(msg tea.Msg) (tea.Cmd, bool) {
	ctx := m.ctx
	switch msg := msg.(type) {
	case signedInMsg:
		if msg.err != nil {
			return m.fail("sign in", msg.err), true
		}
		return m.fail("sign in", m.machine.IdentityChanged(ctx, msg.user)), true

	case screen.SignInMsg:
		return m.signIn(), true

	case screen.OnboardMsg:
		return m.fail("onboarding", m.machine.CompleteOnboarding(ctx, msg.Onboarding)), true

	case screen.StartMsg:
		req, err := m.machine.StartLearning()
		if err != nil {
			return m.fail("start", err), true
		}
		if req.StepID == "" {
			return nil, true
		}
		return m.explain(req), true

	case screen.NextMsg:
		return m.move("next", m.machine.Next), true

	case screen.PreviousMsg:
		return m.move("previous", m.machine.Previous), true

	case screen.GotoMsg:
		if m.router.Depth() > 1 {
			m.router.Pop()
		}
		return m.move("goto", func(ctx context.Context) (*tutor.ExplainRequest, error) {
			return m.machine.Goto(ctx, msg.Index)
		}), true

	case screen.RetryExplainMsg:
		req, ok := m.machine.BeginExplain()
		if !ok {
			return nil, true
		}
		return m.explain(req), true

	case screen.SubmitMsg:
		req, ok := m.machine.BeginSubmission(msg.Code)
		if !ok {
			if m.machine.Snapshot().LoadingFeedback {
				return nil, true
			}
			return m.toasts.Push("✎", "Write some code before submitting."), true
		}
		return m.evaluate(req), true

	case screen.SettingsMsg:
		return m.fail("settings", m.machine.UpdateSettings(ctx, msg.Settings)), true

	case screen.HomeMsg:
		if m.machine.View() == session.ViewAdmin {
			m.machine.CloseAdmin()
		} else {
			m.machine.GoHome()
		}
		return nil, true

	case screen.OpenOutlineMsg:
		st := m.machine.Snapshot()
		if st.Progress == nil {
			return nil, true
		}
		return m.router.Push(outline.New(st, m.machine.Outline())), true

	case screen.OpenSettingsMsg:
		st := m.machine.Snapshot()
		if st.Progress == nil {
			return nil, true
		}
		return m.router.Push(settings.New(m.cat, st)), true

	case screen.OpenAdminMsg:
		return m.fail("admin", m.machine.OpenAdmin()), true

	case screen.ResetMsg:
		err := m.machine.Reset(ctx)
		if err == nil {
			return m.toasts.Push("↺", "Progress cleared"), true
		}
		return m.fail("reset", err), true

	case screen.LogoutMsg:
		return m.fail("logout", m.machine.Logout(ctx)), true

	case explainDoneMsg:
		m.machine.ResolveExplanation(msg.req, msg.text, msg.err)
		if msg.err != nil {
			m.logger.Warn("explanation failed", zap.String("step", msg.req.StepID), zap.Error(msg.err))
		}
		return nil, true

	case evaluateDoneMsg:
		award, ok := m.machine.ResolveEvaluation(ctx, msg.req, msg.feedback, msg.err)
		if !ok {
			return nil, true
		}
		if msg.err != nil {
			m.logger.Warn("evaluation failed", zap.String("step", msg.req.StepID), zap.Error(msg.err))
			return nil, true
		}
		notes := award.Notifications()
		cmds := make([]tea.Cmd, 0, len(notes))
		for _, n := range notes {
			cmds = append(cmds, m.toasts.Push(n.Icon.Glyph(), n.Message))
		}
		return tea.Batch(cmds...), true
	}
	return nil, false
}

func (m *AppModel) move(op string, fn func(context.Context) (*tutor.ExplainRequest, error)) tea.Cmd {
	req, err := fn(m.ctx)
	if err != nil {
		return m.fail(op, err)
	}
	if req == nil {
		return nil
	}
	return m.explain(*req)
}

// fail shows err as a toast. A nil err is a no-op.
func (m *AppModel) fail(op string, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.logger.Debug("action failed", zap.String("op", op), zap.Error(err))
	text := err.Error()
	if errors.Is(err, session.ErrNotAllowlisted) {
		text = "Access denied: your email is not on the allowlist."
	}
	return m.toasts.Push("⚠", text)
}

// sync re-renders from the machine: it switches the palette, replaces the
// base screen when the view changed and broadcasts the new snapshot.
func (m *AppModel) sync() tea.Cmd {
	st := m.machine.Snapshot()
	if st.Progress != nil && st.Progress.Theme != theme.Current() {
		theme.Use(st.Progress.Theme)
	}

	var cmds []tea.Cmd
	if baseKind(st.View) != baseKind(m.view) {
		cmds = append(cmds, m.router.Reset(m.screenFor(st)))
	}
	m.view = st.View
	cmds = append(cmds, m.router.Update(screen.StateMsg{State: st, Outline: m.machine.Outline()}))
	return tea.Batch(cmds...)
}

// baseKind folds views that share a base screen.
func baseKind(v session.View) session.View {
	if v == session.ViewLoading {
		return session.ViewWelcome
	}
	return v
}

func (m *AppModel) screenFor(st session.State) screen.Screen {
	switch st.View {
	case session.ViewDashboard:
		return dashboard.New(st, m.machine.Outline())
	case session.ViewLearning:
		return learning.New(st)
	case session.ViewAdmin:
		return admin.New(m.ctx, m.analytics)
	default:
		return welcome.New(m.cat, st)
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	st := m.machine.Snapshot()
	var info layout.HeaderInfo
	if st.User != nil {
		info.Name, info.Admin = st.User.Name, st.User.IsAdmin
	}
	if st.Progress != nil {
		info.Points, info.Badges = st.Progress.TotalPoints, len(st.Progress.AchievedBadges)
	}
	header := layout.RenderHeader(title, info, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	toasts := m.toasts.View(m.width)
	if toasts != "" {
		contentHeight -= lipgloss.Height(toasts)
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	if toasts != "" {
		content = toasts + "\n" + content
	}
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, d Deps) error {
	p := tea.NewProgram(newAppModel(ctx, d), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

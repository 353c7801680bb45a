package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coacha/internal/session"
)

// Screens never touch the session machine. They emit these messages and
// the app applies them.

// SignInMsg asks the app to sign the configured learner in.
type SignInMsg struct{}

// OnboardMsg completes onboarding with the learner's choices.
type OnboardMsg struct {
	Onboarding session.Onboarding
}

// StartMsg enters the learning view at the current step.
type StartMsg struct{}

// NextMsg and PreviousMsg move the cursor by one step.
type (
	NextMsg     struct{}
	PreviousMsg struct{}
)

// GotoMsg jumps to a step from the course outline.
type GotoMsg struct {
	Index int
}

// RetryExplainMsg reloads the explanation for the current step.
type RetryExplainMsg struct{}

// SubmitMsg sends code for evaluation.
type SubmitMsg struct {
	Code string
}

// SettingsMsg changes the visual and analogy themes.
type SettingsMsg struct {
	Settings session.Settings
}

// HomeMsg returns to the dashboard.
type HomeMsg struct{}

// OpenOutlineMsg, OpenSettingsMsg and OpenAdminMsg open overlays.
type (
	OpenOutlineMsg  struct{}
	OpenSettingsMsg struct{}
	OpenAdminMsg    struct{}
)

// ResetMsg clears all progress.
type ResetMsg struct{}

// LogoutMsg signs the learner out.
type LogoutMsg struct{}

// Emit wraps a message as a command.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

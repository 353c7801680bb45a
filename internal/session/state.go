package session

import (
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/identity"
)

// StepView is the learner-facing part of a step.
type StepView struct {
	Index            int    `json:"index"`
	ID               string `json:"id"`
	Title            string `json:"title"`
	Emoji            string `json:"emoji"`
	Challenge        string `json:"challenge"`
	Placeholder      string `json:"placeholder"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	Points           int    `json:"points"`
	Completed        bool   `json:"completed"`
	Locked           bool   `json:"locked"`
}

// State is a read-only snapshot of the machine for rendering.
type State struct {
	View               View           `json:"view"`
	User               *identity.User `json:"user,omitempty"`
	Progress           *GameProgress  `json:"progress,omitempty"`
	PathName           string         `json:"pathName,omitempty"`
	PathLength         int            `json:"pathLength"`
	Step               *StepView      `json:"step,omitempty"`
	Explanation        string         `json:"explanation"`
	LoadingExplanation bool           `json:"loadingExplanation"`
	Feedback           string         `json:"feedback"`
	LoadingFeedback    bool           `json:"loadingFeedback"`
	Error              string         `json:"error,omitempty"`
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	s := State{
		View:               m.view,
		Progress:           m.Progress(),
		Explanation:        m.explanation,
		LoadingExplanation: m.loadingExplanation,
		Feedback:           m.feedback,
		LoadingFeedback:    m.loadingFeedback,
		Error:              m.lastErr,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	if path, ok := m.Path(); ok {
		s.PathName = path.Kind.DisplayName()
		s.PathLength = path.Len()
		outline := m.Outline()
		s.Step = &outline[m.progress.CurrentIndex]
	}
	return s
}

// Outline lists every step of the active path with completion and lock
// state. It is empty before onboarding.
func (m *Machine) Outline() []StepView {
	path, ok := m.Path()
	if !ok {
		return nil
	}
	frontier := m.frontier(path)
	out := make([]StepView, path.Len())
	for i, s := range path.Steps {
		out[i] = stepView(i, s)
		out[i].Completed = m.progress.IsCompleted(s.ID)
		out[i].Locked = i > frontier
	}
	return out
}

func stepView(i int, s catalog.LearningStep) StepView {
	return StepView{
		Index:            i,
		ID:               s.ID,
		Title:            s.Title,
		Emoji:            s.Emoji,
		Challenge:        s.ChallengeDescription,
		Placeholder:      s.Placeholder,
		EstimatedMinutes: s.EstimatedMinutes,
		Points:           s.AwardPoints(),
	}
}

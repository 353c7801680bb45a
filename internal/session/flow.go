package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/badges"
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/grading"
	"github.com/abhisek/coacha/internal/tutor"
)

// ErrNothingToSubmit is returned by Submit when BeginSubmission declines.
var ErrNothingToSubmit = errors.New("nothing to submit")

func (m *Machine) profile() tutor.Profile {
	return tutor.Profile{
		Persona:      m.progress.Persona,
		Course:       m.progress.Course,
		Profession:   m.progress.Profession,
		AnalogyTheme: m.progress.AnalogyTheme,
	}
}

// BeginExplain marks the current step's explanation as loading and
// returns the request to send to the tutor. Feedback from the previous
// step is cleared.
func (m *Machine) BeginExplain() (tutor.ExplainRequest, bool) {
	step, ok := m.CurrentStep()
	if !ok {
		return tutor.ExplainRequest{}, false
	}
	m.resetStepState()
	m.lastErr = ""
	m.loadingExplanation = true
	m.explainSeq++
	return tutor.ExplainRequest{StepID: step.ID, Seq: m.explainSeq, Step: step, Profile: m.profile()}, true
}

// current reports whether a response tagged with stepID and seq answers
// the latest request for the step under the cursor.
func (m *Machine) current(stepID string, seq, latest uint64) bool {
	step, ok := m.CurrentStep()
	return ok && step.ID == stepID && seq == latest
}

// ResolveExplanation applies a tutor explanation. Responses for a step
// the learner has left, or for a superseded request, are dropped and
// false is returned.
func (m *Machine) ResolveExplanation(req tutor.ExplainRequest, text string, err error) bool {
	if !m.current(req.StepID, req.Seq, m.explainSeq) {
		m.logger.Debug("dropping stale explanation", zap.String("step", req.StepID), zap.Uint64("seq", req.Seq))
		return false
	}
	m.loadingExplanation = false
	if err != nil {
		m.lastErr = err.Error()
		m.explanation = "Failed to load concept: " + err.Error()
		return true
	}
	m.explanation = text
	return true
}

// BeginSubmission marks feedback as loading and returns the request to
// send to the tutor. It returns false when there is nothing to submit or
// an evaluation is already in flight.
func (m *Machine) BeginSubmission(code string) (tutor.EvaluateRequest, bool) {
	if m.view != ViewLearning || m.loadingFeedback || strings.TrimSpace(code) == "" {
		return tutor.EvaluateRequest{}, false
	}
	step, ok := m.CurrentStep()
	if !ok {
		return tutor.EvaluateRequest{}, false
	}
	m.loadingFeedback = true
	m.lastErr = ""
	m.evalSeq++
	return tutor.EvaluateRequest{StepID: step.ID, Seq: m.evalSeq, Step: step, Profile: m.profile(), Submission: code}, true
}

// Award is what a successful submission earned.
type Award struct {
	Points int            `json:"points"`
	Badges []badges.Badge `json:"-"`
}

// Empty reports whether nothing was earned.
func (a Award) Empty() bool { return a.Points == 0 && len(a.Badges) == 0 }

// Notification is a short message announcing part of an award.
type Notification struct {
	Kind    string      `json:"kind"` // "points" or "badge"
	Message string      `json:"message"`
	Icon    badges.Icon `json:"icon"`
}

// Notifications lists the point gain first, then one entry per badge.
func (a Award) Notifications() []Notification {
	if a.Empty() {
		return nil
	}
	out := make([]Notification, 0, 1+len(a.Badges))
	if a.Points > 0 {
		out = append(out, Notification{Kind: "points", Message: fmt.Sprintf("+%d Points!", a.Points), Icon: badges.IconStar})
	}
	for _, b := range a.Badges {
		out = append(out, Notification{Kind: "badge", Message: "Badge Unlocked: " + b.Name, Icon: b.Icon})
	}
	return out
}

// ResolveEvaluation applies tutor feedback. On success the step is graded
// and any points and badges are added and saved. Stale responses are
// dropped and false is returned.
func (m *Machine) ResolveEvaluation(ctx context.Context, req tutor.EvaluateRequest, feedback string, err error) (Award, bool) {
	if !m.current(req.StepID, req.Seq, m.evalSeq) {
		m.logger.Debug("dropping stale feedback", zap.String("step", req.StepID), zap.Uint64("seq", req.Seq))
		return Award{}, false
	}
	step, _ := m.CurrentStep()
	m.loadingFeedback = false
	if err != nil {
		m.lastErr = err.Error()
		m.feedback = "Failed to get feedback: " + err.Error()
		return Award{}, true
	}
	m.feedback = feedback

	outcome := grading.Grade(step, feedback, m.progress.IsCompleted(step.ID), m.classifier)
	if !outcome.Successful {
		return Award{}, true
	}

	p := m.progress
	p.TotalPoints += outcome.Points
	p.CompletedSteps = append(p.CompletedSteps, step.ID)

	path, _ := m.Path()
	unlocked := badges.Evaluate(m.badgeSet, badges.Context{
		Path:           path,
		CurrentIndex:   p.CurrentIndex,
		CompletedStep:  step,
		TotalPoints:    p.TotalPoints,
		AchievedBadges: p.AchievedBadges,
	})
	p.AchievedBadges = append(p.AchievedBadges, badges.IDs(unlocked)...)

	m.persist(ctx)
	m.record(path.Kind, outcome.Points, unlocked)

	m.logger.Info("step completed",
		zap.String("uid", m.user.UID),
		zap.String("step", step.ID),
		zap.Int("points", outcome.Points),
		zap.Strings("badges", badges.IDs(unlocked)),
	)
	return Award{Points: outcome.Points, Badges: unlocked}, true
}

func (m *Machine) record(kind catalog.PathKind, points int, unlocked []badges.Badge) {
	if m.metrics == nil {
		return
	}
	m.metrics.PointsAwarded.Add(float64(points))
	m.metrics.StepsCompleted.WithLabelValues(string(kind)).Inc()
	for _, b := range unlocked {
		m.metrics.BadgesAwarded.WithLabelValues(b.ID).Inc()
	}
}

// Explain runs the explanation round trip for the current step.
func (m *Machine) Explain(ctx context.Context, t Tutor) error {
	req, ok := m.BeginExplain()
	if !ok {
		return ErrNotOnboarded
	}
	text, err := t.Explain(ctx, req)
	m.ResolveExplanation(req, text, err)
	return err
}

// Submit runs the evaluation round trip for code on the current step.
func (m *Machine) Submit(ctx context.Context, t Tutor, code string) (Award, error) {
	req, ok := m.BeginSubmission(code)
	if !ok {
		return Award{}, ErrNothingToSubmit
	}
	feedback, err := t.Evaluate(ctx, req)
	award, _ := m.ResolveEvaluation(ctx, req, feedback, err)
	return award, err
}

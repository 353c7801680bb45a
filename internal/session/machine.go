// Package session is the progression engine: which view the learner is
// on, where their cursor sits on the path, and how tutor responses turn
// into points and badges.
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
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/metrics"
	"github.com/abhisek/coacha/internal/store"
	"github.com/abhisek/coacha/internal/tutor"
)

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrNotAllowlisted     = errors.New("email is not on the allowlist")
	ErrNotOnboarded       = errors.New("onboarding not completed")
	ErrAlreadyOnboarded   = errors.New("onboarding already completed; reset progress to start over")
	ErrInvalidOnboarding  = errors.New("invalid onboarding choice")
	ErrProfessionRequired = errors.New("medical professionals must enter a profession")
	ErrStepIncomplete     = errors.New("complete the current step first")
	ErrStepOutOfRange     = errors.New("step index out of range")
	ErrStepLocked         = errors.New("step is locked")
	ErrNotAdmin           = errors.New("admin access required")
)

// View is the screen the learner is on.
type View int

const (
	ViewLoading View = iota
	ViewWelcome
	ViewDashboard
	ViewLearning
	ViewAdmin
)

var viewNames = [...]string{"loading", "welcome", "dashboard", "learning", "admin"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return fmt.Sprintf("view(%d)", int(v))
}

func (v View) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *View) UnmarshalText(b []byte) error {
	for i, name := range viewNames {
		if name == string(b) {
			*v = View(i)
			return nil
		}
	}
	return fmt.Errorf("unknown view %q", b)
}

// Store is the persistence the machine needs. *store.Store satisfies it.
type Store interface {
	IsAllowlisted(ctx context.Context, email string) (bool, error)
	EnsureUser(ctx context.Context, u store.User) error
	LoadProgress(ctx context.Context, uid string) (*store.Progress, error)
	SaveProgress(ctx context.Context, uid string, p store.Progress) error
	UpdateSettings(ctx context.Context, uid, theme, analogyTheme string) error
	ClearProgress(ctx context.Context, uid string) error
}

// Tutor produces explanations and feedback. *tutor.Service satisfies it.
type Tutor interface {
	Explain(ctx context.Context, req tutor.ExplainRequest) (string, error)
	Evaluate(ctx context.Context, req tutor.EvaluateRequest) (string, error)
}

// Config wires a Machine to its collaborators. Catalog, Store and
// Identity are required.
type Config struct {
	Catalog    *catalog.Catalog
	Store      Store
	Identity   identity.Provider
	Classifier grading.Classifier
	Badges     []badges.Badge
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Machine holds one learner's session. It is not safe for concurrent use;
// callers serialise access.
type Machine struct {
	cat        *catalog.Catalog
	store      Store
	identity   identity.Provider
	classifier grading.Classifier
	badgeSet   []badges.Badge
	logger     *zap.Logger
	metrics    *metrics.Metrics

	view     View
	user     *identity.User
	progress *GameProgress

	explanation        string
	loadingExplanation bool
	feedback           string
	loadingFeedback    bool
	lastErr            string

	// Sequence numbers of the latest explain and evaluate requests.
	explainSeq uint64
	evalSeq    uint64
}

// New creates a Machine in the loading view.
func New(cfg Config) *Machine {
	if cfg.Classifier == nil {
		cfg.Classifier = grading.NewKeywordClassifier()
	}
	if cfg.Badges == nil {
		cfg.Badges = badges.All()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Machine{
		cat:        cfg.Catalog,
		store:      cfg.Store,
		identity:   cfg.Identity,
		classifier: cfg.Classifier,
		badgeSet:   cfg.Badges,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		view:       ViewLoading,
	}
}

// View returns the current view.
func (m *Machine) View() View { return m.view }

// User returns the signed-in user, or nil.
func (m *Machine) User() *identity.User { return m.user }

// Progress returns a copy of the learner's progress, or nil before onboarding.
func (m *Machine) Progress() *GameProgress {
	if m.progress == nil {
		return nil
	}
	return m.progress.clone()
}

// Path returns the active learning path.
func (m *Machine) Path() (catalog.LearningPath, bool) {
	if m.progress == nil {
		return catalog.LearningPath{}, false
	}
	return m.cat.Path(m.progress.Persona, m.progress.Course), true
}

// CurrentStep returns the step under the cursor.
func (m *Machine) CurrentStep() (catalog.LearningStep, bool) {
	if m.progress == nil {
		return catalog.LearningStep{}, false
	}
	return m.cat.Step(m.progress.Persona, m.progress.Course, m.progress.CurrentIndex)
}

func (m *Machine) clear() {
	m.user = nil
	m.progress = nil
	m.resetStepState()
	m.lastErr = ""
}

func (m *Machine) resetStepState() {
	m.explanation = ""
	m.loadingExplanation = false
	m.feedback = ""
	m.loadingFeedback = false
}

// IdentityChanged reacts to sign-in and sign-out. Users who are not on
// the allowlist, or whose allowlist check fails, are signed out again.
func (m *Machine) IdentityChanged(ctx context.Context, u *identity.User) error {
	m.clear()
	if u == nil {
		m.view = ViewWelcome
		return nil
	}

	log := m.logger.With(zap.String("uid", u.UID))
	ok, err := m.store.IsAllowlisted(ctx, u.Email)
	if err != nil || !ok {
		if err != nil {
			log.Error("allowlist check failed, signing out", zap.Error(err))
		} else {
			log.Warn("sign-in rejected: not allowlisted", zap.String("email", u.Email))
		}
		if signOutErr := m.identity.SignOut(ctx); signOutErr != nil {
			log.Warn("sign out", zap.Error(signOutErr))
		}
		m.clear()
		m.view = ViewWelcome
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotAllowlisted, err)
		}
		return ErrNotAllowlisted
	}

	if err := m.store.EnsureUser(ctx, store.User{UID: u.UID, Email: u.Email, Name: u.Name}); err != nil {
		log.Warn("ensure user record", zap.Error(err))
	}

	user := *u
	m.user = &user

	sp, err := m.store.LoadProgress(ctx, u.UID)
	if err != nil {
		log.Error("load progress", zap.Error(err))
		m.lastErr = err.Error()
	}
	if sp != nil {
		if p, ok := fromStore(sp, m.cat); ok {
			m.progress = p
			m.view = ViewDashboard
			return nil
		}
		log.Warn("stored progress is incomplete, restarting onboarding")
	}
	m.view = ViewWelcome
	return nil
}

// Onboarding holds the choices made on the welcome screen.
type Onboarding struct {
	Persona      catalog.Persona
	Course       catalog.CourseMode
	Profession   string
	AnalogyTheme string
}

// CompleteOnboarding creates fresh progress from the learner's choices.
// Medical professionals always take the concepts course. Learners who
// already have progress get ErrAlreadyOnboarded; Reset comes first.
func (m *Machine) CompleteOnboarding(ctx context.Context, o Onboarding) error {
	if m.user == nil {
		return ErrNotSignedIn
	}
	if err := m.ensureNotOnboarded(ctx); err != nil {
		return err
	}

	p := &GameProgress{
		Persona:        o.Persona,
		Course:         o.Course,
		CompletedSteps: []string{},
		AchievedBadges: []string{},
	}
	switch o.Persona {
	case catalog.PersonaDoctor:
		p.Course = catalog.CourseSWE
		p.Profession = strings.TrimSpace(o.Profession)
		if p.Profession == "" {
			return ErrProfessionRequired
		}
	case catalog.PersonaKid, catalog.PersonaAdult:
		if p.Course == catalog.CourseUnset {
			return fmt.Errorf("%w: course is required", ErrInvalidOnboarding)
		}
	case catalog.PersonaUnset:
		return fmt.Errorf("%w: persona is required", ErrInvalidOnboarding)
	default:
		return fmt.Errorf("%w: persona %q", ErrInvalidOnboarding, o.Persona)
	}

	analogy, err := m.resolveAnalogyKey(o.AnalogyTheme, p.Persona)
	if err != nil {
		return err
	}
	p.AnalogyTheme = analogy
	p.Theme = catalog.DefaultTheme(p.Persona)

	m.progress = p
	m.resetStepState()
	m.view = ViewDashboard
	m.persist(ctx)
	return nil
}

// ensureNotOnboarded refuses a second onboarding. Memory is checked first,
// then the store, since a failed load at sign-in leaves memory empty while
// a record still exists. A stored record found here is restored.
func (m *Machine) ensureNotOnboarded(ctx context.Context) error {
	if m.progress != nil {
		return ErrAlreadyOnboarded
	}
	sp, err := m.store.LoadProgress(ctx, m.user.UID)
	if err != nil {
		return fmt.Errorf("check existing progress: %w", err)
	}
	if sp == nil {
		return nil
	}
	p, ok := fromStore(sp, m.cat)
	if !ok {
		return nil
	}
	m.progress = p
	m.lastErr = ""
	m.resetStepState()
	m.view = ViewDashboard
	return ErrAlreadyOnboarded
}

func (m *Machine) resolveAnalogyKey(key string, p catalog.Persona) (string, error) {
	if strings.TrimSpace(key) == "" {
		return catalog.DefaultAnalogyTheme(p), nil
	}
	t, ok := m.cat.Theme(key)
	if !ok {
		return "", fmt.Errorf("%w: analogy theme %q", ErrInvalidOnboarding, key)
	}
	return t.Key, nil
}

// StartLearning moves from the dashboard to the current step.
func (m *Machine) StartLearning() (tutor.ExplainRequest, error) {
	if m.progress == nil {
		return tutor.ExplainRequest{}, ErrNotOnboarded
	}
	m.view = ViewLearning
	req, _ := m.BeginExplain()
	return req, nil
}

// Next advances the cursor once the current step is completed. At the
// last step it does nothing and returns a nil request.
func (m *Machine) Next(ctx context.Context) (*tutor.ExplainRequest, error) {
	if m.progress == nil {
		return nil, ErrNotOnboarded
	}
	path, _ := m.Path()
	if path.IsLast(m.progress.CurrentIndex) {
		return nil, nil
	}
	step, _ := path.Step(m.progress.CurrentIndex)
	if !m.progress.IsCompleted(step.ID) {
		return nil, ErrStepIncomplete
	}
	return m.moveTo(ctx, m.progress.CurrentIndex+1), nil
}

// Previous moves the cursor back one step. At the first step it does
// nothing and returns a nil request.
func (m *Machine) Previous(ctx context.Context) (*tutor.ExplainRequest, error) {
	if m.progress == nil {
		return nil, ErrNotOnboarded
	}
	if m.progress.CurrentIndex == 0 {
		return nil, nil
	}
	return m.moveTo(ctx, m.progress.CurrentIndex-1), nil
}

// Goto jumps to step i from the course outline and enters learning. Steps
// past the first incomplete one are locked.
func (m *Machine) Goto(ctx context.Context, i int) (*tutor.ExplainRequest, error) {
	if m.progress == nil {
		return nil, ErrNotOnboarded
	}
	path, _ := m.Path()
	if i < 0 || i >= path.Len() {
		return nil, fmt.Errorf("%w: %d", ErrStepOutOfRange, i)
	}
	if i > m.frontier(path) {
		return nil, fmt.Errorf("%w: %d", ErrStepLocked, i)
	}
	m.view = ViewLearning
	return m.moveTo(ctx, i), nil
}

// frontier is the furthest index the learner may visit: the first
// incomplete step, or the last step once everything is done.
func (m *Machine) frontier(path catalog.LearningPath) int {
	for i, s := range path.Steps {
		if !m.progress.IsCompleted(s.ID) {
			return i
		}
	}
	return path.Len() - 1
}

func (m *Machine) moveTo(ctx context.Context, i int) *tutor.ExplainRequest {
	m.progress.CurrentIndex = i
	m.persist(ctx)
	if m.view != ViewLearning {
		return nil
	}
	req, ok := m.BeginExplain()
	if !ok {
		return nil
	}
	return &req
}

// OpenAdmin shows the analytics view to admins.
func (m *Machine) OpenAdmin() error {
	if m.user == nil || !m.user.IsAdmin {
		return ErrNotAdmin
	}
	m.view = ViewAdmin
	return nil
}

// CloseAdmin leaves the analytics view.
func (m *Machine) CloseAdmin() {
	if m.view != ViewAdmin {
		return
	}
	m.GoHome()
}

// GoHome returns to the dashboard, or to onboarding if there is no progress.
func (m *Machine) GoHome() {
	switch {
	case m.user == nil:
		m.view = ViewWelcome
	case m.progress == nil:
		m.view = ViewWelcome
	default:
		m.view = ViewDashboard
	}
}

// Logout signs the user out and clears the session.
func (m *Machine) Logout(ctx context.Context) error {
	err := m.identity.SignOut(ctx)
	m.clear()
	m.view = ViewWelcome
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// Settings are the presentation preferences a learner may change.
// Empty fields keep their current value.
type Settings struct {
	Theme        catalog.Theme
	AnalogyTheme string
}

// UpdateSettings changes the visual and analogy themes.
func (m *Machine) UpdateSettings(ctx context.Context, s Settings) error {
	if m.progress == nil {
		return ErrNotOnboarded
	}
	theme := m.progress.Theme
	if s.Theme != "" {
		t, err := catalog.ParseTheme(string(s.Theme))
		if err != nil {
			return err
		}
		theme = t
	}
	analogy := m.progress.AnalogyTheme
	if s.AnalogyTheme != "" {
		t, ok := m.cat.Theme(s.AnalogyTheme)
		if !ok {
			return fmt.Errorf("analogy theme %q: %w", s.AnalogyTheme, catalog.ErrUnknownValue)
		}
		analogy = t.Key
	}

	m.progress.Theme = theme
	m.progress.AnalogyTheme = analogy

	err := m.store.UpdateSettings(ctx, m.user.UID, string(theme), analogy)
	if errors.Is(err, store.ErrNotFound) {
		m.persist(ctx)
		return nil
	}
	if err != nil {
		m.logger.Error("save settings", zap.String("uid", m.user.UID), zap.Error(err))
	}
	return nil
}

// Reset deletes stored progress and sends the learner back to onboarding.
func (m *Machine) Reset(ctx context.Context) error {
	if m.user == nil {
		return ErrNotSignedIn
	}
	if err := m.store.ClearProgress(ctx, m.user.UID); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	m.progress = nil
	m.resetStepState()
	m.view = ViewWelcome
	return nil
}

// persist saves progress. Failures are logged; in-memory state stays.
func (m *Machine) persist(ctx context.Context) {
	if m.user == nil || m.progress == nil {
		return
	}
	if err := m.store.SaveProgress(ctx, m.user.UID, m.progress.toStore()); err != nil {
		m.logger.Error("save progress", zap.String("uid", m.user.UID), zap.Error(err))
	}
}

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/coacha/internal/badges"
	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/prompt"
	"github.com/abhisek/coacha/internal/store"
	"github.com/abhisek/coacha/internal/tutor"
)

// faultyStore injects failures into selected store operations.
type faultyStore struct {
	*store.Store
	allowErr error
	loadErr  error
	saveErr  error
	saves    int
}

func (f *faultyStore) LoadProgress(ctx context.Context, uid string) (*store.Progress, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Store.LoadProgress(ctx, uid)
}

func (f *faultyStore) IsAllowlisted(ctx context.Context, email string) (bool, error) {
	if f.allowErr != nil {
		return false, f.allowErr
	}
	return f.Store.IsAllowlisted(ctx, email)
}

func (f *faultyStore) SaveProgress(ctx context.Context, uid string, p store.Progress) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveProgress(ctx, uid, p)
}

type testEnv struct {
	email string
	cat   *catalog.Catalog
	store *faultyStore
	id    *identity.LocalProvider
	llm   *llm.MockProvider
	tutor *tutor.Service
	m     *Machine
}

func newTestEnv(t *testing.T, email string) *testEnv {
	t.Helper()
	st, err := store.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat := catalog.MustNew()
	mock := llm.NewMockProvider()
	env := &testEnv{
		email: email,
		cat:   cat,
		store: &faultyStore{Store: st},
		id:    identity.NewLocalProvider(identity.LocalConfig{Email: email, Name: "Learner"}),
		llm:   mock,
		tutor: tutor.NewService(mock, prompt.NewComposer(cat), tutor.DefaultConfig()),
	}
	env.m = env.newMachine()
	return env
}

func (e *testEnv) newMachine() *Machine {
	return New(Config{Catalog: e.cat, Store: e.store, Identity: e.id, Logger: zap.NewNop()})
}

func (e *testEnv) signIn(t *testing.T, allow bool) error {
	t.Helper()
	ctx := context.Background()
	if allow {
		require.NoError(t, e.store.Allow(ctx, e.email))
	}
	u, err := e.id.SignIn(ctx)
	require.NoError(t, err)
	return e.m.IdentityChanged(ctx, u)
}

func (e *testEnv) onboard(t *testing.T, o Onboarding) {
	t.Helper()
	require.NoError(t, e.signIn(t, true))
	require.Equal(t, ViewWelcome, e.m.View())
	require.NoError(t, e.m.CompleteOnboarding(context.Background(), o))
}

// complete submits an answer for the current step and has the tutor praise it.
func (e *testEnv) complete(t *testing.T) Award {
	t.Helper()
	e.llm.AddText("Excellent work, that's correct!")
	award, err := e.m.Submit(context.Background(), e.tutor, "my answer")
	require.NoError(t, err)
	return award
}

func TestInitialViewIsLoading(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	assert.Equal(t, ViewLoading, env.m.View())
	assert.Nil(t, env.m.Progress())
}

func TestIdentityChanged_NilGoesToWelcome(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	require.NoError(t, env.m.IdentityChanged(context.Background(), nil))
	assert.Equal(t, ViewWelcome, env.m.View())
	assert.Nil(t, env.m.User())
}

func TestIdentityChanged_NotAllowlistedSignsOut(t *testing.T) {
	env := newTestEnv(t, "stranger@example.com")

	err := env.signIn(t, false)
	assert.ErrorIs(t, err, ErrNotAllowlisted)
	assert.Equal(t, ViewWelcome, env.m.View())
	assert.Nil(t, env.m.User())
	assert.Nil(t, env.m.Progress())
	assert.Nil(t, env.id.Current(), "identity provider must be signed out")
}

func TestIdentityChanged_AllowlistErrorSignsOut(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.store.allowErr = errors.New("database is locked")

	err := env.signIn(t, true)
	assert.ErrorIs(t, err, ErrNotAllowlisted)
	assert.Nil(t, env.id.Current())
	assert.Nil(t, env.m.User())
	assert.Equal(t, ViewWelcome, env.m.View())
}

func TestIdentityChanged_ExistingProgressGoesToDashboard(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, err := env.m.StartLearning()
	require.NoError(t, err)
	env.complete(t)

	// A new session for the same learner resumes from storage.
	env.m = env.newMachine()
	require.NoError(t, env.signIn(t, false))
	assert.Equal(t, ViewDashboard, env.m.View())

	p := env.m.Progress()
	require.NotNil(t, p)
	assert.Equal(t, 5, p.TotalPoints)
	assert.True(t, p.IsCompleted("welcome"))
	assert.True(t, p.HasBadge("welcome_aboard"))
	assert.Equal(t, catalog.ThemePlayful, p.Theme)

	u, err := env.store.UserByEmail(context.Background(), "kid@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Learner", u.Name)
}

func TestCompleteOnboarding_Defaults(t *testing.T) {
	env := newTestEnv(t, "adult@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE})

	p := env.m.Progress()
	assert.Equal(t, ViewDashboard, env.m.View())
	assert.Equal(t, 0, p.CurrentIndex)
	assert.Zero(t, p.TotalPoints)
	assert.Empty(t, p.CompletedSteps)
	assert.Empty(t, p.AchievedBadges)
	assert.Equal(t, catalog.ThemeGraceful, p.Theme)
	assert.Equal(t, catalog.ThemeKeyCity, p.AnalogyTheme)
	assert.Empty(t, p.Profession)

	path, _ := env.m.Path()
	assert.Equal(t, catalog.PathSWE, path.Kind)
}

func TestCompleteOnboarding_DoctorUsesMedicalPath(t *testing.T) {
	env := newTestEnv(t, "doc@example.com")
	require.NoError(t, env.signIn(t, true))

	err := env.m.CompleteOnboarding(context.Background(), Onboarding{Persona: catalog.PersonaDoctor, Course: catalog.CourseCoding})
	assert.ErrorIs(t, err, ErrProfessionRequired)
	assert.Nil(t, env.m.Progress())

	require.NoError(t, env.m.CompleteOnboarding(context.Background(), Onboarding{
		Persona:    catalog.PersonaDoctor,
		Course:     catalog.CourseCoding,
		Profession: " Cardiology ",
	}))
	p := env.m.Progress()
	assert.Equal(t, catalog.CourseSWE, p.Course)
	assert.Equal(t, "Cardiology", p.Profession)
	assert.Equal(t, catalog.ThemeKeyMedical, p.AnalogyTheme)

	path, _ := env.m.Path()
	assert.Equal(t, catalog.PathMedical, path.Kind)
	step, _ := env.m.CurrentStep()
	assert.Equal(t, "med_welcome", step.ID)
}

func TestCompleteOnboarding_Validation(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()

	assert.ErrorIs(t, env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaKid}), ErrNotSignedIn)

	require.NoError(t, env.signIn(t, true))
	assert.ErrorIs(t, env.m.CompleteOnboarding(ctx, Onboarding{}), ErrInvalidOnboarding)
	assert.ErrorIs(t, env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaKid}), ErrInvalidOnboarding)
	assert.ErrorIs(t, env.m.CompleteOnboarding(ctx, Onboarding{
		Persona: catalog.PersonaKid, Course: catalog.CourseCoding, AnalogyTheme: "space",
	}), ErrInvalidOnboarding)

	require.NoError(t, env.m.CompleteOnboarding(ctx, Onboarding{
		Persona: catalog.PersonaKid, Course: catalog.CourseCoding, AnalogyTheme: "Kitchen",
	}))
	assert.Equal(t, "kitchen", env.m.Progress().AnalogyTheme)
}

func TestKidCodingVariablesScenario(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	req, err := env.m.StartLearning()
	require.NoError(t, err)
	assert.Equal(t, "welcome", req.StepID)
	assert.True(t, env.m.Snapshot().LoadingExplanation)

	award := env.complete(t)
	assert.Equal(t, 5, award.Points)
	assert.Equal(t, []string{"welcome_aboard"}, badges.IDs(award.Badges))

	next, err := env.m.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "variables", next.StepID)

	env.llm.AddText("Correct! You put 100 in the score box.")
	award, err = env.m.Submit(ctx, env.tutor, "score = 100")
	require.NoError(t, err)

	assert.Equal(t, 10, award.Points)
	assert.Equal(t, []string{"boxer"}, badges.IDs(award.Badges))

	p := env.m.Progress()
	assert.Equal(t, 15, p.TotalPoints)
	assert.True(t, p.IsCompleted("variables"))
	assert.True(t, p.HasBadge("boxer"))

	notes := award.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, "+10 Points!", notes[0].Message)
	assert.Equal(t, "Badge Unlocked: Boxer", notes[1].Message)
	assert.Equal(t, badges.IconBrain, notes[1].Icon)
}

func TestPathCompleteBadge(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()

	env.complete(t)
	_, _ = env.m.Next(ctx)
	env.complete(t)
	_, _ = env.m.Next(ctx)
	award := env.complete(t)

	assert.Equal(t, 15, award.Points)
	assert.ElementsMatch(t, []string{"decision_maker", "path_complete"}, badges.IDs(award.Badges))
	assert.Equal(t, 30, env.m.Progress().TotalPoints)

	last, err := env.m.Next(ctx)
	assert.NoError(t, err)
	assert.Nil(t, last, "next at the last step is a no-op")
	assert.Equal(t, 2, env.m.Progress().CurrentIndex)
}

func TestAwardsAreIdempotent(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()

	first := env.complete(t)
	second := env.complete(t)

	assert.Equal(t, 5, first.Points)
	assert.True(t, second.Empty())
	p := env.m.Progress()
	assert.Equal(t, 5, p.TotalPoints)
	assert.Equal(t, []string{"welcome"}, p.CompletedSteps)
	assert.Equal(t, []string{"welcome_aboard"}, p.AchievedBadges)
}

func TestUnsuccessfulFeedbackAwardsNothing(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()

	env.llm.AddText("Almost! Try saying hello.")
	award, err := env.m.Submit(context.Background(), env.tutor, "hmm")
	require.NoError(t, err)
	assert.True(t, award.Empty())
	assert.Equal(t, "Almost! Try saying hello.", env.m.Snapshot().Feedback)
	assert.Zero(t, env.m.Progress().TotalPoints)

	_, err = env.m.Next(context.Background())
	assert.ErrorIs(t, err, ErrStepIncomplete)
}

func TestExplanationFailure(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	before := env.m.Progress()

	_, _ = env.m.StartLearning()
	env.llm.AddResponse(llm.MockResponse{Err: errors.New("quota exceeded")})
	err := env.m.Explain(context.Background(), env.tutor)
	require.Error(t, err)

	s := env.m.Snapshot()
	assert.False(t, s.LoadingExplanation)
	assert.Equal(t, "Failed to load concept: "+err.Error(), s.Explanation)
	assert.Contains(t, s.Explanation, "quota exceeded")
	assert.Equal(t, before, env.m.Progress())
}

func TestEvaluationFailureLeavesProgress(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()
	before := env.m.Progress()

	env.llm.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	_, err := env.m.Submit(context.Background(), env.tutor, "hello")
	require.Error(t, err)

	s := env.m.Snapshot()
	assert.False(t, s.LoadingFeedback)
	assert.Equal(t, "Failed to get feedback: "+err.Error(), s.Feedback)
	assert.Equal(t, before, env.m.Progress())
}

func TestStaleResponsesAreDropped(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	first, _ := env.m.StartLearning()
	env.complete(t)

	// Submit on step 0, then move on before the feedback arrives.
	req, ok := env.m.BeginSubmission("hello again")
	require.True(t, ok)
	next, err := env.m.Next(ctx)
	require.NoError(t, err)

	award, applied := env.m.ResolveEvaluation(ctx, req, "Perfect!", nil)
	assert.False(t, applied)
	assert.True(t, award.Empty())

	assert.False(t, env.m.ResolveExplanation(first, "old explanation", nil))
	assert.True(t, env.m.Snapshot().LoadingExplanation)

	assert.True(t, env.m.ResolveExplanation(*next, "Variables are boxes", nil))
	s := env.m.Snapshot()
	assert.Equal(t, "Variables are boxes", s.Explanation)
	assert.False(t, s.LoadingExplanation)
}

func TestLoadingFlagsAreIndependent(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	explain, _ := env.m.StartLearning()

	eval, ok := env.m.BeginSubmission("hello")
	require.True(t, ok)
	_, again := env.m.BeginSubmission("hello")
	assert.False(t, again, "one evaluation at a time")

	s := env.m.Snapshot()
	assert.True(t, s.LoadingExplanation)
	assert.True(t, s.LoadingFeedback)

	env.m.ResolveEvaluation(context.Background(), eval, "Not yet", nil)
	s = env.m.Snapshot()
	assert.True(t, s.LoadingExplanation)
	assert.False(t, s.LoadingFeedback)

	env.m.ResolveExplanation(explain, "Hi!", nil)
	assert.False(t, env.m.Snapshot().LoadingExplanation)
}

func TestBeginSubmission_Guards(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	_, ok := env.m.BeginSubmission("hello")
	assert.False(t, ok, "not in learning view")

	_, _ = env.m.StartLearning()
	_, ok = env.m.BeginSubmission("   ")
	assert.False(t, ok, "empty answer")

	_, err := env.m.Submit(context.Background(), env.tutor, "")
	assert.ErrorIs(t, err, ErrNothingToSubmit)
	assert.Zero(t, env.llm.CallCount())
}

func TestNavigationBounds(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	prev, err := env.m.Previous(ctx)
	assert.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, 0, env.m.Progress().CurrentIndex)

	_, err = env.m.Goto(ctx, 3)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = env.m.Goto(ctx, -1)
	assert.ErrorIs(t, err, ErrStepOutOfRange)
	_, err = env.m.Goto(ctx, 1)
	assert.ErrorIs(t, err, ErrStepLocked)

	req, err := env.m.Goto(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, ViewLearning, env.m.View())

	env.complete(t)
	req, err = env.m.Goto(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "variables", req.StepID)

	prev, err = env.m.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, "welcome", prev.StepID)
}

func TestOutline(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	assert.Nil(t, env.m.Outline())

	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()
	env.complete(t)

	outline := env.m.Outline()
	require.Len(t, outline, 3)
	assert.True(t, outline[0].Completed)
	assert.False(t, outline[1].Locked)
	assert.True(t, outline[2].Locked)
	assert.Equal(t, 15, outline[2].Points)
}

func TestViews(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	assert.ErrorIs(t, env.m.OpenAdmin(), ErrNotAdmin)
	assert.Equal(t, ViewDashboard, env.m.View())

	_, _ = env.m.StartLearning()
	assert.Equal(t, ViewLearning, env.m.View())
	env.m.GoHome()
	assert.Equal(t, ViewDashboard, env.m.View())

	require.NoError(t, env.m.Logout(context.Background()))
	assert.Equal(t, ViewWelcome, env.m.View())
	assert.Nil(t, env.m.User())
	assert.Nil(t, env.m.Progress())
	assert.Nil(t, env.id.Current())
}

func TestAdminView(t *testing.T) {
	env := newTestEnv(t, identity.DefaultAdminEmail)
	env.onboard(t, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseCoding})

	require.NoError(t, env.m.OpenAdmin())
	assert.Equal(t, ViewAdmin, env.m.View())
	env.m.CloseAdmin()
	assert.Equal(t, ViewDashboard, env.m.View())
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	require.NoError(t, env.m.UpdateSettings(ctx, Settings{Theme: catalog.ThemeGraceful, AnalogyTheme: "sports"}))
	p := env.m.Progress()
	assert.Equal(t, catalog.ThemeGraceful, p.Theme)
	assert.Equal(t, "sports", p.AnalogyTheme)

	stored, err := env.store.LoadProgress(ctx, env.m.User().UID)
	require.NoError(t, err)
	assert.Equal(t, "graceful", stored.Theme)
	assert.Equal(t, "sports", stored.AnalogyTheme)

	assert.ErrorIs(t, env.m.UpdateSettings(ctx, Settings{AnalogyTheme: "space"}), catalog.ErrUnknownValue)
	assert.ErrorIs(t, env.m.UpdateSettings(ctx, Settings{Theme: "neon"}), catalog.ErrUnknownValue)
	assert.Equal(t, "sports", env.m.Progress().AnalogyTheme)
}

func TestReset(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	uid := env.m.User().UID

	require.NoError(t, env.m.Reset(ctx))
	assert.Equal(t, ViewWelcome, env.m.View())
	assert.Nil(t, env.m.Progress())
	assert.NotNil(t, env.m.User())

	stored, err := env.store.LoadProgress(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	env := newTestEnv(t, "kid@example.com")
	env.m = New(Config{Catalog: env.cat, Store: env.store, Identity: env.id, Logger: zap.New(core)})
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()

	env.store.saveErr = errors.New("disk full")
	award := env.complete(t)

	assert.Equal(t, 5, award.Points)
	assert.Equal(t, 5, env.m.Progress().TotalPoints)
	assert.GreaterOrEqual(t, logs.FilterMessage("save progress").Len(), 1)
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	s := env.m.Snapshot()
	assert.Equal(t, ViewDashboard, s.View)
	assert.Equal(t, "Coding Fundamentals", s.PathName)
	assert.Equal(t, 3, s.PathLength)
	require.NotNil(t, s.Step)
	assert.Equal(t, "welcome", s.Step.ID)

	text, err := s.View.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "dashboard", string(text))
}

func TestCompleteOnboarding_RejectsSecondOnboarding(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()
	env.complete(t)

	err := env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE})
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)

	p := env.m.Progress()
	assert.Equal(t, catalog.PersonaKid, p.Persona)
	assert.Equal(t, 5, p.TotalPoints)
	assert.True(t, p.IsCompleted("welcome"))
	assert.True(t, p.HasBadge("welcome_aboard"))

	stored, err := env.store.LoadProgress(ctx, identity.UIDFor("kid@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TotalPoints)

	// The completed step cannot be earned twice.
	award := env.complete(t)
	assert.True(t, award.Empty())
	assert.Equal(t, 5, env.m.Progress().TotalPoints)
}

func TestCompleteOnboarding_AfterFailedLoadRestoresProgress(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()
	env.complete(t)

	env.m = env.newMachine()
	env.store.loadErr = errors.New("database is locked")
	require.NoError(t, env.signIn(t, false))
	assert.Equal(t, ViewWelcome, env.m.View())
	assert.Nil(t, env.m.Progress())

	// Still failing: onboarding cannot tell whether a record exists.
	err := env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE})
	require.Error(t, err)
	assert.Nil(t, env.m.Progress())

	env.store.loadErr = nil
	err = env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE})
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)
	assert.Equal(t, ViewDashboard, env.m.View())

	p := env.m.Progress()
	require.NotNil(t, p)
	assert.Equal(t, catalog.PersonaKid, p.Persona)
	assert.Equal(t, 5, p.TotalPoints)
	assert.True(t, p.IsCompleted("welcome"))
}

func TestCompleteOnboarding_AllowedAfterReset(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})

	require.NoError(t, env.m.Reset(ctx))
	require.NoError(t, env.m.CompleteOnboarding(ctx, Onboarding{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE}))
	assert.Equal(t, catalog.PersonaAdult, env.m.Progress().Persona)
}

func TestSupersededRequestsAreDropped(t *testing.T) {
	env := newTestEnv(t, "kid@example.com")
	ctx := context.Background()
	env.onboard(t, Onboarding{Persona: catalog.PersonaKid, Course: catalog.CourseCoding})
	_, _ = env.m.StartLearning()
	env.complete(t)

	// Leave the step and come back before either reply arrives.
	_, err := env.m.Next(ctx)
	require.NoError(t, err)
	first, err := env.m.Previous(ctx)
	require.NoError(t, err)
	eval, ok := env.m.BeginSubmission("print('hi')")
	require.True(t, ok)

	second, err := env.m.Next(ctx)
	require.NoError(t, err)
	latest, err := env.m.Previous(ctx)
	require.NoError(t, err)
	require.Equal(t, first.StepID, latest.StepID)
	require.NotEqual(t, first.Seq, latest.Seq)

	assert.False(t, env.m.ResolveExplanation(*second, "wrong step", nil))
	assert.False(t, env.m.ResolveExplanation(*first, "old reply", nil))
	assert.True(t, env.m.Snapshot().LoadingExplanation)

	latestEval, ok := env.m.BeginSubmission("print('hello')")
	require.True(t, ok)
	_, applied := env.m.ResolveEvaluation(ctx, eval, "Perfect!", nil)
	assert.False(t, applied)
	assert.True(t, env.m.Snapshot().LoadingFeedback)

	assert.True(t, env.m.ResolveExplanation(*latest, "new reply", nil))
	_, applied = env.m.ResolveEvaluation(ctx, latestEval, "Great job!", nil)
	assert.True(t, applied)

	s := env.m.Snapshot()
	assert.Equal(t, "new reply", s.Explanation)
	assert.Equal(t, "Great job!", s.Feedback)
	assert.False(t, s.LoadingExplanation)
	assert.False(t, s.LoadingFeedback)
}

package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/prompt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T, responses ...llm.MockResponse) (*Service, *llm.MockProvider, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.New()
	require.NoError(t, err)
	mock := llm.NewMockProvider(responses...)
	return NewService(mock, prompt.NewComposer(cat), DefaultConfig()), mock, cat
}

func TestExplain_SendsIntroductionWithInstruction(t *testing.T) {
	svc, mock, cat := newTestService(t, llm.MockResponse{Text: "A variable is a labelled box! 📦"})
	step, ok := cat.Step(catalog.PersonaKid, catalog.CourseCoding, 1)
	require.True(t, ok)

	text, err := svc.Explain(context.Background(), ExplainRequest{
		StepID:  step.ID,
		Step:    step,
		Profile: Profile{Persona: catalog.PersonaKid, Course: catalog.CourseCoding},
	})
	require.NoError(t, err)
	assert.Equal(t, "A variable is a labelled box! 📦", text)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.System, "AI robot friend")
	assert.Equal(t, step.IntroductionPrompt, call.Prompt())
	assert.Equal(t, llm.DefaultTemperature, call.Temperature)
}

func TestEvaluate_SeparatesSubmission(t *testing.T) {
	svc, mock, cat := newTestService(t, llm.MockResponse{Text: "Correct!"})
	step, _ := cat.Step(catalog.PersonaAdult, catalog.CourseSWE, 2)

	text, err := svc.Evaluate(context.Background(), EvaluateRequest{
		StepID:     step.ID,
		Step:       step,
		Profile:    Profile{Persona: catalog.PersonaAdult, Course: catalog.CourseSWE, AnalogyTheme: "kitchen"},
		Submission: "An API is like a waiter.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Correct!", text)

	call, _ := mock.LastCall()
	require.Len(t, call.Messages, 2)
	assert.NotContains(t, call.Messages[0].Content, "waiter")
	assert.True(t, strings.Contains(call.Messages[1].Content, "An API is like a waiter."))
	assert.Contains(t, call.System, "Acknowledge their attempt")
}

func TestExplain_PropagatesProviderError(t *testing.T) {
	svc, _, cat := newTestService(t, llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	step, _ := cat.Step(catalog.PersonaKid, catalog.CourseCoding, 0)

	_, err := svc.Explain(context.Background(), ExplainRequest{
		StepID:  step.ID,
		Step:    step,
		Profile: Profile{Persona: catalog.PersonaKid, Course: catalog.CourseCoding},
	})
	var rl *llm.ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestIncompleteProfile(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.Explain(context.Background(), ExplainRequest{Profile: Profile{Persona: catalog.PersonaKid}})
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	_, err = svc.Evaluate(context.Background(), EvaluateRequest{Profile: Profile{Course: catalog.CourseSWE}})
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	assert.Zero(t, mock.CallCount())
}

func TestTimeoutBoundsCall(t *testing.T) {
	svc, mock, cat := newTestService(t, llm.MockResponse{Text: "too late"})
	svc.cfg.Timeout = 1
	mock.Hold = make(chan struct{})
	defer close(mock.Hold)

	step, _ := cat.Step(catalog.PersonaKid, catalog.CourseCoding, 0)
	_, err := svc.Explain(context.Background(), ExplainRequest{
		StepID:  step.ID,
		Step:    step,
		Profile: Profile{Persona: catalog.PersonaKid, Course: catalog.CourseCoding},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

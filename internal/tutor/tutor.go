// Package tutor asks the text-generation provider for step explanations
// and submission feedback.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/prompt"
)

// ErrProfileIncomplete is returned when persona or course is unset.
var ErrProfileIncomplete = errors.New("user profile not set up correctly")

// Profile is the slice of learner state that shapes a prompt.
type Profile struct {
	Persona      catalog.Persona
	Course       catalog.CourseMode
	Profession   string
	AnalogyTheme string
}

func (p Profile) complete() bool {
	return p.Persona != catalog.PersonaUnset && p.Course != catalog.CourseUnset
}

// ExplainRequest asks for the introduction of one step. StepID and Seq tag
// the response so late answers for a step the learner has left, or for a
// request that has since been reissued, can be dropped.
type ExplainRequest struct {
	StepID  string
	Seq     uint64
	Step    catalog.LearningStep
	Profile Profile
}

// EvaluateRequest asks for feedback on a submission for one step.
type EvaluateRequest struct {
	StepID     string
	Seq        uint64
	Step       catalog.LearningStep
	Profile    Profile
	Submission string
}

// Config holds generation settings for tutor calls.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   llm.DefaultMaxTokens,
		Temperature: llm.DefaultTemperature,
		Timeout:     60 * time.Second,
	}
}

// Service is the tutor. It is safe for concurrent use.
type Service struct {
	provider llm.Provider
	composer *prompt.Composer
	cfg      Config
}

// NewService creates a tutor backed by provider.
func NewService(provider llm.Provider, composer *prompt.Composer, cfg Config) *Service {
	return &Service{provider: provider, composer: composer, cfg: cfg}
}

// Explain returns the tutor's introduction to req.Step.
func (s *Service) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	if !req.Profile.complete() {
		return "", ErrProfileIncomplete
	}
	p := req.Profile
	system := s.composer.ComposeInstruction(prompt.TaskExplain, p.Persona, p.Course, req.Step.BlockType, p.Profession, p.AnalogyTheme)

	text, err := s.generate(llm.WithPurpose(ctx, llm.PurposeExplain), llm.UserText(system, req.Step.IntroductionPrompt))
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", req.StepID, err)
	}
	return text, nil
}

// Evaluate returns the tutor's feedback on req.Submission.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (string, error) {
	if !req.Profile.complete() {
		return "", ErrProfileIncomplete
	}
	p := req.Profile
	system := s.composer.ComposeInstruction(prompt.TaskEvaluate, p.Persona, p.Course, req.Step.BlockType, p.Profession, p.AnalogyTheme)
	ep := prompt.ComposeEvaluationPrompt(req.Step, req.Submission)

	text, err := s.generate(llm.WithPurpose(ctx, llm.PurposeEvaluate), llm.Request{
		System:   system,
		Messages: ep.Messages(),
	})
	if err != nil {
		return "", fmt.Errorf("evaluate %s: %w", req.StepID, err)
	}
	return text, nil
}

func (s *Service) generate(ctx context.Context, req llm.Request) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

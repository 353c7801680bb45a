package llm

import (
	"context"
	"strings"
)

// Provider is the text-generation collaborator. Each Generate call is a
// single attempt; failures are returned to the caller unchanged.
type Provider interface {
	// Generate sends the request to the model and returns its text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system instruction. Sets the model's voice and task.
	System string

	// Messages are the user-visible turns. Prompt text and learner
	// submissions travel as separate messages so one cannot rewrite the
	// framing of the other.
	Messages []Message

	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness. Zero means "use DefaultTemperature".
	Temperature float64
}

// DefaultTemperature is applied when a request leaves Temperature unset.
const DefaultTemperature = 0.5

// DefaultMaxTokens is applied when a request leaves MaxTokens unset.
const DefaultMaxTokens = 2048

func (r Request) temperature() float64 {
	if r.Temperature <= 0 {
		return DefaultTemperature
	}
	return r.Temperature
}

func (r Request) maxTokens() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// Prompt joins the user messages into one prompt string, for transports
// that accept a single prompt.
func (r Request) Prompt() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// UserText builds a single-turn request.
func UserText(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model's output.
type Response struct {
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Unconfigured stands in for a provider when no credential is set. Every
// call fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, Request) (*Response, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) ModelID() string { return "unconfigured" }

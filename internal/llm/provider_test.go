package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first answer", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second answer"},
	)

	resp1, err := mock.Generate(context.Background(), UserText("sys", "one"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first answer" {
		t.Fatalf("expected first answer, got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), UserText("sys", "two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second answer" {
		t.Fatalf("expected second answer, got %q", resp2.Text)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
	last, _ := mock.LastCall()
	if last.Prompt() != "two" {
		t.Fatalf("expected last prompt 'two', got %q", last.Prompt())
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_HoldRespectsContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "late"})
	mock.Hold = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(mock.Hold)
	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil || resp.Text != "late" {
		t.Fatalf("expected late response, got %v, %v", resp, err)
	}
}

func TestRequest_PromptJoinsUserMessages(t *testing.T) {
	req := Request{Messages: []Message{
		{Role: RoleUser, Content: "framing"},
		{Role: RoleAssistant, Content: "ignored"},
		{Role: RoleUser, Content: "submission"},
	}}
	if got := req.Prompt(); got != "framing\n\nsubmission" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestRequest_Defaults(t *testing.T) {
	var req Request
	if req.temperature() != DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", req.temperature())
	}
	if req.maxTokens() != DefaultMaxTokens {
		t.Fatalf("expected default max tokens, got %d", req.maxTokens())
	}

	cfg := DefaultConfig()
	cfg.Temperature = 0.2
	cfg.MaxTokens = 100
	req = cfg.WithDefaults(Request{MaxTokens: 50})
	if req.Temperature != 0.2 || req.MaxTokens != 50 {
		t.Fatalf("unexpected request defaults: %+v", req)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		ok      bool
	}{
		{"gemini without key", func(c *Config) {}, ErrNotConfigured, false},
		{"gemini with key", func(c *Config) { c.Gemini.APIKey = "k" }, nil, true},
		{"anthropic without key", func(c *Config) { c.Provider = ProviderAnthropic }, ErrNotConfigured, false},
		{"remote without url", func(c *Config) { c.Provider = ProviderRemote }, nil, false},
		{"remote with url", func(c *Config) { c.Provider = ProviderRemote; c.Remote.URL = "http://x" }, nil, true},
		{"mock", func(c *Config) { c.Provider = ProviderMock }, nil, true},
		{"unknown", func(c *Config) { c.Provider = "palm" }, nil, false},
		{"bad temperature", func(c *Config) { c.Provider = ProviderMock; c.Temperature = 3 }, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_Model(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Model(); got != "gemini-2.5-flash" {
		t.Errorf("gemini model = %q", got)
	}
	cfg.Provider = ProviderOpenRouter
	if got := cfg.Model(); got != "google/gemini-2.5-flash" {
		t.Errorf("openrouter model = %q", got)
	}
	cfg.Provider = ProviderRemote
	if got := cfg.Model(); got != "" {
		t.Errorf("remote model = %q, want none", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{&ErrRateLimit{Err: errors.New("slow down")}, "rate_limit"},
		{fmt.Errorf("wrapped: %w", &ErrInvalidResponse{Err: errors.New("empty")}), "invalid_response"},
		{&ErrProviderUnavailable{}, "unavailable"},
		{fmt.Errorf("gemini: %w", ErrNotConfigured), "not_configured"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMapStatus(t *testing.T) {
	base := errors.New("upstream")
	var rl *ErrRateLimit
	if !errors.As(mapStatus(429, base), &rl) {
		t.Fatal("429 should map to ErrRateLimit")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(mapStatus(503, base), &unavail) {
		t.Fatal("503 should map to ErrProviderUnavailable")
	}
	if !errors.Is(mapStatus(401, base), ErrNotConfigured) {
		t.Fatal("401 should map to ErrNotConfigured")
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model, got %q", p.ModelID())
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), DefaultConfig(), Options{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	ctx := WithPurpose(context.Background(), PurposeExplain)
	if got := PurposeFrom(ctx); got != PurposeExplain {
		t.Fatalf("expected explain, got %q", got)
	}
}

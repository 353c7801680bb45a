package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/metrics"
)

// Options carries the optional collaborators wired around a provider.
type Options struct {
	Recorder   EventRecorder
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	HTTPClient *http.Client // used by the remote provider
}

// NewProvider creates a Provider from configuration, wrapped with
// metrics and logging middleware. Each call is a single attempt.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	base, err := newBase(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	// caller → metrics → logging → base
	logged := WithLogging(base, cfg.Provider, opts.Recorder, opts.Logger)
	return WithMetrics(logged, opts.Metrics), nil
}

func newBase(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderRemote:
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: cfg.timeout()}
		}
		p, err = NewRemoteProvider(cfg.Remote, client)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

// WithDefaults fills in request fields the caller left unset from cfg.
func (c Config) WithDefaults(req Request) Request {
	if req.Temperature <= 0 {
		req.Temperature = c.Temperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.MaxTokens
	}
	return req
}

// CallTimeout bounds a single generation call.
func (c Config) CallTimeout() time.Duration { return c.timeout() }

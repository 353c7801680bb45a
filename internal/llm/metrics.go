package llm

import (
	"context"
	"time"

	"github.com/abhisek/coacha/internal/metrics"
)

// MetricsProvider counts calls, latency and tokens per model and purpose.
type MetricsProvider struct {
	inner Provider
	m     *metrics.Metrics
}

// WithMetrics wraps a Provider with prometheus instrumentation.
func WithMetrics(p Provider, m *metrics.Metrics) Provider {
	if m == nil {
		return p
	}
	return &MetricsProvider{inner: p, m: m}
}

func (p *MetricsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)
	model := p.inner.ModelID()

	resp, err := p.inner.Generate(ctx, req)

	outcome := "success"
	if err != nil {
		outcome = errorKind(err)
	}
	p.m.LLMRequests.WithLabelValues(model, purpose, outcome).Inc()
	p.m.LLMDuration.WithLabelValues(model, purpose).Observe(time.Since(start).Seconds())
	if resp != nil {
		p.m.LLMTokens.WithLabelValues(model, "input").Add(float64(resp.Usage.InputTokens))
		p.m.LLMTokens.WithLabelValues(model, "output").Add(float64(resp.Usage.OutputTokens))
	}
	return resp, err
}

func (p *MetricsProvider) ModelID() string {
	return p.inner.ModelID()
}

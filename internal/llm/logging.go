package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/store"
)

// EventRecorder persists text-generation events. *store.Store satisfies it.
type EventRecorder interface {
	RecordLLMEvent(ctx context.Context, e store.LLMEvent) error
}

// LoggingProvider is a decorator that records every request as an event
// and a structured log line.
type LoggingProvider struct {
	inner    Provider
	name     string
	recorder EventRecorder
	logger   *zap.Logger
}

// WithLogging wraps a Provider with event logging. recorder may be nil.
func WithLogging(p Provider, name string, recorder EventRecorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, name: name, recorder: recorder, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)
	event := store.LLMEvent{
		Provider:  l.name,
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: latency.Milliseconds(),
		Success:   err == nil,
		ErrorKind: errorKind(err),
		Prompt:    serializeRequest(req),
	}
	fields := []zap.Field{
		zap.String("provider", l.name),
		zap.String("purpose", purpose),
		zap.Duration("latency", latency),
	}

	if resp != nil {
		event.Model = resp.Model
		event.InputTokens = resp.Usage.InputTokens
		event.OutputTokens = resp.Usage.OutputTokens
		event.Response = resp.Text
		fields = append(fields,
			zap.String("model", resp.Model),
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}

	if err != nil {
		event.ErrorMessage = err.Error()
		l.logger.Warn("llm request failed", append(fields, zap.String("kind", event.ErrorKind), zap.Error(err))...)
	} else {
		l.logger.Debug("llm request", fields...)
	}

	// Recording is best effort; the caller still gets the model's answer.
	if l.recorder != nil {
		if recErr := l.recorder.RecordLLMEvent(context.WithoutCancel(ctx), event); recErr != nil {
			l.logger.Warn("record llm event", zap.Error(recErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

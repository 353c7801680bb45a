package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// LLMEvent records one text-generation call.
type LLMEvent struct {
	ID           int64
	CreatedAt    time.Time
	Provider     string
	Model        string
	Purpose      string
	LatencyMs    int64
	Success      bool
	ErrorKind    string
	ErrorMessage string
	InputTokens  int
	OutputTokens int
	Prompt       string
	Response     string
}

// RecordLLMEvent appends an event.
func (s *Store) RecordLLMEvent(ctx context.Context, e LLMEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	ins := builder().Insert("llm_events").
		Columns("created_at", "provider", "model", "purpose", "latency_ms", "success",
			"error_kind", "error_message", "input_tokens", "output_tokens", "prompt", "response").
		Values(e.CreatedAt, e.Provider, e.Model, e.Purpose, e.LatencyMs, e.Success,
			e.ErrorKind, e.ErrorMessage, e.InputTokens, e.OutputTokens, e.Prompt, e.Response)
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("record LLM event: %w", err)
	}
	return nil
}

// RecentLLMEvents returns the newest events first.
func (s *Store) RecentLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	b := builder()
	query, args := b.Select("id", "created_at", "provider", "model", "purpose", "latency_ms", "success",
		"error_kind", "error_message", "input_tokens", "output_tokens", "prompt", "response").
		From(b.Table("llm_events")).
		OrderBy(entsql.Desc("id")).
		Limit(limit).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var e LLMEvent
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Provider, &e.Model, &e.Purpose, &e.LatencyMs, &e.Success,
			&e.ErrorKind, &e.ErrorMessage, &e.InputTokens, &e.OutputTokens, &e.Prompt, &e.Response); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LLMUsage summarizes calls per model and purpose.
type LLMUsage struct {
	Model        string
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMUsageSummary aggregates all recorded events.
func (s *Store) LLMUsageSummary(ctx context.Context) ([]LLMUsage, error) {
	b := builder()
	query, args := b.Select(
		"model", "purpose",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Avg("latency_ms"),
	).
		From(b.Table("llm_events")).
		GroupBy("model", "purpose").
		OrderBy("model", "purpose").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var avg sql.NullFloat64
		if err := rows.Scan(&u.Model, &u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg.Float64)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Failures need a filtered count per group; a second pass keeps the
	// grouped query portable.
	for i := range out {
		q, a := b.Select(entsql.Count("*")).
			From(b.Table("llm_events")).
			Where(entsql.And(
				entsql.EQ("model", out[i].Model),
				entsql.EQ("purpose", out[i].Purpose),
				entsql.EQ("success", false),
			)).
			Query()
		if err := s.db.QueryRowContext(ctx, q, a...).Scan(&out[i].Failures); err != nil {
			return nil, fmt.Errorf("count LLM failures: %w", err)
		}
	}
	return out, nil
}

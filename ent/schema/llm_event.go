package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMEvent records every text-generation call for cost tracking and debugging.
type LLMEvent struct {
	ent.Schema
}

func (LLMEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "llm_events"}}
}

func (LLMEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.String("provider").
			Comment("Provider name: gemini, anthropic, openai, openrouter, remote"),
		field.String("model").
			Comment("Actual model ID used"),
		field.String("purpose").
			Comment("explain, evaluate or proxy"),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.String("error_kind").
			Default(""),
		field.String("error_message").
			Default(""),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Text("prompt").
			Default("").
			Comment("Captured only when the provider reports it"),
		field.Text("response").
			Default(""),
	}
}

func (LLMEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}

package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Progress is a learner's persisted state. One row per user.
type Progress struct {
	ent.Schema
}

func (Progress) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "progress"}}
}

func (Progress) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("user_id").
			Immutable(),
		field.Enum("persona").
			Values("kid", "adult", "doctor").
			Optional(),
		field.Enum("course_mode").
			Values("coding", "swe").
			Optional(),
		field.String("profession").
			Default("").
			Comment("Medical specialty; only set for doctors"),
		field.Int("current_index").
			NonNegative().
			Default(0),
		field.Int("total_points").
			NonNegative().
			Default(0),
		field.Enum("theme").
			Values("playful", "graceful").
			Default("playful"),
		field.String("analogy_theme").
			Default("").
			Comment("Empty means the persona default"),
		field.Time("updated_at"),
	}
}

// CompletedStep marks one step finished by a learner. Rows cascade with
// their progress record.
type CompletedStep struct {
	ent.Schema
}

func (CompletedStep) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "completed_steps"}}
}

func (CompletedStep) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("step_id").NotEmpty(),
		field.Time("completed_at"),
	}
}

func (CompletedStep) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "step_id").Unique(),
	}
}

// AchievedBadge marks one badge unlocked by a learner.
type AchievedBadge struct {
	ent.Schema
}

func (AchievedBadge) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "achieved_badges"}}
}

func (AchievedBadge) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("badge_id").NotEmpty(),
		field.Time("achieved_at"),
	}
}

func (AchievedBadge) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "badge_id").Unique(),
	}
}

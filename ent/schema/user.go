package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// User is the identity record created on first sign-in.
type User struct {
	ent.Schema
}

func (User) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "users"}}
}

func (User) Mixin() []ent.Mixin {
	return []ent.Mixin{TimestampMixin{}}
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("uid").
			Immutable().
			Comment("Stable id derived from the normalized email"),
		field.String("email").
			Default(""),
		field.String("name").
			Default(""),
	}
}

func (User) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("email"),
	}
}

// AllowlistEntry is one email permitted to sign in.
type AllowlistEntry struct {
	ent.Schema
}

func (AllowlistEntry) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "allowlist"}}
}

func (AllowlistEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("email").
			Immutable().
			Comment("Lower-cased, trimmed email"),
		field.Time("added_at").
			Immutable(),
	}
}

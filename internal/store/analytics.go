package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/coacha/internal/catalog"
)

// Analytics is the admin dashboard aggregate.
type Analytics struct {
	TotalUsers             int          `json:"totalUsers"`
	AvgPoints              int          `json:"avgPoints"`
	PersonaDistribution    []NamedCount `json:"personaDistribution"`
	CoursePopularity       []NamedCount `json:"coursePopularity"`
	TotalConceptsCompleted int          `json:"totalConceptsCompleted"`
}

// NamedCount is one bar of a distribution.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LoadAnalytics aggregates every stored progress record.
func (s *Store) LoadAnalytics(ctx context.Context) (*Analytics, error) {
	b := builder()
	a := &Analytics{PersonaDistribution: []NamedCount{}, CoursePopularity: []NamedCount{}}

	query, args := b.Select(entsql.Count("*"), entsql.Avg("total_points")).
		From(b.Table("progress")).
		Query()
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.TotalUsers, &avg); err != nil {
		return nil, fmt.Errorf("aggregate progress: %w", err)
	}
	if a.TotalUsers == 0 {
		return a, nil
	}
	a.AvgPoints = int(math.Round(avg.Float64))

	query, args = b.Select(entsql.Count("*")).From(b.Table("completed_steps")).Query()
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.TotalConceptsCompleted); err != nil {
		return nil, fmt.Errorf("count completed steps: %w", err)
	}

	query, args = b.Select("persona", "course_mode", entsql.Count("*")).
		From(b.Table("progress")).
		GroupBy("persona", "course_mode").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group progress: %w", err)
	}
	defer rows.Close()

	personas := map[string]int{}
	courses := map[string]int{}
	for rows.Next() {
		var persona, mode string
		var n int
		if err := rows.Scan(&persona, &mode, &n); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		p := catalog.Persona(persona)
		if p != catalog.PersonaUnset {
			personas[p.DisplayName()] += n
		}
		if mode != "" {
			courses[catalog.KindFor(p, catalog.CourseMode(mode)).DisplayName()] += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	a.PersonaDistribution = sortedCounts(personas)
	a.CoursePopularity = sortedCounts(courses)
	return a, nil
}

// sortedCounts orders by count descending, then name.
func sortedCounts(m map[string]int) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for name, n := range m {
		out = append(out, NamedCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

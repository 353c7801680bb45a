package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Progress is the persisted form of a learner's game progress.
type Progress struct {
	Persona        string
	CourseMode     string
	Profession     string
	CurrentIndex   int
	TotalPoints    int
	Theme          string
	AnalogyTheme   string
	CompletedSteps []string
	AchievedBadges []string
	UpdatedAt      time.Time
}

var progressColumns = []string{
	"persona", "course_mode", "profession", "current_index",
	"total_points", "theme", "analogy_theme", "updated_at",
}

// LoadProgress returns the saved progress for a user, or nil if the user
// has none.
func (s *Store) LoadProgress(ctx context.Context, uid string) (*Progress, error) {
	b := builder()
	query, args := b.Select(progressColumns...).
		From(b.Table("progress")).
		Where(entsql.EQ("user_id", uid)).
		Query()

	var p Progress
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&p.Persona, &p.CourseMode, &p.Profession, &p.CurrentIndex,
		&p.TotalPoints, &p.Theme, &p.AnalogyTheme, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	if p.CompletedSteps, err = s.column(ctx, "completed_steps", "step_id", "completed_at", uid); err != nil {
		return nil, err
	}
	if p.AchievedBadges, err = s.column(ctx, "achieved_badges", "badge_id", "achieved_at", uid); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) column(ctx context.Context, table, col, orderCol, uid string) ([]string, error) {
	b := builder()
	query, args := b.Select(col).
		From(b.Table(table)).
		Where(entsql.EQ("user_id", uid)).
		OrderBy(orderCol, col).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SaveProgress merges p into the stored record. Scalar fields are
// replaced; completed steps and badges are only ever added, so a stale
// or partial write never removes earlier achievements.
func (s *Store) SaveProgress(ctx context.Context, uid string, p Progress) error {
	if uid == "" {
		return errors.New("save progress: empty user id")
	}
	now := s.now().UTC()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		b := builder()
		upsert := b.Insert("progress").
			Columns(append([]string{"user_id"}, progressColumns...)...).
			Values(uid, p.Persona, p.CourseMode, p.Profession, p.CurrentIndex,
				p.TotalPoints, p.Theme, p.AnalogyTheme, now).
			OnConflict(
				entsql.ConflictColumns("user_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					for _, c := range progressColumns {
						u.SetExcluded(c)
					}
				}),
			)
		if _, err := exec(ctx, tx, upsert); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		if err := insertSet(ctx, tx, "completed_steps", "step_id", "completed_at", uid, p.CompletedSteps, now); err != nil {
			return err
		}
		return insertSet(ctx, tx, "achieved_badges", "badge_id", "achieved_at", uid, p.AchievedBadges, now)
	})
}

func insertSet(ctx context.Context, tx *sql.Tx, table, col, atCol, uid string, values []string, at time.Time) error {
	if len(values) == 0 {
		return nil
	}
	ins := builder().Insert(table).Columns("user_id", col, atCol)
	for _, v := range values {
		ins.Values(uid, v, at)
	}
	ins.OnConflict(entsql.ConflictColumns("user_id", col), entsql.DoNothing())
	if _, err := exec(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// UpdateSettings changes only the presentation preferences of a record.
func (s *Store) UpdateSettings(ctx context.Context, uid, theme, analogyTheme string) error {
	upd := builder().Update("progress").
		Set("theme", theme).
		Set("analogy_theme", analogyTheme).
		Set("updated_at", s.now().UTC()).
		Where(entsql.EQ("user_id", uid))
	res, err := exec(ctx, s.db, upd)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update settings for %q: %w", uid, ErrNotFound)
	}
	return nil
}

// ClearProgress deletes a user's progress along with their completed
// steps and badges.
func (s *Store) ClearProgress(ctx context.Context, uid string) error {
	del := builder().Delete("progress").Where(entsql.EQ("user_id", uid))
	if _, err := exec(ctx, s.db, del); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

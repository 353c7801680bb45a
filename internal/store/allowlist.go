package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAllowlisted reports whether the email may use the application.
// Comparison is case-insensitive.
func (s *Store) IsAllowlisted(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	b := builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table("allowlist")).
		Where(entsql.EQ("email", email)).
		Query()

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check allowlist: %w", err)
	}
	return n > 0, nil
}

// Allow adds an email to the allowlist. Adding an existing email is a no-op.
func (s *Store) Allow(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errors.New("allow: empty email")
	}
	ins := builder().Insert("allowlist").
		Columns("email", "added_at").
		Values(email, s.now().UTC()).
		OnConflict(entsql.ConflictColumns("email"), entsql.DoNothing())
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("allow %q: %w", email, err)
	}
	return nil
}

// Revoke removes an email from the allowlist.
func (s *Store) Revoke(ctx context.Context, email string) error {
	del := builder().Delete("allowlist").Where(entsql.EQ("email", normalizeEmail(email)))
	res, err := exec(ctx, s.db, del)
	if err != nil {
		return fmt.Errorf("revoke %q: %w", email, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("revoke %q: %w", email, ErrNotFound)
	}
	return nil
}

// AllowlistEntry is one allowlisted email.
type AllowlistEntry struct {
	Email   string
	AddedAt time.Time
}

// Allowlist returns every allowlisted email in alphabetical order.
func (s *Store) Allowlist(ctx context.Context) ([]AllowlistEntry, error) {
	b := builder()
	query, args := b.Select("email", "added_at").
		From(b.Table("allowlist")).
		OrderBy("email").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list allowlist: %w", err)
	}
	defer rows.Close()

	var out []AllowlistEntry
	for rows.Next() {
		var e AllowlistEntry
		if err := rows.Scan(&e.Email, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan allowlist: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// User is the stored identity record created on first sign-in.
type User struct {
	UID       string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnsureUser creates the user record if it does not exist yet and keeps
// the name and email current.
func (s *Store) EnsureUser(ctx context.Context, u User) error {
	if u.UID == "" {
		return errors.New("ensure user: empty uid")
	}
	now := s.now().UTC()
	ins := builder().Insert("users").
		Columns("uid", "email", "name", "created_at", "updated_at").
		Values(u.UID, normalizeEmail(u.Email), u.Name, now, now).
		OnConflict(
			entsql.ConflictColumns("uid"),
			entsql.ResolveWith(func(set *entsql.UpdateSet) {
				set.SetExcluded("email")
				set.SetExcluded("name")
				set.SetExcluded("updated_at")
			}),
		)
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// UserByEmail looks up a stored user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	b := builder()
	query, args := b.Select("uid", "email", "name", "created_at", "updated_at").
		From(b.Table("users")).
		Where(entsql.EQ("email", normalizeEmail(email))).
		Limit(1).
		Query()

	var u User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.UID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &u, nil
}

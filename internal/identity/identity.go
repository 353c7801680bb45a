// Package identity signs learners in and out and issues the tokens the
// HTTP service uses to recognise them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultAdminEmail is granted the admin view when nothing else is configured.
const DefaultAdminEmail = "admin@coacha.ai"

var (
	// ErrInvalidEmail is returned for an empty or malformed address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrSignedOut is returned by operations that need a signed-in user.
	ErrSignedOut = errors.New("no user signed in")
)

// User is a signed-in learner.
type User struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Provider signs users in and out and reports identity changes.
type Provider interface {
	SignIn(ctx context.Context) (*User, error)
	SignOut(ctx context.Context) error
	// OnIdentityChanged registers fn to be called with the new user, or nil
	// after sign-out. The returned func removes the registration.
	OnIdentityChanged(fn func(*User)) (unsubscribe func())
}

// NormalizeEmail lower-cases and trims an address and checks its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}
	return email, nil
}

// IsAdminEmail reports whether email is the configured admin address.
func IsAdminEmail(email, adminEmail string) bool {
	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(adminEmail))
}

// UIDFor derives a stable user id from an email address, so the same
// learner maps to the same progress row on every sign-in.
func UIDFor(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

// NewUser builds a User for email, deriving the uid and admin flag.
func NewUser(email, name, adminEmail string) (*User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return &User{
		UID:     UIDFor(email),
		Name:    name,
		Email:   email,
		IsAdmin: IsAdminEmail(email, adminEmail),
	}, nil
}

// LocalConfig configures the LocalProvider.
type LocalConfig struct {
	Email      string
	Name       string
	AdminEmail string
}

// LocalProvider signs in a single configured user. The terminal front end
// and the per-user machines of the HTTP service use it.
type LocalProvider struct {
	cfg LocalConfig

	mu      sync.Mutex
	current *User
	subs    map[int]func(*User)
	nextSub int
}

// NewLocalProvider creates a provider for cfg.Email.
func NewLocalProvider(cfg LocalConfig) *LocalProvider {
	return &LocalProvider{cfg: cfg, subs: make(map[int]func(*User))}
}

func (p *LocalProvider) SignIn(ctx context.Context) (*User, error) {
	u, err := NewUser(p.cfg.Email, p.cfg.Name, p.cfg.AdminEmail)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.current = u
	p.mu.Unlock()
	p.notify(u)
	return u, nil
}

func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	was := p.current
	p.current = nil
	p.mu.Unlock()
	if was != nil {
		p.notify(nil)
	}
	return nil
}

// Current returns the signed-in user, or nil.
func (p *LocalProvider) Current() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *LocalProvider) OnIdentityChanged(fn func(*User)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) notify(u *User) {
	p.mu.Lock()
	fns := make([]func(*User), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

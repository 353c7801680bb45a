package server

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/coacha/internal/catalog"
	"github.com/abhisek/coacha/internal/grading"
	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/metrics"
	"github.com/abhisek/coacha/internal/session"
	"github.com/abhisek/coacha/internal/store"
)

// learner is one user's progression machine. The machine is
// single-owner, so every access goes through mu. Tutor calls are made
// with mu released and their results are applied after re-locking.
type learner struct {
	mu      sync.Mutex
	machine *session.Machine
}

type learnerDeps struct {
	catalog    *catalog.Catalog
	store      *store.Store
	adminEmail string
	classifier grading.Classifier
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// learners holds the machines of signed-in users, keyed by uid.
type learners struct {
	deps learnerDeps

	mu    sync.Mutex
	byUID map[string]*learner
}

func newLearners(d learnerDeps) *learners {
	return &learners{deps: d, byUID: make(map[string]*learner)}
}

// get returns the user's machine, signing it in on first use. Users who
// are not allowlisted get session.ErrNotAllowlisted and no machine. The
// allowlist is re-checked on every call, so revoking an email ends any
// session that is already running.
func (l *learners) get(ctx context.Context, u *identity.User) (*learner, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lr, ok := l.byUID[u.UID]; ok {
		if err := l.stillAllowed(ctx, u); err != nil {
			delete(l.byUID, u.UID)
			lr.mu.Lock()
			if lerr := lr.machine.Logout(ctx); lerr != nil {
				l.deps.logger.Warn("sign out revoked learner", zap.String("uid", u.UID), zap.Error(lerr))
			}
			lr.mu.Unlock()
			return nil, err
		}
		return lr, nil
	}

	ident := identity.NewLocalProvider(identity.LocalConfig{
		Email:      u.Email,
		Name:       u.Name,
		AdminEmail: l.deps.adminEmail,
	})
	m := session.New(session.Config{
		Catalog:    l.deps.catalog,
		Store:      l.deps.store,
		Identity:   ident,
		Classifier: l.deps.classifier,
		Logger:     l.deps.logger.With(zap.String("uid", u.UID)),
		Metrics:    l.deps.metrics,
	})
	signed, err := ident.SignIn(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.IdentityChanged(ctx, signed); err != nil {
		return nil, err
	}

	lr := &learner{machine: m}
	l.byUID[u.UID] = lr
	return lr, nil
}

// stillAllowed fails closed: a storage error counts as not allowlisted.
func (l *learners) stillAllowed(ctx context.Context, u *identity.User) error {
	ok, err := l.deps.store.IsAllowlisted(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrNotAllowlisted, err)
	}
	if !ok {
		return session.ErrNotAllowlisted
	}
	return nil
}

func (l *learners) lookup(uid string) (*learner, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lr, ok := l.byUID[uid]
	return lr, ok
}

// drop forgets the user's machine.
func (l *learners) drop(uid string) {
	l.mu.Lock()
	delete(l.byUID, uid)
	l.mu.Unlock()
}

func (l *learners) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byUID)
}

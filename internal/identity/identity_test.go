package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Ada@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got)

	for _, bad := range []string{"", "   ", "not-an-email", "Ada <ada@example.com>"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("Ada@Example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Name)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, UIDFor("ada@example.com"), u.UID)

	again, _ := NewUser("ada@example.com", "Ada", "")
	assert.Equal(t, u.UID, again.UID, "uid must be stable per email")

	admin, err := NewUser("ADMIN@coacha.ai", "Boss", "")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	custom, _ := NewUser("ops@example.com", "", "ops@example.com")
	assert.True(t, custom.IsAdmin)
}

func TestLocalProvider_NotifiesSubscribers(t *testing.T) {
	p := NewLocalProvider(LocalConfig{Email: "kid@example.com", Name: "Kid"})

	var seen []*User
	unsubscribe := p.OnIdentityChanged(func(u *User) { seen = append(seen, u) })

	u, err := p.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, u, p.Current())

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, p.Current())

	require.Len(t, seen, 2)
	assert.Equal(t, "kid@example.com", seen[0].Email)
	assert.Nil(t, seen[1])

	unsubscribe()
	_, _ = p.SignIn(context.Background())
	assert.Len(t, seen, 2)
}

func TestLocalProvider_SignOutTwiceNotifiesOnce(t *testing.T) {
	p := NewLocalProvider(LocalConfig{Email: "a@example.com"})
	calls := 0
	p.OnIdentityChanged(func(*User) { calls++ })

	_, _ = p.SignIn(context.Background())
	_ = p.SignOut(context.Background())
	_ = p.SignOut(context.Background())
	assert.Equal(t, 2, calls)
}

func TestLocalProvider_InvalidEmail(t *testing.T) {
	p := NewLocalProvider(LocalConfig{})
	_, err := p.SignIn(context.Background())
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("0123456789abcdef0123"), time.Hour, "admin@coacha.ai")
	require.NoError(t, err)

	u, _ := NewUser("admin@coacha.ai", "Admin", "")
	token, err := issuer.Issue(u)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.UID, got.UID)
	assert.Equal(t, "Admin", got.Name)
	assert.True(t, got.IsAdmin)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	secret := []byte("0123456789abcdef0123")
	issuer, err := NewTokenIssuer(secret, time.Minute, "")
	require.NoError(t, err)
	u, _ := NewUser("ada@example.com", "", "")

	token, err := issuer.Issue(u)
	require.NoError(t, err)

	other, _ := NewTokenIssuer([]byte("another-secret-value!"), time.Minute, "")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	_, err := NewTokenIssuer([]byte("short"), time.Hour, "")
	assert.Error(t, err)
}

package session

import (
	"context"
	"net/url"
	"time"
)

const (
	// TokenKey is the storage key holding the raw bearer credential.
	TokenKey = "token"

	// TokenQueryParam is the query parameter carrying the credential on the
	// post-login redirect from the identity provider.
	TokenQueryParam = "token"

	welcomeKeyPrefix = "welcome_modal_dismissed_"
	welcomeDismissed = "true"
)

// WelcomeKey returns the storage key for a role's welcome-dismissed marker.
func WelcomeKey(role Role) string {
	return welcomeKeyPrefix + string(role)
}

// Manager is the single source of truth for "who is the current user, and are
// they still authenticated". It is an explicit session context constructed
// once and handed to every component that needs it; there is no package-level
// singleton. All failures degrade to "no session" and never panic.
type Manager struct {
	storage Storage
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewManager binds a Manager to its storage backend.
func NewManager(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CaptureFromRedirect inspects the URL for a credential carried back from the
// identity provider. A decodable credential is persisted and its claims
// returned; a credential that fails to decode is never persisted, so the
// no-session invariant stays clean. Returns nil when the URL carries nothing
// usable.
func (m *Manager) CaptureFromRedirect(ctx context.Context, u *url.URL) *Claims {
	if u == nil {
		return nil
	}
	raw := u.Query().Get(TokenQueryParam)
	if raw == "" {
		return nil
	}
	claims, err := Decode(raw)
	if err != nil {
		return nil
	}
	if err := m.storage.Set(ctx, TokenKey, raw); err != nil {
		return nil
	}
	return &claims
}

// CurrentClaims resolves the persisted credential into claims. An absent,
// malformed or expired credential yields nil; expiry additionally tears down
// the persisted state so a dead credential is not kept around.
func (m *Manager) CurrentClaims(ctx context.Context) *Claims {
	raw, ok, err := m.storage.Get(ctx, TokenKey)
	if err != nil || !ok || raw == "" {
		return nil
	}
	claims, err := Decode(raw)
	if err != nil {
		return nil
	}
	if IsExpired(claims, m.now()) {
		m.Logout(ctx)
		return nil
	}
	return &claims
}

// Token returns the raw persisted credential, for attaching as a bearer
// header. Empty when no usable session exists.
func (m *Manager) Token(ctx context.Context) string {
	if m.CurrentClaims(ctx) == nil {
		return ""
	}
	raw, _, _ := m.storage.Get(ctx, TokenKey)
	return raw
}

// Logout removes the credential and every role's welcome-dismissed marker.
// It is purely local state teardown; redirecting the user afterwards is the
// caller's responsibility.
func (m *Manager) Logout(ctx context.Context) {
	_ = m.storage.Delete(ctx, TokenKey)
	for _, role := range KnownRoles {
		_ = m.storage.Delete(ctx, WelcomeKey(role))
	}
}

// DismissWelcome records that the one-time welcome panel was dismissed for
// the given role. The marker survives until logout.
func (m *Manager) DismissWelcome(ctx context.Context, role Role) {
	_ = m.storage.Set(ctx, WelcomeKey(role), welcomeDismissed)
}

// WelcomeDismissed reports whether the welcome panel was already dismissed
// for the given role.
func (m *Manager) WelcomeDismissed(ctx context.Context, role Role) bool {
	v, ok, err := m.storage.Get(ctx, WelcomeKey(role))
	if err != nil || !ok {
		return false
	}
	return v == welcomeDismissed
}

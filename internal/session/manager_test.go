package session

import (
	"context"
	"net/url"
	"testing"
	"time"
)

func managerAt(storage Storage, at time.Time) *Manager {
	return NewManager(storage, WithClock(func() time.Time { return at }))
}

func TestCaptureFromRedirectPersistsDecodableCredential(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := NewManager(storage)

	raw := encodeClaims(t, map[string]any{"user_type": "aluno", "user_id": 3})
	u, _ := url.Parse("/aluno/dashboard?token=" + url.QueryEscape(raw))

	claims := m.CaptureFromRedirect(ctx, u)
	if claims == nil {
		t.Fatal("expected claims from redirect URL")
	}
	if got, ok, _ := storage.Get(ctx, TokenKey); !ok || got != raw {
		t.Fatalf("stored token = %q, want the redirect credential", got)
	}
}

func TestCaptureFromRedirectNeverPersistsMalformedCredential(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := NewManager(storage)

	u, _ := url.Parse("/aluno/dashboard?token=garbage")
	if claims := m.CaptureFromRedirect(ctx, u); claims != nil {
		t.Fatal("expected nil claims for malformed credential")
	}
	if _, ok, _ := storage.Get(ctx, TokenKey); ok {
		t.Fatal("malformed credential must not be persisted")
	}
}

func TestCurrentClaimsExpiredCredentialTearsDownSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	storage := NewMemoryStorage()
	m := managerAt(storage, now)

	exp := now.Add(-time.Minute).Unix()
	raw := encodeClaims(t, map[string]any{"user_type": "aluno", "exp": exp})
	_ = storage.Set(ctx, TokenKey, raw)
	m.DismissWelcome(ctx, RoleAluno)

	if claims := m.CurrentClaims(ctx); claims != nil {
		t.Fatal("expected nil claims for expired credential")
	}
	if _, ok, _ := storage.Get(ctx, TokenKey); ok {
		t.Fatal("expired credential should have been removed")
	}
	if m.WelcomeDismissed(ctx, RoleAluno) {
		t.Fatal("welcome marker should have been removed with the session")
	}
}

func TestTokenOnlyReturnsUsableCredential(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := NewManager(storage)

	if m.Token(ctx) != "" {
		t.Fatal("expected empty token with no session")
	}

	raw := encodeClaims(t, map[string]any{"user_type": "professor"})
	_ = storage.Set(ctx, TokenKey, raw)
	if m.Token(ctx) != raw {
		t.Fatal("expected raw credential for a live session")
	}
}

func TestLogoutClearsEveryRolesWelcomeMarker(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	m := NewManager(storage)

	raw := encodeClaims(t, map[string]any{"user_type": "admin"})
	_ = storage.Set(ctx, TokenKey, raw)
	for _, role := range KnownRoles {
		m.DismissWelcome(ctx, role)
	}

	m.Logout(ctx)

	if _, ok, _ := storage.Get(ctx, TokenKey); ok {
		t.Fatal("token should be gone after logout")
	}
	for _, role := range KnownRoles {
		if m.WelcomeDismissed(ctx, role) {
			t.Fatalf("welcome marker for %s should be gone after logout", role)
		}
	}
}

func TestWelcomeMarkersAreScopedPerRole(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStorage())

	m.DismissWelcome(ctx, RoleAluno)
	if !m.WelcomeDismissed(ctx, RoleAluno) {
		t.Fatal("aluno marker should be set")
	}
	if m.WelcomeDismissed(ctx, RoleProfessor) {
		t.Fatal("professor marker must be independent of aluno's")
	}
}

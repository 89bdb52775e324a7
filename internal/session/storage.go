package session

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Storage is the key-value persistence behind a Manager. Implementations must
// treat an absent key as ("", false, nil); errors are reserved for backend
// failures, which the Manager degrades to "no session".
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is an in-process Storage, used in tests and as a fallback.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// CookieStorage persists session keys as HTTP cookies, the server-side
// rendition of origin-scoped browser storage: values survive reloads and are
// shared by every tab of the same origin. A CookieStorage is bound to one
// request/response pair; writes are visible to later reads in the same
// request through an overlay.
type CookieStorage struct {
	w http.ResponseWriter
	r *http.Request

	mu      sync.Mutex
	overlay map[string]*string // nil value marks a deletion
	maxAge  time.Duration
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{
		w:       w,
		r:       r,
		overlay: make(map[string]*string),
		maxAge:  30 * 24 * time.Hour,
	}
}

func (s *CookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	if v, ok := s.overlay[key]; ok {
		s.mu.Unlock()
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	s.mu.Unlock()
	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	return c.Value, true, nil
}

func (s *CookieStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.overlay[key] = &value
	s.mu.Unlock()
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.overlay[key] = nil
	s.mu.Unlock()
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

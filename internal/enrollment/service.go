package enrollment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrInvalidDeadline = errors.New("enrollment: invalid deadline")

// Store persists the single enrollment window record.
type Store interface {
	GetWindow(ctx context.Context) (Window, error)
	SetWindow(ctx context.Context, w Window) error
}

// Service owns reads and admin writes of the enrollment window. Reads that
// fail at the store level degrade to a closed window: a total information
// vacuum must not let submissions through, unlike the unparseable-deadline
// case handled by CanSubmit.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the current window, or the closed default alongside the
// store error.
func (s *Service) Window(ctx context.Context) (Window, error) {
	w, err := s.store.GetWindow(ctx)
	if err != nil {
		return Closed(), err
	}
	return w, nil
}

// CanSubmitNow evaluates the window against the service clock, failing
// closed when the window cannot be fetched.
func (s *Service) CanSubmitNow(ctx context.Context) bool {
	w, err := s.store.GetWindow(ctx)
	if err != nil {
		return false
	}
	return CanSubmit(w, s.now())
}

// Open opens the window, keeping any configured deadline.
func (s *Service) Open(ctx context.Context) (Window, error) {
	return s.update(ctx, func(w *Window) error {
		w.Aberto = true
		return nil
	})
}

// Close closes the window.
func (s *Service) Close(ctx context.Context) (Window, error) {
	return s.update(ctx, func(w *Window) error {
		w.Aberto = false
		return nil
	})
}

// SetDeadline sets the submission deadline and opens the window, mirroring
// the admin panel which always submits aberto=true together with a new
// deadline. An empty deadline clears it. Admin input is validated here even
// though the evaluator tolerates bad stored data.
func (s *Service) SetDeadline(ctx context.Context, deadline string) (Window, error) {
	deadline = strings.TrimSpace(deadline)
	if deadline != "" {
		if _, ok := parseDeadline(deadline); !ok {
			return Closed(), fmt.Errorf("%w: %q", ErrInvalidDeadline, deadline)
		}
	}
	return s.update(ctx, func(w *Window) error {
		w.Aberto = true
		if deadline == "" {
			w.DataLimite = nil
		} else {
			w.DataLimite = &deadline
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, mutate func(*Window) error) (Window, error) {
	w, err := s.store.GetWindow(ctx)
	if err != nil {
		return Closed(), err
	}
	if err := mutate(&w); err != nil {
		return Closed(), err
	}
	if err := s.store.SetWindow(ctx, w); err != nil {
		return Closed(), err
	}
	return w, nil
}

// InMemoryStore holds the window in process, for tests and DB-less runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	window Window
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{window: Closed()}
}

func (s *InMemoryStore) GetWindow(context.Context) (Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window, nil
}

func (s *InMemoryStore) SetWindow(_ context.Context, w Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = w
	return nil
}

package enrollment

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) GetWindow(context.Context) (Window, error) {
	return Window{}, errors.New("store down")
}

func (failingStore) SetWindow(context.Context, Window) error {
	return errors.New("store down")
}

func TestCanSubmitNowFailsClosedOnStoreError(t *testing.T) {
	svc := NewService(failingStore{})
	if svc.CanSubmitNow(context.Background()) {
		t.Fatal("store failure must read as closed")
	}
}

func TestWindowReturnsClosedDefaultOnStoreError(t *testing.T) {
	svc := NewService(failingStore{})
	w, err := svc.Window(context.Background())
	if err == nil {
		t.Fatal("expected store error to surface")
	}
	if w.Aberto {
		t.Fatal("fallback window must be closed")
	}
}

func TestSetDeadlineValidatesAdminInput(t *testing.T) {
	svc := NewService(NewInMemoryStore())

	if _, err := svc.SetDeadline(context.Background(), "31/12/2026"); !errors.Is(err, ErrInvalidDeadline) {
		t.Fatalf("err = %v, want ErrInvalidDeadline", err)
	}

	w, err := svc.SetDeadline(context.Background(), "2026-12-31")
	if err != nil {
		t.Fatalf("SetDeadline failed: %v", err)
	}
	if !w.Aberto || w.DataLimite == nil || *w.DataLimite != "2026-12-31" {
		t.Fatalf("window = %+v, want open with deadline", w)
	}
}

func TestSetDeadlineEmptyClearsDeadlineAndOpens(t *testing.T) {
	store := NewInMemoryStore()
	_ = store.SetWindow(context.Background(), Window{Aberto: false, DataLimite: strptr("2026-01-01")})

	svc := NewService(store)
	w, err := svc.SetDeadline(context.Background(), "")
	if err != nil {
		t.Fatalf("SetDeadline failed: %v", err)
	}
	if !w.Aberto || w.DataLimite != nil {
		t.Fatalf("window = %+v, want open without deadline", w)
	}
}

func TestOpenCloseRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store, WithClock(func() time.Time { return now }))

	if svc.CanSubmitNow(ctx) {
		t.Fatal("fresh store starts closed")
	}

	if _, err := svc.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !svc.CanSubmitNow(ctx) {
		t.Fatal("window should accept submissions after Open")
	}

	if _, err := svc.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if svc.CanSubmitNow(ctx) {
		t.Fatal("window should refuse submissions after Close")
	}
}

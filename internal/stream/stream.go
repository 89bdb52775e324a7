// Package stream fan-outs portal events to dashboard subscribers so open
// pages refresh without polling.
package stream

import (
	"context"
	"sync"
	"time"
)

// Event types published by the portal.
const (
	TypeProjectSubmitted = "project_submitted"
	TypeProjectApproved  = "project_approved"
	TypeWindowChanged    = "enrollment_window_changed"
)

// Event is a dashboard refresh notification.
type Event struct {
	Type         string    `json:"type"`
	ProjetoID    int64     `json:"projeto_id,omitempty"`
	OrientadorID int64     `json:"orientador_id,omitempty"`
	AlunoID      int64     `json:"aluno_id,omitempty"`
	Aberto       *bool     `json:"aberto,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stream fan-outs events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// Subscribers reports the current subscriber count, exposed as a gauge.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

package projects

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store persists projects and their document metadata.
type Store interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int64) (*Project, error)
	ListByStudent(ctx context.Context, alunoID int64) ([]Project, error)
	ListByAdvisor(ctx context.Context, orientadorID int64, status Status) ([]Project, error)
	Approve(ctx context.Context, id int64, when time.Time) error
	ListAdvisors(ctx context.Context) ([]AdvisorSummary, error)
	ListDocuments(ctx context.Context, projetoID int64) ([]Document, error)
}

// Window gates submissions on the admin-configured enrollment period.
type Window interface {
	CanSubmitNow(ctx context.Context) bool
}

// Service implements the proposal lifecycle.
type Service struct {
	store  Store
	window Window
	now    func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, window Window, opts ...Option) *Service {
	s := &Service{store: store, window: window, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit registers a new proposal for the student. Submissions are refused
// while the enrollment window is closed or past its deadline.
func (s *Service) Submit(ctx context.Context, alunoID int64, req SubmitRequest) (*Project, error) {
	if s.window != nil && !s.window.CanSubmitNow(ctx) {
		return nil, ErrEnrollmentClosed
	}
	req.Titulo = strings.TrimSpace(req.Titulo)
	req.Descricao = strings.TrimSpace(req.Descricao)
	if req.Titulo == "" {
		return nil, fmt.Errorf("%w: titulo is required", ErrInvalidInput)
	}
	if req.Descricao == "" {
		return nil, fmt.Errorf("%w: descricao is required", ErrInvalidInput)
	}
	if req.OrientadorID <= 0 {
		return nil, fmt.Errorf("%w: orientador_id is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	p := &Project{
		Codigo:        ProjectCode(now.Year(), req.OrientadorID, alunoID),
		Titulo:        req.Titulo,
		Descricao:     req.Descricao,
		OrientadorID:  req.OrientadorID,
		AlunoID:       alunoID,
		Status:        StatusPendente,
		DataSubmissao: now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Approve activates a pending proposal. The project must belong to the
// approving advisor; projects of other advisors are reported as not found
// rather than forbidden, so advisors cannot probe each other's queues.
func (s *Service) Approve(ctx context.Context, orientadorID, projetoID int64) (*Project, error) {
	p, err := s.store.GetProject(ctx, projetoID)
	if err != nil {
		return nil, err
	}
	if p.OrientadorID != orientadorID {
		return nil, ErrNotFound
	}
	if p.Status == StatusAtivo {
		return nil, ErrAlreadyApproved
	}
	when := s.now().UTC()
	if err := s.store.Approve(ctx, projetoID, when); err != nil {
		return nil, err
	}
	p.Status = StatusAtivo
	p.DataAprovacao = &when
	return p, nil
}

// MyProjects lists the student's proposals, newest first.
func (s *Service) MyProjects(ctx context.Context, alunoID int64) ([]Project, error) {
	return s.store.ListByStudent(ctx, alunoID)
}

// Pending lists the advisor's pending proposals.
func (s *Service) Pending(ctx context.Context, orientadorID int64) ([]Project, error) {
	return s.store.ListByAdvisor(ctx, orientadorID, StatusPendente)
}

// Active lists the advisor's approved projects.
func (s *Service) Active(ctx context.Context, orientadorID int64) ([]Project, error) {
	return s.store.ListByAdvisor(ctx, orientadorID, StatusAtivo)
}

// Advisors lists advisors with their active-project counts.
func (s *Service) Advisors(ctx context.Context) ([]AdvisorSummary, error) {
	return s.store.ListAdvisors(ctx)
}

// Documents lists the uploaded-file metadata of a project the caller is
// attached to, either as its student or its advisor.
func (s *Service) Documents(ctx context.Context, userID, projetoID int64) ([]Document, error) {
	p, err := s.store.GetProject(ctx, projetoID)
	if err != nil {
		return nil, err
	}
	if p.AlunoID != userID && p.OrientadorID != userID {
		return nil, ErrNotFound
	}
	return s.store.ListDocuments(ctx, projetoID)
}

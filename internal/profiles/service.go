package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// Service exposes profile reads and updates plus the first-login
// provisioning used by the auth flow.
type Service struct {
	store Store
	now   func() time.Time
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

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve implements auth.Directory: it finds the local account for the
// identity, creating it on first login. Admins are provisioned as advisors
// flagged coordenador, matching the original onboarding.
func (s *Service) Resolve(ctx context.Context, role session.Role, id auth.Identity) (auth.Account, bool, error) {
	switch role {
	case session.RoleProfessor, session.RoleAdmin:
		return s.resolveAdvisor(ctx, id)
	default:
		return s.resolveStudent(ctx, id)
	}
}

func (s *Service) resolveStudent(ctx context.Context, id auth.Identity) (auth.Account, bool, error) {
	existing, err := s.store.FindStudentByEmail(ctx, id.Email)
	if err == nil {
		return studentAccount(existing), false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return auth.Account{}, false, err
	}
	student := &Student{
		Nome:      id.DisplayName,
		Matricula: MatriculaFromEmail(id.Email),
		Email:     id.Email,
		Curso:     defaultString(id.Department, "Não especificado"),
		Semestre:  1,
		Telefone:  id.MobilePhone,
		Status:    "Ativo",
		CriadoEm:  s.now().UTC(),
	}
	if err := s.store.CreateStudent(ctx, student); err != nil {
		return auth.Account{}, false, err
	}
	return studentAccount(student), true, nil
}

func (s *Service) resolveAdvisor(ctx context.Context, id auth.Identity) (auth.Account, bool, error) {
	existing, err := s.store.FindAdvisorByEmail(ctx, id.Email)
	if err == nil {
		return advisorAccount(existing), false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return auth.Account{}, false, err
	}
	advisor := &Advisor{
		Nome:          id.DisplayName,
		Email:         id.Email,
		Telefone:      id.MobilePhone,
		Codigo:        AdvisorCodeFromEmail(id.Email),
		AreaPesquisa:  defaultString(id.Department, "Não especificada"),
		Titulacao:     defaultString(id.JobTitle, "Professor"),
		IsCoordenador: auth.IsCoordenadorEmail(id.Email),
		CriadoEm:      s.now().UTC(),
	}
	if err := s.store.CreateAdvisor(ctx, advisor); err != nil {
		return auth.Account{}, false, err
	}
	return advisorAccount(advisor), true, nil
}

// Student returns the student profile by id.
func (s *Service) Student(ctx context.Context, id int64) (*Student, error) {
	return s.store.GetStudent(ctx, id)
}

// Advisor returns the advisor profile by id.
func (s *Service) Advisor(ctx context.Context, id int64) (*Advisor, error) {
	return s.store.GetAdvisor(ctx, id)
}

// UpdateStudent applies the given field updates.
func (s *Service) UpdateStudent(ctx context.Context, id int64, upd StudentUpdate) (*Student, error) {
	return s.store.UpdateStudent(ctx, id, upd)
}

// UpdateAdvisor applies the given field updates.
func (s *Service) UpdateAdvisor(ctx context.Context, id int64, upd AdvisorUpdate) (*Advisor, error) {
	return s.store.UpdateAdvisor(ctx, id, upd)
}

// Advisors lists every advisor, for the student project form.
func (s *Service) Advisors(ctx context.Context) ([]Advisor, error) {
	return s.store.ListAdvisors(ctx)
}

func studentAccount(st *Student) auth.Account {
	return auth.Account{
		ID:        st.ID,
		Nome:      st.Nome,
		Email:     st.Email,
		Matricula: st.Matricula,
		Curso:     st.Curso,
		Semestre:  st.Semestre,
	}
}

func advisorAccount(a *Advisor) auth.Account {
	return auth.Account{
		ID:            a.ID,
		Nome:          a.Nome,
		Email:         a.Email,
		IsCoordenador: a.IsCoordenador,
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

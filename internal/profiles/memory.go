package profiles

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemory keeps profiles in process, for tests and DB-less runs.
type InMemory struct {
	mu       sync.RWMutex
	students map[int64]*Student
	advisors map[int64]*Advisor
	nextID   int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		students: make(map[int64]*Student),
		advisors: make(map[int64]*Advisor),
		nextID:   1,
	}
}

func (m *InMemory) FindStudentByEmail(_ context.Context, email string) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.students {
		if strings.EqualFold(s.Email, email) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *InMemory) GetStudent(_ context.Context, id int64) (*Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (m *InMemory) CreateStudent(_ context.Context, s *Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	m.nextID++
	clone := *s
	m.students[s.ID] = &clone
	return nil
}

func (m *InMemory) UpdateStudent(_ context.Context, id int64, upd StudentUpdate) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Nome != nil {
		s.Nome = *upd.Nome
	}
	if upd.Curso != nil {
		s.Curso = *upd.Curso
	}
	if upd.Semestre != nil {
		s.Semestre = *upd.Semestre
	}
	if upd.Telefone != nil {
		s.Telefone = *upd.Telefone
	}
	if upd.DataNascimento != nil {
		s.DataNascimento = upd.DataNascimento
	}
	clone := *s
	return &clone, nil
}

func (m *InMemory) FindAdvisorByEmail(_ context.Context, email string) (*Advisor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.advisors {
		if strings.EqualFold(a.Email, email) {
			clone := *a
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *InMemory) GetAdvisor(_ context.Context, id int64) (*Advisor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.advisors[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *InMemory) CreateAdvisor(_ context.Context, a *Advisor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID
	m.nextID++
	clone := *a
	m.advisors[a.ID] = &clone
	return nil
}

func (m *InMemory) UpdateAdvisor(_ context.Context, id int64, upd AdvisorUpdate) (*Advisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.advisors[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Nome != nil {
		a.Nome = *upd.Nome
	}
	if upd.Telefone != nil {
		a.Telefone = *upd.Telefone
	}
	if upd.AreaPesquisa != nil {
		a.AreaPesquisa = *upd.AreaPesquisa
	}
	if upd.Titulacao != nil {
		a.Titulacao = *upd.Titulacao
	}
	if upd.LattesURL != nil {
		a.LattesURL = *upd.LattesURL
	}
	if upd.AreasInteresse != nil {
		a.AreasInteresse = append([]string(nil), (*upd.AreasInteresse)...)
	}
	if upd.Biografia != nil {
		a.Biografia = *upd.Biografia
	}
	clone := *a
	return &clone, nil
}

func (m *InMemory) ListAdvisors(_ context.Context) ([]Advisor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Advisor, 0, len(m.advisors))
	for _, a := range m.advisors {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

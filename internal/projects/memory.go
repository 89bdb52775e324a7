package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
)

// InMemory keeps projects in process, for tests and DB-less runs. Listing
// joins (names, matricula, advisor summaries) are resolved against the
// provided profiles store.
type InMemory struct {
	mu        sync.RWMutex
	projects  map[int64]*Project
	documents map[int64][]Document
	nextID    int64
	profiles  profiles.Store
}

func NewInMemory(profileStore profiles.Store) *InMemory {
	return &InMemory{
		projects:  make(map[int64]*Project),
		documents: make(map[int64][]Document),
		nextID:    1,
		profiles:  profileStore,
	}
}

func (m *InMemory) CreateProject(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	clone := *p
	m.projects[p.ID] = &clone
	return nil
}

func (m *InMemory) GetProject(_ context.Context, id int64) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *InMemory) ListByStudent(ctx context.Context, alunoID int64) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Project
	for _, p := range m.projects {
		if p.AlunoID != alunoID {
			continue
		}
		clone := *p
		m.decorate(ctx, &clone)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataSubmissao.After(out[j].DataSubmissao) })
	return out, nil
}

func (m *InMemory) ListByAdvisor(ctx context.Context, orientadorID int64, status Status) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Project
	for _, p := range m.projects {
		if p.OrientadorID != orientadorID || p.Status != status {
			continue
		}
		clone := *p
		m.decorate(ctx, &clone)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].DataSubmissao, out[j].DataSubmissao
		if status == StatusAtivo {
			if out[i].DataAprovacao != nil {
				ti = *out[i].DataAprovacao
			}
			if out[j].DataAprovacao != nil {
				tj = *out[j].DataAprovacao
			}
		}
		return ti.After(tj)
	})
	return out, nil
}

func (m *InMemory) Approve(_ context.Context, id int64, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = StatusAtivo
	p.DataAprovacao = &when
	return nil
}

func (m *InMemory) ListAdvisors(ctx context.Context) ([]AdvisorSummary, error) {
	if m.profiles == nil {
		return nil, nil
	}
	advisors, err := m.profiles.ListAdvisors(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AdvisorSummary, 0, len(advisors))
	for _, a := range advisors {
		active := 0
		for _, p := range m.projects {
			if p.OrientadorID == a.ID && p.Status == StatusAtivo {
				active++
			}
		}
		out = append(out, AdvisorSummary{
			ID:             a.ID,
			Nome:           a.Nome,
			Email:          a.Email,
			AreaPesquisa:   a.AreaPesquisa,
			Titulacao:      a.Titulacao,
			Areas:          append([]string(nil), a.AreasInteresse...),
			ProjetosAtivos: active,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

// AddDocument registers document metadata, used by seeds and tests.
func (m *InMemory) AddDocument(d Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[d.ProjetoID] = append(m.documents[d.ProjetoID], d)
}

func (m *InMemory) ListDocuments(_ context.Context, projetoID int64) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := append([]Document(nil), m.documents[projetoID]...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].DataUpload.After(docs[j].DataUpload) })
	return docs, nil
}

// decorate fills the joined listing fields. Callers hold at least a read
// lock on m.
func (m *InMemory) decorate(ctx context.Context, p *Project) {
	if m.profiles == nil {
		return
	}
	if a, err := m.profiles.GetAdvisor(ctx, p.OrientadorID); err == nil {
		p.OrientadorNome = a.Nome
	}
	if st, err := m.profiles.GetStudent(ctx, p.AlunoID); err == nil {
		p.AlunoNome = st.Nome
		p.Matricula = st.Matricula
	}
	docs := m.documents[p.ID]
	p.DocumentosCount = len(docs)
	var latest *time.Time
	for i := range docs {
		if latest == nil || docs[i].DataUpload.After(*latest) {
			t := docs[i].DataUpload
			latest = &t
		}
	}
	p.UltimaPostagem = latest
}

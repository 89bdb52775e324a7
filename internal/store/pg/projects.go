package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
)

func (s *Store) CreateProject(ctx context.Context, p *projects.Project) error {
	return s.db.QueryRowContext(ctx, `
		insert into projetos(codigo, titulo, descricao, orientador_id, aluno_id, status, data_submissao)
		values ($1,$2,$3,$4,$5,$6,$7) returning id
	`, p.Codigo, p.Titulo, p.Descricao, p.OrientadorID, p.AlunoID, string(p.Status), p.DataSubmissao).Scan(&p.ID)
}

func (s *Store) GetProject(ctx context.Context, id int64) (*projects.Project, error) {
	var p projects.Project
	var status string
	var aprovacao sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		select id, codigo, titulo, descricao, orientador_id, aluno_id, status, data_submissao, data_aprovacao
		from projetos where id=$1
	`, id).Scan(&p.ID, &p.Codigo, &p.Titulo, &p.Descricao, &p.OrientadorID, &p.AlunoID,
		&status, &p.DataSubmissao, &aprovacao)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, projects.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = projects.Status(status)
	if aprovacao.Valid {
		p.DataAprovacao = &aprovacao.Time
	}
	return &p, nil
}

func (s *Store) ListByStudent(ctx context.Context, alunoID int64) ([]projects.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		select p.id, p.codigo, p.titulo, p.descricao, p.orientador_id, p.aluno_id, p.status,
		       p.data_submissao, p.data_aprovacao, o.nome,
		       (select count(*) from documentos d where d.projeto_id = p.id),
		       (select max(d.data_upload) from documentos d where d.projeto_id = p.id)
		from projetos p
		join orientadores o on p.orientador_id = o.id
		where p.aluno_id = $1
		order by p.data_submissao desc
	`, alunoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projects.Project
	for rows.Next() {
		var p projects.Project
		var status string
		var aprovacao, ultima sql.NullTime
		if err := rows.Scan(&p.ID, &p.Codigo, &p.Titulo, &p.Descricao, &p.OrientadorID, &p.AlunoID,
			&status, &p.DataSubmissao, &aprovacao, &p.OrientadorNome, &p.DocumentosCount, &ultima); err != nil {
			return nil, err
		}
		p.Status = projects.Status(status)
		if aprovacao.Valid {
			p.DataAprovacao = &aprovacao.Time
		}
		if ultima.Valid {
			p.UltimaPostagem = &ultima.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListByAdvisor(ctx context.Context, orientadorID int64, status projects.Status) ([]projects.Project, error) {
	// Pending proposals sort by submission, active ones by approval.
	order := "p.data_submissao desc"
	if status == projects.StatusAtivo {
		order = "p.data_aprovacao desc"
	}
	rows, err := s.db.QueryContext(ctx, `
		select p.id, p.codigo, p.titulo, p.descricao, p.orientador_id, p.aluno_id, p.status,
		       p.data_submissao, p.data_aprovacao, a.nome, a.matricula,
		       (select count(*) from documentos d where d.projeto_id = p.id),
		       (select max(d.data_upload) from documentos d where d.projeto_id = p.id)
		from projetos p
		join alunos a on p.aluno_id = a.id
		where p.orientador_id = $1 and p.status = $2
		order by `+order, orientadorID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projects.Project
	for rows.Next() {
		var p projects.Project
		var st string
		var aprovacao, ultima sql.NullTime
		if err := rows.Scan(&p.ID, &p.Codigo, &p.Titulo, &p.Descricao, &p.OrientadorID, &p.AlunoID,
			&st, &p.DataSubmissao, &aprovacao, &p.AlunoNome, &p.Matricula, &p.DocumentosCount, &ultima); err != nil {
			return nil, err
		}
		p.Status = projects.Status(st)
		if aprovacao.Valid {
			p.DataAprovacao = &aprovacao.Time
		}
		if ultima.Valid {
			p.UltimaPostagem = &ultima.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Approve(ctx context.Context, id int64, when time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update projetos set status=$2, data_aprovacao=$3 where id=$1
	`, id, string(projects.StatusAtivo), when)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return projects.ErrNotFound
	}
	return nil
}

// projectStore adapts Store to projects.Store: both projects.Store and
// profiles.Store require a ListAdvisors method but with different return
// types, so the projects variant lives on this wrapper.
type projectStore struct {
	*Store
}

// Projects returns a view of the store implementing projects.Store.
func (s *Store) Projects() projects.Store { return projectStore{s} }

func (s projectStore) ListAdvisors(ctx context.Context) ([]projects.AdvisorSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		select o.id, o.nome, o.email, coalesce(o.area_pesquisa,''), coalesce(o.titulacao,''),
		       coalesce(o.areas_interesse,''),
		       (select count(*) from projetos p where p.orientador_id = o.id and p.status = 'ativo')
		from orientadores o
		order by o.nome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projects.AdvisorSummary
	for rows.Next() {
		var a projects.AdvisorSummary
		var areas string
		if err := rows.Scan(&a.ID, &a.Nome, &a.Email, &a.AreaPesquisa, &a.Titulacao, &areas, &a.ProjetosAtivos); err != nil {
			return nil, err
		}
		a.Areas = splitAreas(areas)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListDocuments(ctx context.Context, projetoID int64) ([]projects.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, projeto_id, nome, coalesce(tipo,''), coalesce(tamanho_bytes,0), enviado_por, data_upload
		from documentos
		where projeto_id = $1
		order by data_upload desc
	`, projetoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []projects.Document
	for rows.Next() {
		var d projects.Document
		if err := rows.Scan(&d.ID, &d.ProjetoID, &d.Nome, &d.Tipo, &d.TamanhoBytes, &d.EnviadoPor, &d.DataUpload); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
)

const studentColumns = `id, nome, matricula, email, coalesce(curso,''), coalesce(semestre,1),
	coalesce(telefone,''), data_nascimento, coalesce(status,'Ativo'), criado_em`

func scanStudent(row interface{ Scan(...any) error }) (*profiles.Student, error) {
	var st profiles.Student
	var nascimento sql.NullString
	err := row.Scan(&st.ID, &st.Nome, &st.Matricula, &st.Email, &st.Curso, &st.Semestre,
		&st.Telefone, &nascimento, &st.Status, &st.CriadoEm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if nascimento.Valid {
		st.DataNascimento = &nascimento.String
	}
	return &st, nil
}

func (s *Store) FindStudentByEmail(ctx context.Context, email string) (*profiles.Student, error) {
	row := s.db.QueryRowContext(ctx, `select `+studentColumns+` from alunos where lower(email)=lower($1)`, email)
	return scanStudent(row)
}

func (s *Store) GetStudent(ctx context.Context, id int64) (*profiles.Student, error) {
	row := s.db.QueryRowContext(ctx, `select `+studentColumns+` from alunos where id=$1`, id)
	return scanStudent(row)
}

func (s *Store) CreateStudent(ctx context.Context, st *profiles.Student) error {
	return s.db.QueryRowContext(ctx, `
		insert into alunos(nome, matricula, email, curso, semestre, telefone, data_nascimento, status, criado_em)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9) returning id
	`, st.Nome, st.Matricula, st.Email, st.Curso, st.Semestre, st.Telefone,
		st.DataNascimento, st.Status, st.CriadoEm).Scan(&st.ID)
}

func (s *Store) UpdateStudent(ctx context.Context, id int64, upd profiles.StudentUpdate) (*profiles.Student, error) {
	res, err := s.db.ExecContext(ctx, `
		update alunos set
			nome = coalesce($2, nome),
			curso = coalesce($3, curso),
			semestre = coalesce($4, semestre),
			telefone = coalesce($5, telefone),
			data_nascimento = coalesce($6, data_nascimento)
		where id=$1
	`, id, upd.Nome, upd.Curso, upd.Semestre, upd.Telefone, upd.DataNascimento)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, profiles.ErrNotFound
	}
	return s.GetStudent(ctx, id)
}

const advisorColumns = `id, nome, email, coalesce(telefone,''), coalesce(codigo,''),
	coalesce(area_pesquisa,''), coalesce(titulacao,''), coalesce(lattes_url,''),
	coalesce(areas_interesse,''), coalesce(biografia,''), is_coordenador, criado_em`

func scanAdvisor(row interface{ Scan(...any) error }) (*profiles.Advisor, error) {
	var a profiles.Advisor
	var areas string
	err := row.Scan(&a.ID, &a.Nome, &a.Email, &a.Telefone, &a.Codigo,
		&a.AreaPesquisa, &a.Titulacao, &a.LattesURL, &areas, &a.Biografia,
		&a.IsCoordenador, &a.CriadoEm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profiles.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.AreasInteresse = splitAreas(areas)
	return &a, nil
}

// areas_interesse is stored as a comma separated list, as the legacy schema
// had it.
func splitAreas(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinAreas(areas []string) string { return strings.Join(areas, ",") }

func (s *Store) FindAdvisorByEmail(ctx context.Context, email string) (*profiles.Advisor, error) {
	row := s.db.QueryRowContext(ctx, `select `+advisorColumns+` from orientadores where lower(email)=lower($1)`, email)
	return scanAdvisor(row)
}

func (s *Store) GetAdvisor(ctx context.Context, id int64) (*profiles.Advisor, error) {
	row := s.db.QueryRowContext(ctx, `select `+advisorColumns+` from orientadores where id=$1`, id)
	return scanAdvisor(row)
}

func (s *Store) CreateAdvisor(ctx context.Context, a *profiles.Advisor) error {
	return s.db.QueryRowContext(ctx, `
		insert into orientadores(nome, email, telefone, codigo, area_pesquisa, titulacao, lattes_url, areas_interesse, biografia, is_coordenador, criado_em)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) returning id
	`, a.Nome, a.Email, a.Telefone, a.Codigo, a.AreaPesquisa, a.Titulacao,
		a.LattesURL, joinAreas(a.AreasInteresse), a.Biografia, a.IsCoordenador, a.CriadoEm).Scan(&a.ID)
}

func (s *Store) UpdateAdvisor(ctx context.Context, id int64, upd profiles.AdvisorUpdate) (*profiles.Advisor, error) {
	var areas *string
	if upd.AreasInteresse != nil {
		joined := joinAreas(*upd.AreasInteresse)
		areas = &joined
	}
	res, err := s.db.ExecContext(ctx, `
		update orientadores set
			nome = coalesce($2, nome),
			telefone = coalesce($3, telefone),
			area_pesquisa = coalesce($4, area_pesquisa),
			titulacao = coalesce($5, titulacao),
			lattes_url = coalesce($6, lattes_url),
			areas_interesse = coalesce($7, areas_interesse),
			biografia = coalesce($8, biografia)
		where id=$1
	`, id, upd.Nome, upd.Telefone, upd.AreaPesquisa, upd.Titulacao, upd.LattesURL, areas, upd.Biografia)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, profiles.ErrNotFound
	}
	return s.GetAdvisor(ctx, id)
}

func (s *Store) ListAdvisors(ctx context.Context) ([]profiles.Advisor, error) {
	rows, err := s.db.QueryContext(ctx, `select `+advisorColumns+` from orientadores order by nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []profiles.Advisor
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

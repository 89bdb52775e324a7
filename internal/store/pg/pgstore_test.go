package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewWithDB(db), mock
}

func TestGetWindowMissingRowReadsAsClosed(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`select aberto, data_limite from inscricao_periodo`).
		WillReturnRows(sqlmock.NewRows([]string{"aberto", "data_limite"}))

	w, err := store.GetWindow(context.Background())
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if w.Aberto || w.DataLimite != nil {
		t.Fatalf("window = %+v, want closed default", w)
	}
}

func TestGetWindowReturnsStoredDeadline(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`select aberto, data_limite from inscricao_periodo`).
		WillReturnRows(sqlmock.NewRows([]string{"aberto", "data_limite"}).
			AddRow(true, "2026-06-30"))

	w, err := store.GetWindow(context.Background())
	if err != nil {
		t.Fatalf("GetWindow failed: %v", err)
	}
	if !w.Aberto || w.DataLimite == nil || *w.DataLimite != "2026-06-30" {
		t.Fatalf("window = %+v", w)
	}
}

func TestSetWindowUpsertsSingletonRow(t *testing.T) {
	store, mock := mockStore(t)
	limite := "2026-06-30"
	mock.ExpectExec(`insert into inscricao_periodo`).
		WithArgs(true, limite).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetWindow(context.Background(), enrollment.Window{Aberto: true, DataLimite: &limite})
	if err != nil {
		t.Fatalf("SetWindow failed: %v", err)
	}
}

func TestFindStudentByEmailMapsNoRowsToNotFound(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`from alunos where lower\(email\)=lower\(\$1\)`).
		WithArgs("ghost@ibmec.edu.br").
		WillReturnRows(sqlmock.NewRows(studentRowColumns()))

	_, err := store.FindStudentByEmail(context.Background(), "ghost@ibmec.edu.br")
	if !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("err = %v, want profiles.ErrNotFound", err)
	}
}

func TestCreateAdvisorStoresJoinedInterestAreas(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`insert into orientadores`).
		WithArgs("Ana Souza", "ana@professores.ibmec.edu.br", "", "ANA", "Dados", "Professor",
			"", "Machine Learning,Dados", "", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	adv := &profiles.Advisor{
		Nome:           "Ana Souza",
		Email:          "ana@professores.ibmec.edu.br",
		Codigo:         "ANA",
		AreaPesquisa:   "Dados",
		Titulacao:      "Professor",
		AreasInteresse: []string{"Machine Learning", "Dados"},
		CriadoEm:       time.Now().UTC(),
	}
	if err := store.CreateAdvisor(context.Background(), adv); err != nil {
		t.Fatalf("CreateAdvisor failed: %v", err)
	}
	if adv.ID != 12 {
		t.Fatalf("id = %d, want 12", adv.ID)
	}
}

func TestGetAdvisorSplitsInterestAreas(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`from orientadores where id=\$1`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(advisorRowColumns()).
			AddRow(int64(12), "Ana Souza", "ana@professores.ibmec.edu.br", "", "ANA",
				"Dados", "Professor", "", "Machine Learning, Dados", "", false, time.Now()))

	adv, err := store.GetAdvisor(context.Background(), 12)
	if err != nil {
		t.Fatalf("GetAdvisor failed: %v", err)
	}
	if len(adv.AreasInteresse) != 2 || adv.AreasInteresse[1] != "Dados" {
		t.Fatalf("areas = %+v", adv.AreasInteresse)
	}
}

func TestUpdateStudentZeroRowsMapsToNotFound(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectExec(`update alunos set`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateStudent(context.Background(), 404, profiles.StudentUpdate{})
	if !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("err = %v, want profiles.ErrNotFound", err)
	}
}

func TestApproveZeroRowsMapsToNotFound(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectExec(`update projetos set status=\$2, data_aprovacao=\$3`).
		WithArgs(int64(404), "ativo", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Approve(context.Background(), 404, time.Now())
	if !errors.Is(err, projects.ErrNotFound) {
		t.Fatalf("err = %v, want projects.ErrNotFound", err)
	}
}

func TestApproveStampsStatusAndDate(t *testing.T) {
	store, mock := mockStore(t)
	when := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec(`update projetos set status=\$2, data_aprovacao=\$3`).
		WithArgs(int64(5), "ativo", when).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Approve(context.Background(), 5, when); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
}

func TestCreateProjectReturnsGeneratedID(t *testing.T) {
	store, mock := mockStore(t)
	mock.ExpectQuery(`insert into projetos`).
		WithArgs("IC2026001002", "Título", "Descrição", int64(1), int64(2), "pendente", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(33)))

	p := &projects.Project{
		Codigo:        "IC2026001002",
		Titulo:        "Título",
		Descricao:     "Descrição",
		OrientadorID:  1,
		AlunoID:       2,
		Status:        projects.StatusPendente,
		DataSubmissao: time.Now().UTC(),
	}
	if err := store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if p.ID != 33 {
		t.Fatalf("id = %d, want 33", p.ID)
	}
}

func studentRowColumns() []string {
	return []string{"id", "nome", "matricula", "email", "curso", "semestre",
		"telefone", "data_nascimento", "status", "criado_em"}
}

func advisorRowColumns() []string {
	return []string{"id", "nome", "email", "telefone", "codigo", "area_pesquisa",
		"titulacao", "lattes_url", "areas_interesse", "biografia", "is_coordenador", "criado_em"}
}

// Package profiles manages student and advisor records, including the
// first-login provisioning that backs the welcome flow.
package profiles

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("profiles: not found")
	ErrInvalidInput = errors.New("profiles: invalid input")
)

// Student is an aluno record.
type Student struct {
	ID             int64   `json:"id"`
	Nome           string  `json:"nome"`
	Matricula      string  `json:"matricula"`
	Email          string  `json:"email"`
	Curso          string  `json:"curso"`
	Semestre       int     `json:"semestre"`
	Telefone       string  `json:"telefone,omitempty"`
	DataNascimento *string `json:"data_nascimento,omitempty"`
	Status         string  `json:"status"`
	CriadoEm       time.Time `json:"criado_em"`
}

// Advisor is an orientador record. Admins are advisors flagged as
// coordenador.
type Advisor struct {
	ID             int64    `json:"id"`
	Nome           string   `json:"nome"`
	Email          string   `json:"email"`
	Telefone       string   `json:"telefone,omitempty"`
	Codigo         string   `json:"codigo"`
	AreaPesquisa   string   `json:"area_pesquisa"`
	Titulacao      string   `json:"titulacao"`
	LattesURL      string   `json:"lattes_url,omitempty"`
	AreasInteresse []string `json:"areas_interesse,omitempty"`
	Biografia      string   `json:"biografia,omitempty"`
	IsCoordenador  bool     `json:"is_coordenador"`
	CriadoEm       time.Time `json:"criado_em"`
}

// StudentUpdate carries the editable fields of a student profile.
type StudentUpdate struct {
	Nome           *string `json:"nome,omitempty"`
	Curso          *string `json:"curso,omitempty"`
	Semestre       *int    `json:"semestre,omitempty"`
	Telefone       *string `json:"telefone,omitempty"`
	DataNascimento *string `json:"data_nascimento,omitempty"`
}

// AdvisorUpdate carries the editable fields of an advisor profile.
type AdvisorUpdate struct {
	Nome           *string   `json:"nome,omitempty"`
	Telefone       *string   `json:"telefone,omitempty"`
	AreaPesquisa   *string   `json:"area_pesquisa,omitempty"`
	Titulacao      *string   `json:"titulacao,omitempty"`
	LattesURL      *string   `json:"lattes_url,omitempty"`
	AreasInteresse *[]string `json:"areas_interesse,omitempty"`
	Biografia      *string   `json:"biografia,omitempty"`
}

// Store persists students and advisors.
type Store interface {
	FindStudentByEmail(ctx context.Context, email string) (*Student, error)
	GetStudent(ctx context.Context, id int64) (*Student, error)
	CreateStudent(ctx context.Context, s *Student) error
	UpdateStudent(ctx context.Context, id int64, upd StudentUpdate) (*Student, error)

	FindAdvisorByEmail(ctx context.Context, email string) (*Advisor, error)
	GetAdvisor(ctx context.Context, id int64) (*Advisor, error)
	CreateAdvisor(ctx context.Context, a *Advisor) error
	UpdateAdvisor(ctx context.Context, id int64, upd AdvisorUpdate) (*Advisor, error)
	ListAdvisors(ctx context.Context) ([]Advisor, error)
}

// MatriculaFromEmail derives the auto-provisioned registration number from
// the local part of the address, as the original onboarding did.
func MatriculaFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToUpper(strings.ReplaceAll(local, ".", ""))
	if len(local) > 15 {
		local = local[:15]
	}
	return local
}

// AdvisorCodeFromEmail derives the short advisor code used on project codes
// and listings.
func AdvisorCodeFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToUpper(strings.ReplaceAll(local, ".", ""))
	if len(local) > 10 {
		local = local[:10]
	}
	return local
}

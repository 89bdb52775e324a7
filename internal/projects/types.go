// Package projects implements proposal submission, advisor approval and the
// project listings backing the dashboards.
package projects

import (
	"errors"
	"fmt"
	"time"
)

// Status of a project proposal. Proposals start pendente and become ativo
// when the advisor approves them.
type Status string

const (
	StatusPendente Status = "pendente"
	StatusAtivo    Status = "ativo"
)

var (
	ErrNotFound         = errors.New("projects: not found")
	ErrInvalidInput     = errors.New("projects: invalid input")
	ErrEnrollmentClosed = errors.New("projects: enrollment window closed")
	ErrAlreadyApproved  = errors.New("projects: already approved")
)

// Project is a research project proposal.
type Project struct {
	ID             int64      `json:"id"`
	Codigo         string     `json:"codigo"`
	Titulo         string     `json:"titulo"`
	Descricao      string     `json:"descricao"`
	OrientadorID   int64      `json:"orientador_id"`
	AlunoID        int64      `json:"aluno_id"`
	Status         Status     `json:"status"`
	DataSubmissao  time.Time  `json:"data_submissao"`
	DataAprovacao  *time.Time `json:"data_aprovacao,omitempty"`

	// Joined listing fields.
	OrientadorNome  string     `json:"orientador_nome,omitempty"`
	AlunoNome       string     `json:"aluno_nome,omitempty"`
	Matricula       string     `json:"matricula,omitempty"`
	DocumentosCount int        `json:"documentos_count"`
	UltimaPostagem  *time.Time `json:"ultima_postagem,omitempty"`
}

// Document is uploaded-file metadata attached to a project.
type Document struct {
	ID          string    `json:"id"`
	ProjetoID   int64     `json:"projeto_id"`
	Nome        string    `json:"nome"`
	Tipo        string    `json:"tipo"`
	TamanhoBytes int64    `json:"tamanho_bytes"`
	EnviadoPor  int64     `json:"enviado_por"`
	DataUpload  time.Time `json:"data_upload"`
}

// AdvisorSummary is the advisor listing shown on the proposal form.
type AdvisorSummary struct {
	ID             int64    `json:"id"`
	Nome           string   `json:"nome"`
	Email          string   `json:"email"`
	AreaPesquisa   string   `json:"area_pesquisa"`
	Titulacao      string   `json:"titulacao"`
	Areas          []string `json:"areas"`
	ProjetosAtivos int      `json:"projetos_ativos"`
}

// SubmitRequest is a student proposal.
type SubmitRequest struct {
	Titulo       string `json:"titulo"`
	Descricao    string `json:"descricao"`
	OrientadorID int64  `json:"orientador_id"`
}

// ProjectCode builds the institutional code for a proposal: IC, the
// submission year, then zero-padded advisor and student ids.
func ProjectCode(year int, orientadorID, alunoID int64) string {
	return fmt.Sprintf("IC%d%03d%03d", year, orientadorID, alunoID)
}

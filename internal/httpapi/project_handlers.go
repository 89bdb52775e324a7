package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/audit"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/obs"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/stream"
)

func (a *API) handleProjectSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, err := requireRole(r.Context(), session.RoleAluno)
	if err != nil {
		handleAccessError(w, r, err, "apenas alunos podem cadastrar projetos")
		return
	}

	var req projects.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := a.cfg.Projects.Submit(r.Context(), claims.UserID, req)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}

	obs.CountProjectSubmitted()
	_ = audit.LogEvent(r.Context(), "projeto.cadastrado", map[string]any{
		"projeto_id":    p.ID,
		"codigo":        p.Codigo,
		"orientador_id": p.OrientadorID,
	})
	if a.cfg.Stream != nil {
		a.cfg.Stream.Publish(stream.Event{
			Type:         stream.TypeProjectSubmitted,
			ProjetoID:    p.ID,
			OrientadorID: p.OrientadorID,
			AlunoID:      p.AlunoID,
		})
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Projeto cadastrado com sucesso",
		"projeto_id": p.ID,
		"codigo":     p.Codigo,
	})
}

func (a *API) handleMyProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := requireRole(r.Context(), session.RoleAluno)
	if err != nil {
		handleAccessError(w, r, err, "endpoint apenas para alunos")
		return
	}
	list, err := a.cfg.Projects.MyProjects(r.Context(), claims.UserID)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (a *API) handlePendingProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := requireRole(r.Context(), session.RoleProfessor)
	if err != nil {
		handleAccessError(w, r, err, "endpoint apenas para professores")
		return
	}
	list, err := a.cfg.Projects.Pending(r.Context(), claims.UserID)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (a *API) handleActiveProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := requireRole(r.Context(), session.RoleProfessor)
	if err != nil {
		handleAccessError(w, r, err, "endpoint apenas para professores")
		return
	}
	list, err := a.cfg.Projects.Active(r.Context(), claims.UserID)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (a *API) handleApproveProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, err := requireRole(r.Context(), session.RoleProfessor)
	if err != nil {
		handleAccessError(w, r, err, "apenas orientadores podem aprovar projetos")
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/projetos/aprovar/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "projeto não encontrado")
		return
	}

	p, err := a.cfg.Projects.Approve(r.Context(), claims.UserID, id)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}

	obs.CountProjectApproved()
	_ = audit.LogEvent(r.Context(), "projeto.aprovado", map[string]any{
		"projeto_id": p.ID,
		"aluno_id":   p.AlunoID,
	})
	if a.cfg.Stream != nil {
		a.cfg.Stream.Publish(stream.Event{
			Type:         stream.TypeProjectApproved,
			ProjetoID:    p.ID,
			OrientadorID: p.OrientadorID,
			AlunoID:      p.AlunoID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Projeto aprovado com sucesso",
	})
}

func (a *API) handleListAdvisors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	list, err := a.cfg.Projects.Advisors(r.Context())
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	if list == nil {
		list = []projects.AdvisorSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleProjectResource serves /api/v1/projetos/{id}/documentos.
func (a *API) handleProjectResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/projetos/")
	if !strings.HasSuffix(path, "/documentos") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	raw := strings.TrimSuffix(path, "/documentos")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "projeto não encontrado")
		return
	}
	docs, err := a.cfg.Projects.Documents(r.Context(), claims.UserID, id)
	if err != nil {
		handleProjectError(w, r, err)
		return
	}
	if docs == nil {
		docs = []projects.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func emptyIfNil(list []projects.Project) []projects.Project {
	if list == nil {
		return []projects.Project{}
	}
	return list
}

func handleAccessError(w http.ResponseWriter, r *http.Request, err error, forbiddenMsg string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
	case errors.Is(err, errForbidden):
		writeError(w, r, http.StatusForbidden, forbiddenMsg)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func handleProjectError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, projects.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, projects.ErrEnrollmentClosed):
		writeError(w, r, http.StatusForbidden, "período de inscrição encerrado")
	case errors.Is(err, projects.ErrAlreadyApproved):
		writeError(w, r, http.StatusConflict, "projeto já aprovado")
	case errors.Is(err, projects.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "projeto não encontrado")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// handleProfile serves the caller's own profile: GET reads it, PUT updates
// the editable fields for the caller's role.
func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProfile(w, r, claims)
	case http.MethodPut:
		a.updateProfile(w, r, claims)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	switch claims.Role() {
	case session.RoleAluno:
		st, err := a.cfg.Profiles.Student(r.Context(), claims.UserID)
		if err != nil {
			handleProfileError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case session.RoleProfessor, session.RoleAdmin:
		adv, err := a.cfg.Profiles.Advisor(r.Context(), claims.UserID)
		if err != nil {
			handleProfileError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, adv)
	default:
		writeError(w, r, http.StatusForbidden, "perfil indisponível para este usuário")
	}
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	switch claims.Role() {
	case session.RoleAluno:
		var upd profiles.StudentUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		st, err := a.cfg.Profiles.UpdateStudent(r.Context(), claims.UserID, upd)
		if err != nil {
			handleProfileError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	case session.RoleProfessor, session.RoleAdmin:
		var upd profiles.AdvisorUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		adv, err := a.cfg.Profiles.UpdateAdvisor(r.Context(), claims.UserID, upd)
		if err != nil {
			handleProfileError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, adv)
	default:
		writeError(w, r, http.StatusForbidden, "perfil indisponível para este usuário")
	}
}

func handleProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profiles.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, profiles.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "perfil não encontrado")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

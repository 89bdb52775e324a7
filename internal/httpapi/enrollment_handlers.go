package httpapi

import (
	"errors"
	"net/http"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/audit"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/stream"
)

// handleWindowDispatch routes the combined endpoint: GET reads the window,
// POST updates the deadline (admin only, same semantics as abrir-inscricao).
func (a *API) handleWindowDispatch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.handleWindow(w, r)
	case http.MethodPost:
		a.handleOpenWindow(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWindow reports the enrollment window to any authenticated user; the
// student dashboard polls it to enable or disable the proposal form.
func (a *API) handleWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	win, err := a.cfg.Enrollment.Window(r.Context())
	if err != nil {
		// The closed default still renders a usable dashboard.
		writeJSON(w, http.StatusOK, enrollment.Closed())
		return
	}
	writeJSON(w, http.StatusOK, win)
}

type openWindowRequest struct {
	DataLimite string `json:"data_limite"`
}

func (a *API) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := requireRole(r.Context(), session.RoleAdmin); err != nil {
		handleAccessError(w, r, err, "apenas administradores podem abrir inscrições")
		return
	}

	var req openWindowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	win, err := a.cfg.Enrollment.SetDeadline(r.Context(), req.DataLimite)
	if err != nil {
		if errors.Is(err, enrollment.ErrInvalidDeadline) {
			writeError(w, r, http.StatusBadRequest, "data_limite inválida")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "inscricao.aberta", map[string]any{
		"data_limite": req.DataLimite,
	})
	a.publishWindowChange(true)

	writeJSON(w, http.StatusOK, win)
}

func (a *API) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, err := requireRole(r.Context(), session.RoleAdmin); err != nil {
		handleAccessError(w, r, err, "apenas administradores podem fechar inscrições")
		return
	}

	win, err := a.cfg.Enrollment.Close(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	_ = audit.LogEvent(r.Context(), "inscricao.fechada", nil)
	a.publishWindowChange(false)

	writeJSON(w, http.StatusOK, win)
}

func (a *API) publishWindowChange(aberto bool) {
	if a.cfg.Stream == nil {
		return
	}
	a.cfg.Stream.Publish(stream.Event{
		Type:   stream.TypeWindowChanged,
		Aberto: &aberto,
	})
}

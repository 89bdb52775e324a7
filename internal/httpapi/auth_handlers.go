package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/audit"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/obs"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// AuthLogin starts the OAuth flow by redirecting to the identity provider.
func (a *API) AuthLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	state := uuid.NewString()
	http.Redirect(w, r, a.cfg.Auth.LoginURL(state), http.StatusFound)
}

// AuthCallback completes the OAuth flow: exchanges the code, provisions the
// account if needed and redirects to the frontend with the portal token in
// the query string.
func (a *API) AuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	token, claims, err := a.cfg.Auth.CompleteLogin(r.Context(), code)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "login failed")
		return
	}

	obs.CountLogin(claims.UserType)
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id":     claims.UserID,
		"user_type":   claims.UserType,
		"is_new_user": claims.IsNewUser,
	})

	redirect := a.cfg.FrontendURL + "/auth/redirect?" + url.Values{
		session.TokenQueryParam: {token},
		"email":                 {claims.Email},
	}.Encode()
	http.Redirect(w, r, redirect, http.StatusFound)
}

type devTokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthToken mints a token without the OAuth leg. Enabled only in dev, where
// frontends and smoke tests have no Microsoft tenant to talk to.
func (a *API) AuthToken(w http.ResponseWriter, r *http.Request) {
	if !a.cfg.DevTokens {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req devTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, r, http.StatusBadRequest, "email is required")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}

	token, claims, err := a.cfg.Auth.IssueFor(r.Context(), auth.Identity{
		Email:       req.Email,
		DisplayName: name,
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token issuance failed")
		return
	}

	obs.CountLogin(claims.UserType)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user_type":    claims.UserType,
		"is_new_user":  claims.IsNewUser,
	})
}

// AuthMe returns the verified claims of the caller.
func (a *API) AuthMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// Package httpapi is the HTTP layer of the PICT portal.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MatheusOkamura/PICTIbmecFinal/api/spec"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/obs"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/stream"
)

// ReadyProbe checks the service can serve traffic (DB reachable).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries the handler wiring.
type Config struct {
	Auth        *auth.Service
	Profiles    *profiles.Service
	Projects    *projects.Service
	Enrollment  *enrollment.Service
	Stream      *stream.Stream
	Sessions    func(w http.ResponseWriter, r *http.Request) *session.Manager
	ReadyProbe  ReadyProbe
	Version     string
	FrontendURL string
	// DevTokens enables the password-less token endpoint used by local
	// frontends and smoke tests.
	DevTokens bool
}

// API is the HTTP layer.
type API struct {
	mux *http.ServeMux
	cfg Config
}

func New(cfg Config) *API {
	if cfg.Sessions == nil {
		cfg.Sessions = func(w http.ResponseWriter, r *http.Request) *session.Manager {
			return session.NewManager(session.NewCookieStorage(w, r))
		}
	}
	a := &API{
		mux: http.NewServeMux(),
		cfg: cfg,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// OAuth flow, served bare and under the versioned API prefix.
	a.mux.HandleFunc("/auth/login", a.AuthLogin)
	a.mux.HandleFunc("/auth/callback", a.AuthCallback)
	a.mux.HandleFunc("/api/v1/auth/login", a.AuthLogin)
	a.mux.HandleFunc("/api/v1/auth/callback", a.AuthCallback)
	a.mux.HandleFunc("/api/v1/auth/token", a.AuthToken)
	a.mux.HandleFunc("/api/v1/auth/me", a.AuthMe)

	// Projects
	a.mux.HandleFunc("/api/v1/projetos/cadastrar", a.handleProjectSubmit)
	a.mux.HandleFunc("/api/v1/projetos/meus-projetos", a.handleMyProjects)
	a.mux.HandleFunc("/api/v1/projetos/pendentes", a.handlePendingProjects)
	a.mux.HandleFunc("/api/v1/projetos/ativos", a.handleActiveProjects)
	a.mux.HandleFunc("/api/v1/projetos/aprovar/", a.handleApproveProject)
	a.mux.HandleFunc("/api/v1/projetos/orientadores", a.handleListAdvisors)
	a.mux.HandleFunc("/api/v1/projetos/", a.handleProjectResource)

	// Enrollment window. The frontend historically called these under the
	// projetos prefix; both spellings are served.
	a.mux.HandleFunc("/api/v1/inscricao-periodo", a.handleWindowDispatch)
	a.mux.HandleFunc("/api/v1/abrir-inscricao", a.handleOpenWindow)
	a.mux.HandleFunc("/api/v1/fechar-inscricao", a.handleCloseWindow)
	a.mux.HandleFunc("/api/v1/projetos/inscricao-periodo", a.handleWindowDispatch)
	a.mux.HandleFunc("/api/v1/projetos/abrir-inscricao", a.handleOpenWindow)
	a.mux.HandleFunc("/api/v1/projetos/fechar-inscricao", a.handleCloseWindow)

	// Profiles
	a.mux.HandleFunc("/api/v1/perfis", a.handleProfile)

	// Dashboard event stream
	a.mux.HandleFunc("/eventos/stream", a.Stream)

	// Guarded dashboard pages
	a.mux.HandleFunc(session.LoginRoute, a.LoginPage)
	a.mux.HandleFunc(session.AdminDashboardRoute, a.dashboardPage(session.RoleAdmin))
	a.mux.HandleFunc(session.ProfessorDashboardRoute, a.dashboardPage(session.RoleProfessor))
	a.mux.HandleFunc(session.AlunoDashboardRoute, a.dashboardPage(session.RoleAluno))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, session.LoginRoute, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the wired http.Handler: auth, then metrics, then mux.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pict-portal",
		"version": a.cfg.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.cfg.ReadyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "pict-portal",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.cfg.Version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

// requireRole returns the verified claims when the caller holds the role.
func requireRole(ctx context.Context, role session.Role) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthorized
	}
	if claims.Role() != role {
		return nil, errForbidden
	}
	return claims, nil
}

var errForbidden = errors.New("httpapi: forbidden")

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

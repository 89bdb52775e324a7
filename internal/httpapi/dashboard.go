package httpapi

import (
	"fmt"
	"html"
	"net/http"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

var dashboardTitles = map[session.Role]string{
	session.RoleAdmin:     "Painel Administrativo",
	session.RoleProfessor: "Dashboard do Orientador",
	session.RoleAluno:     "Dashboard do Aluno",
}

// dashboardPage builds the guarded handler for a role's dashboard. The
// session is cookie-backed: a valid ?token= from the OAuth redirect is
// captured first, then the guard decides between rendering and redirecting.
func (a *API) dashboardPage(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		ctx := r.Context()
		mgr := a.cfg.Sessions(w, r)
		mgr.CaptureFromRedirect(ctx, r.URL)

		guard := session.Guard{Sessions: mgr, RequiredRole: role}
		decision := guard.Check(ctx)
		if decision.State == session.StateRedirecting {
			http.Redirect(w, r, decision.Location, http.StatusFound)
			return
		}

		if r.URL.Query().Get("dismiss_welcome") == "1" {
			mgr.DismissWelcome(ctx, role)
			http.Redirect(w, r, r.URL.Path, http.StatusFound)
			return
		}

		claims := decision.Claims
		showWelcome := claims.IsNewUser && !mgr.WelcomeDismissed(ctx, role)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><html lang=\"pt-BR\"><head><title>%s</title></head><body>", dashboardTitles[role])
		fmt.Fprintf(w, "<h1>%s</h1>", dashboardTitles[role])
		fmt.Fprintf(w, "<p>Bem-vindo, %s.</p>", html.EscapeString(claims.Name))
		if showWelcome {
			fmt.Fprintf(w, "<div id=\"welcome-modal\"><p>Seu cadastro foi criado. Complete seu perfil.</p>"+
				"<a href=\"%s?dismiss_welcome=1\">Fechar</a></div>", r.URL.Path)
		}
		fmt.Fprint(w, "</body></html>")
	}
}

// LoginPage renders the entry page and clears the session on ?logout=1.
func (a *API) LoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ctx := r.Context()
	mgr := a.cfg.Sessions(w, r)
	if r.URL.Query().Get("logout") == "1" {
		mgr.Logout(ctx)
		http.Redirect(w, r, session.LoginRoute, http.StatusFound)
		return
	}

	// An already-authenticated visitor goes straight to their dashboard.
	if claims := mgr.CurrentClaims(ctx); claims != nil {
		if route := session.RouteForRole(claims.Role()); route != session.LoginRoute {
			http.Redirect(w, r, route, http.StatusFound)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html><html lang=\"pt-BR\"><head><title>Portal PICT</title></head><body>"+
		"<h1>Portal PICT Ibmec</h1>"+
		"<p><a href=\"/auth/login\">Entrar com conta institucional</a></p>"+
		"</body></html>")
}

package httpapi

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
)

// browser follows redirects and keeps cookies, like the real frontend.
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func page(t *testing.T, client *http.Client, rawURL string) (int, string) {
	t.Helper()
	resp, err := client.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestDashboardWithoutSessionRedirectsToLogin(t *testing.T) {
	srv := newPortal(t)
	client := browser(t)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/aluno/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestDashboardCapturesRedirectTokenAndShowsWelcome(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "maria.santos@ibmec.edu.br")
	client := browser(t)

	status, body := page(t, client,
		srv.URL+"/aluno/dashboard?token="+url.QueryEscape(student.token))
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "Dashboard do Aluno") {
		t.Fatalf("body = %q", body)
	}
	if !strings.Contains(body, "welcome-modal") {
		t.Fatal("first login should render the welcome modal")
	}

	// The session cookie now carries the credential; no query token needed.
	status, body = page(t, client, srv.URL+"/aluno/dashboard")
	if status != http.StatusOK || !strings.Contains(body, "welcome-modal") {
		t.Fatalf("revisit: status %d, modal still expected", status)
	}

	// Dismissal is remembered for the rest of the session.
	status, body = page(t, client, srv.URL+"/aluno/dashboard?dismiss_welcome=1")
	if status != http.StatusOK {
		t.Fatalf("dismiss: status %d", status)
	}
	if strings.Contains(body, "welcome-modal") {
		t.Fatal("modal should stay hidden after dismissal")
	}
}

func TestDashboardSendsWrongRoleHome(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "joao.silva@ibmec.edu.br")
	client := browser(t)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/adminDashboard?token=" + url.QueryEscape(student.token))
	if err != nil {
		t.Fatalf("GET adminDashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/aluno/dashboard" {
		t.Fatalf("location = %q, want the aluno dashboard", loc)
	}
}

func TestLoginPageRedirectsAuthenticatedVisitor(t *testing.T) {
	srv := newPortal(t)
	professor := login(t, srv, "ana.souza@professores.ibmec.edu.br")
	client := browser(t)

	// Establish the cookie session through the dashboard capture.
	if status, _ := page(t, client, srv.URL+"/professor/dashboard?token="+url.QueryEscape(professor.token)); status != http.StatusOK {
		t.Fatalf("dashboard status = %d", status)
	}

	status, body := page(t, client, srv.URL+"/login")
	if status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	if !strings.Contains(body, "Dashboard do Orientador") {
		t.Fatal("authenticated visitor should land on their dashboard")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "joao.silva@ibmec.edu.br")
	client := browser(t)

	if status, _ := page(t, client, srv.URL+"/aluno/dashboard?token="+url.QueryEscape(student.token)); status != http.StatusOK {
		t.Fatal("expected an authenticated dashboard before logout")
	}

	status, body := page(t, client, srv.URL+"/login?logout=1")
	if status != http.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if !strings.Contains(body, "Entrar com conta institucional") {
		t.Fatal("logged-out visitor should see the login page")
	}

	// The dashboard is gone without the session.
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.Get(srv.URL + "/aluno/dashboard")
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want a redirect to login", resp.StatusCode)
	}
}

func TestMalformedRedirectTokenIsIgnored(t *testing.T) {
	srv := newPortal(t)
	client := browser(t)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(srv.URL + "/aluno/dashboard?token=garbage")
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302 to login", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value != "" && c.MaxAge >= 0 {
			t.Fatal("malformed credential must not be persisted")
		}
	}
}

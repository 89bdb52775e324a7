package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/auth"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/stream"
)

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + state
}

func (fakeProvider) Exchange(context.Context, string) (auth.Identity, error) {
	return auth.Identity{}, auth.ErrExchange
}

// newPortal wires the full API on in-memory stores with dev tokens enabled.
func newPortal(t *testing.T) *httptest.Server {
	t.Helper()

	people := profiles.NewInMemory()
	profileSvc := profiles.NewService(people)
	enrollmentSvc := enrollment.NewService(enrollment.NewInMemoryStore())
	projectSvc := projects.NewService(projects.NewInMemory(people), enrollmentSvc)
	authSvc := auth.NewService(fakeProvider{}, profileSvc, auth.Config{
		Secret: "test-secret",
		Issuer: "pict-portal",
	})

	api := New(Config{
		Auth:        authSvc,
		Profiles:    profileSvc,
		Projects:    projectSvc,
		Enrollment:  enrollmentSvc,
		Stream:      stream.New(),
		Version:     "test",
		FrontendURL: "http://localhost:3000",
		DevTokens:   true,
	})
	srv := httptest.NewServer(RequestID(api.Handler()))
	t.Cleanup(srv.Close)
	return srv
}

// apiClient calls the portal as one authenticated user.
type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func login(t *testing.T, srv *httptest.Server, email string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, base: srv.URL}
	status, body := c.do(http.MethodPost, "/api/v1/auth/token", map[string]any{"email": email})
	if status != http.StatusOK {
		t.Fatalf("dev token for %s: status %d body %v", email, status, body)
	}
	c.token = body["access_token"].(string)
	return c
}

func (c *apiClient) do(method, path string, payload any) (int, map[string]any) {
	c.t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func (c *apiClient) doList(method, path string) (int, []map[string]any) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var decoded []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	srv := newPortal(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}

func TestProposalLifecycle(t *testing.T) {
	srv := newPortal(t)

	admin := login(t, srv, "coordenador.pict@ibmec.edu.br")
	professor := login(t, srv, "ana.souza@professores.ibmec.edu.br")
	student := login(t, srv, "joao.silva@ibmec.edu.br")

	// Admin opens the window with an open-ended deadline.
	if status, body := admin.do(http.MethodPost, "/api/v1/abrir-inscricao", map[string]any{"data_limite": ""}); status != http.StatusOK {
		t.Fatalf("abrir-inscricao: status %d body %v", status, body)
	}

	// Student picks the advisor from the public listing.
	status, advisors := student.doList(http.MethodGet, "/api/v1/projetos/orientadores")
	if status != http.StatusOK || len(advisors) == 0 {
		t.Fatalf("orientadores: status %d list %v", status, advisors)
	}
	orientadorID := int64(advisors[0]["id"].(float64))

	status, body := student.do(http.MethodPost, "/api/v1/projetos/cadastrar", map[string]any{
		"titulo":        "Análise de evasão",
		"descricao":     "Estudo com dados institucionais",
		"orientador_id": orientadorID,
	})
	if status != http.StatusCreated {
		t.Fatalf("cadastrar: status %d body %v", status, body)
	}
	projetoID := int64(body["projeto_id"].(float64))
	if body["codigo"] == "" {
		t.Fatal("submission response must carry the project code")
	}

	// The proposal shows up in the advisor's pending queue.
	status, pending := professor.doList(http.MethodGet, "/api/v1/projetos/pendentes")
	if status != http.StatusOK || len(pending) != 1 {
		t.Fatalf("pendentes: status %d list %v", status, pending)
	}
	if pending[0]["aluno_nome"] != "joao.silva" {
		t.Fatalf("pending entry = %v", pending[0])
	}

	if status, body := professor.do(http.MethodPost, fmt.Sprintf("/api/v1/projetos/aprovar/%d", projetoID), nil); status != http.StatusOK {
		t.Fatalf("aprovar: status %d body %v", status, body)
	}

	status, active := professor.doList(http.MethodGet, "/api/v1/projetos/ativos")
	if status != http.StatusOK || len(active) != 1 {
		t.Fatalf("ativos: status %d list %v", status, active)
	}

	status, mine := student.doList(http.MethodGet, "/api/v1/projetos/meus-projetos")
	if status != http.StatusOK || len(mine) != 1 {
		t.Fatalf("meus-projetos: status %d list %v", status, mine)
	}
	if mine[0]["status"] != "ativo" {
		t.Fatalf("student view = %v, want ativo", mine[0])
	}
}

func TestSubmitRefusedWhileWindowClosed(t *testing.T) {
	srv := newPortal(t)

	login(t, srv, "ana.souza@professores.ibmec.edu.br")
	student := login(t, srv, "joao.silva@ibmec.edu.br")

	status, body := student.do(http.MethodPost, "/api/v1/projetos/cadastrar", map[string]any{
		"titulo":        "t",
		"descricao":     "d",
		"orientador_id": 1,
	})
	if status != http.StatusForbidden {
		t.Fatalf("cadastrar: status %d body %v", status, body)
	}
	if body["error"] != "período de inscrição encerrado" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	srv := newPortal(t)
	anon := &apiClient{t: t, base: srv.URL}

	status, body := anon.do(http.MethodGet, "/api/v1/projetos/meus-projetos", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d body %v", status, body)
	}
	if body["error"] != "missing bearer token" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestWrongRoleIsForbidden(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "joao.silva@ibmec.edu.br")

	status, body := student.do(http.MethodGet, "/api/v1/projetos/pendentes", nil)
	if status != http.StatusForbidden {
		t.Fatalf("status = %d body %v", status, body)
	}

	status, body = student.do(http.MethodPost, "/api/v1/abrir-inscricao", map[string]any{"data_limite": ""})
	if status != http.StatusForbidden {
		t.Fatalf("abrir-inscricao as aluno: status %d body %v", status, body)
	}
}

func TestWindowReadableUnderBothPrefixes(t *testing.T) {
	srv := newPortal(t)
	admin := login(t, srv, "coordenador.pict@ibmec.edu.br")

	if status, body := admin.do(http.MethodPost, "/api/v1/projetos/inscricao-periodo", map[string]any{"data_limite": "2026-12-31"}); status != http.StatusOK {
		t.Fatalf("POST inscricao-periodo: status %d body %v", status, body)
	}

	for _, path := range []string{"/api/v1/inscricao-periodo", "/api/v1/projetos/inscricao-periodo"} {
		status, body := admin.do(http.MethodGet, path, nil)
		if status != http.StatusOK {
			t.Fatalf("GET %s: status %d body %v", path, status, body)
		}
		if body["aberto"] != true || body["data_limite"] != "2026-12-31" {
			t.Fatalf("GET %s: window = %v", path, body)
		}
	}
}

func TestOpenWindowRejectsBadDeadline(t *testing.T) {
	srv := newPortal(t)
	admin := login(t, srv, "coordenador.pict@ibmec.edu.br")

	status, body := admin.do(http.MethodPost, "/api/v1/abrir-inscricao", map[string]any{"data_limite": "31/12/2026"})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d body %v", status, body)
	}
	if body["error"] != "data_limite inválida" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestAuthMeReturnsVerifiedClaims(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "joao.silva@ibmec.edu.br")

	status, body := student.do(http.MethodGet, "/api/v1/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d body %v", status, body)
	}
	if body["user_type"] != "aluno" || body["email"] != "joao.silva@ibmec.edu.br" {
		t.Fatalf("claims = %v", body)
	}
}

func TestProfileReadAndUpdate(t *testing.T) {
	srv := newPortal(t)
	student := login(t, srv, "maria.santos@ibmec.edu.br")

	status, body := student.do(http.MethodGet, "/api/v1/perfis", nil)
	if status != http.StatusOK {
		t.Fatalf("GET perfis: status %d body %v", status, body)
	}
	if body["matricula"] != "MARIASANTOS" {
		t.Fatalf("profile = %v", body)
	}

	status, body = student.do(http.MethodPut, "/api/v1/perfis", map[string]any{
		"curso":    "Engenharia de Software",
		"semestre": 4,
	})
	if status != http.StatusOK {
		t.Fatalf("PUT perfis: status %d body %v", status, body)
	}
	if body["curso"] != "Engenharia de Software" || body["semestre"] != float64(4) {
		t.Fatalf("updated profile = %v", body)
	}

	professor := login(t, srv, "ana.souza@professores.ibmec.edu.br")
	status, body = professor.do(http.MethodPut, "/api/v1/perfis", map[string]any{
		"areas_interesse": []string{"Machine Learning", "Dados"},
	})
	if status != http.StatusOK {
		t.Fatalf("PUT perfis as professor: status %d body %v", status, body)
	}
	areas, _ := body["areas_interesse"].([]any)
	if len(areas) != 2 {
		t.Fatalf("areas = %v", body["areas_interesse"])
	}
}

func TestDevTokenEndpointHiddenWhenDisabled(t *testing.T) {
	people := profiles.NewInMemory()
	profileSvc := profiles.NewService(people)
	enrollmentSvc := enrollment.NewService(enrollment.NewInMemoryStore())
	api := New(Config{
		Auth:       auth.NewService(fakeProvider{}, profileSvc, auth.Config{Secret: "s", Issuer: "i"}),
		Profiles:   profileSvc,
		Projects:   projects.NewService(projects.NewInMemory(people), enrollmentSvc),
		Enrollment: enrollmentSvc,
		Version:    "test",
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/v1/auth/token", "application/json",
		bytes.NewBufferString(`{"email":"x@ibmec.edu.br"}`))
	if err != nil {
		t.Fatalf("POST token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

type okProvider struct {
	identity auth.Identity
}

func (p okProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + state
}

func (p okProvider) Exchange(context.Context, string) (auth.Identity, error) {
	return p.identity, nil
}

func TestAuthCallbackRedirectsToFrontendWithToken(t *testing.T) {
	people := profiles.NewInMemory()
	profileSvc := profiles.NewService(people)
	enrollmentSvc := enrollment.NewService(enrollment.NewInMemoryStore())
	authSvc := auth.NewService(
		okProvider{identity: auth.Identity{Email: "joao.silva@ibmec.edu.br", DisplayName: "João Silva"}},
		profileSvc,
		auth.Config{Secret: "test-secret", Issuer: "pict-portal"},
	)
	api := New(Config{
		Auth:        authSvc,
		Profiles:    profileSvc,
		Projects:    projects.NewService(projects.NewInMemory(people), enrollmentSvc),
		Enrollment:  enrollmentSvc,
		Version:     "test",
		FrontendURL: "http://localhost:3000",
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(srv.URL + "/auth/callback?code=abc")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}

	loc, err := resp.Location()
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Path != "/auth/redirect" {
		t.Fatalf("redirect path = %q", loc.Path)
	}
	if loc.Query().Get("email") != "joao.silva@ibmec.edu.br" {
		t.Fatalf("redirect query = %v", loc.Query())
	}
	token := loc.Query().Get("token")
	claims, err := authSvc.Verify(token)
	if err != nil {
		t.Fatalf("redirect token does not verify: %v", err)
	}
	if claims.UserType != "aluno" || !claims.IsNewUser {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestInvalidBearerTokenIsRejected(t *testing.T) {
	srv := newPortal(t)
	c := &apiClient{t: t, base: srv.URL, token: "not-a-token"}

	status, body := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d body %v", status, body)
	}
}

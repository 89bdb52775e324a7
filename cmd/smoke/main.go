// Command smoke drives the full proposal lifecycle against a running portal
// with dev tokens enabled: open the window, submit as a student, approve as
// the advisor.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	base := os.Getenv("PICT_SMOKE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	adminToken := issueToken(client, base, "coordenador.pict@ibmec.edu.br", "Coordenador PICT")
	profToken := issueToken(client, base, "ana.souza@professores.ibmec.edu.br", "Ana Souza")
	alunoToken := issueToken(client, base, "202401123456@ibmec.edu.br", "João Silva")

	// Admin opens the enrollment window.
	var window map[string]any
	doJSON(client, http.MethodPost, base+"/api/v1/abrir-inscricao", adminToken,
		map[string]any{"data_limite": ""}, &window)
	if window["aberto"] != true {
		log.Fatalf("window not open after abrir-inscricao: %v", window)
	}

	// Student picks the advisor and submits.
	var advisors []map[string]any
	doJSON(client, http.MethodGet, base+"/api/v1/projetos/orientadores", alunoToken, nil, &advisors)
	if len(advisors) == 0 {
		log.Fatal("no advisors listed")
	}
	orientadorID := int64(advisors[0]["id"].(float64))

	var submitted map[string]any
	doJSON(client, http.MethodPost, base+"/api/v1/projetos/cadastrar", alunoToken, map[string]any{
		"titulo":        "Análise de dados educacionais",
		"descricao":     "Estudo exploratório de indicadores acadêmicos.",
		"orientador_id": orientadorID,
	}, &submitted)
	projetoID := int64(submitted["projeto_id"].(float64))

	// Advisor sees it pending and approves.
	var pending []map[string]any
	doJSON(client, http.MethodGet, base+"/api/v1/projetos/pendentes", profToken, nil, &pending)
	if !containsProject(pending, projetoID) {
		log.Fatalf("project %d not in pending list", projetoID)
	}
	doJSON(client, http.MethodPost, fmt.Sprintf("%s/api/v1/projetos/aprovar/%d", base, projetoID), profToken, nil, nil)

	var active []map[string]any
	doJSON(client, http.MethodGet, base+"/api/v1/projetos/ativos", profToken, nil, &active)
	if !containsProject(active, projetoID) {
		log.Fatalf("project %d not in active list after approval", projetoID)
	}

	fmt.Printf("smoke test passed: projeto=%d orientador=%d\n", projetoID, orientadorID)
}

func issueToken(client *http.Client, base, email, name string) string {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(client, http.MethodPost, base+"/api/v1/auth/token", "",
		map[string]any{"email": email, "name": name}, &resp)
	if resp.AccessToken == "" {
		log.Fatalf("empty token for %s", email)
	}
	return resp.AccessToken
}

func doJSON(client *http.Client, method, url, token string, body any, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		log.Fatalf("build request %s: %v", url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("%s %s: status %d", method, url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode response of %s: %v", url, err)
		}
	}
}

func containsProject(list []map[string]any, id int64) bool {
	for _, p := range list {
		if v, ok := p["id"].(float64); ok && int64(v) == id {
			return true
		}
	}
	return false
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Identity is the subset of directory data the portal needs from the
// institutional identity provider.
type Identity struct {
	Email       string
	DisplayName string
	JobTitle    string
	Department  string
	MobilePhone string
}

// IdentityProvider abstracts the OAuth authorization-code flow so handlers
// and tests never talk to Microsoft directly.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

// MicrosoftConfig holds the Azure AD app registration for the portal.
type MicrosoftConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// MicrosoftProvider implements IdentityProvider against the Microsoft
// identity platform v2 endpoints plus Graph /me for profile data.
type MicrosoftProvider struct {
	cfg    MicrosoftConfig
	client *http.Client

	authorizeURL string
	tokenURL     string
	graphMeURL   string
}

func NewMicrosoftProvider(cfg MicrosoftConfig, client *http.Client) *MicrosoftProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "profile", "email", "User.Read"}
	}
	base := "https://login.microsoftonline.com/" + cfg.TenantID + "/oauth2/v2.0"
	return &MicrosoftProvider{
		cfg:          cfg,
		client:       client,
		authorizeURL: base + "/authorize",
		tokenURL:     base + "/token",
		graphMeURL:   "https://graph.microsoft.com/v1.0/me",
	}
}

func (p *MicrosoftProvider) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", p.cfg.RedirectURI)
	q.Set("response_mode", "query")
	q.Set("scope", strings.Join(p.cfg.Scopes, " "))
	q.Set("state", state)
	return p.authorizeURL + "?" + q.Encode()
}

func (p *MicrosoftProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	form := url.Values{}
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", p.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Identity{}, fmt.Errorf("%w: token endpoint returned %d", ErrExchange, resp.StatusCode)
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if tokenResp.AccessToken == "" {
		return Identity{}, fmt.Errorf("%w: empty access token", ErrExchange)
	}
	return p.fetchProfile(ctx, tokenResp.AccessToken)
}

func (p *MicrosoftProvider) fetchProfile(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphMeURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Identity{}, fmt.Errorf("%w: graph returned %d", ErrExchange, resp.StatusCode)
	}
	var me struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
		JobTitle          string `json:"jobTitle"`
		Department        string `json:"department"`
		MobilePhone       string `json:"mobilePhone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	email := me.Mail
	if email == "" {
		email = me.UserPrincipalName
	}
	if email == "" {
		return Identity{}, fmt.Errorf("%w: profile has no e-mail", ErrExchange)
	}
	return Identity{
		Email:       email,
		DisplayName: me.DisplayName,
		JobTitle:    me.JobTitle,
		Department:  me.Department,
		MobilePhone: me.MobilePhone,
	}, nil
}

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// Account is the resolved local record for an authenticated identity.
// Student fields and advisor fields are populated according to the role.
type Account struct {
	ID            int64
	Nome          string
	Email         string
	Matricula     string
	Curso         string
	Semestre      int
	IsCoordenador bool
}

// Directory resolves an external identity to a local account, creating the
// record on first login. The second return reports whether the account was
// created by this call.
type Directory interface {
	Resolve(ctx context.Context, role session.Role, id Identity) (Account, bool, error)
}

// Config carries the signing material for portal tokens.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Service drives the login flow: external identity in, signed portal token
// out.
type Service struct {
	provider  IdentityProvider
	directory Directory
	cfg       Config
}

func NewService(provider IdentityProvider, directory Directory, cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &Service{provider: provider, directory: directory, cfg: cfg}
}

// LoginURL returns the provider authorization URL for the given state.
func (s *Service) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// CompleteLogin exchanges the authorization code, resolves or creates the
// local account and mints the portal token the frontend stores.
func (s *Service) CompleteLogin(ctx context.Context, code string) (string, *Claims, error) {
	id, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", nil, err
	}
	return s.IssueFor(ctx, id)
}

// IssueFor mints a token for an already-verified identity. Split out so the
// dev token endpoint and tests can skip the OAuth leg.
func (s *Service) IssueFor(ctx context.Context, id Identity) (string, *Claims, error) {
	role := DetermineRole(id.Email)
	account, isNew, err := s.directory.Resolve(ctx, role, id)
	if err != nil {
		return "", nil, err
	}
	claims := Claims{
		UserID:        account.ID,
		Email:         account.Email,
		Name:          account.Nome,
		UserType:      string(role),
		IsNewUser:     isNew,
		Matricula:     account.Matricula,
		Semestre:      account.Semestre,
		IsCoordenador: account.IsCoordenador,
	}
	token, err := NewAccessToken(s.cfg.Secret, s.cfg.Issuer, s.cfg.TokenTTL, claims)
	if err != nil {
		return "", nil, err
	}
	return token, &claims, nil
}

// Verify parses and validates a bearer token issued by this service.
func (s *Service) Verify(token string) (*Claims, error) {
	return ParseToken(s.cfg.Secret, token)
}

// DetermineRole classifies an institutional e-mail. Faculty addresses live
// under the professores subdomain and never start with a digit; staff
// addresses carry admin or coordenador markers.
func DetermineRole(email string) session.Role {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return session.RoleAluno
	}
	local, _, _ := strings.Cut(email, "@")
	if strings.HasSuffix(email, "@professores.ibmec.edu.br") && local != "" && !unicode.IsDigit(rune(local[0])) {
		return session.RoleProfessor
	}
	if strings.Contains(email, "admin") || strings.Contains(email, "coordenador") {
		return session.RoleAdmin
	}
	return session.RoleAluno
}

// IsCoordenadorEmail mirrors the heuristic used when provisioning advisors.
func IsCoordenadorEmail(email string) bool {
	email = strings.ToLower(email)
	return strings.Contains(email, "coord") || strings.Contains(email, "diretor")
}

package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrMalformedCredential indicates the bearer credential could not be decoded.
var ErrMalformedCredential = errors.New("session: malformed credential")

// Role identifies which portal a user belongs to.
type Role string

const (
	RoleAluno     Role = "aluno"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"

	// RoleUnknown quarantines any user_type the portal does not recognise.
	// It never matches a required role and always routes to login.
	RoleUnknown Role = "unknown"
)

// ParseRole maps a raw user_type value onto a known role.
func ParseRole(raw string) Role {
	switch Role(strings.TrimSpace(raw)) {
	case RoleAluno:
		return RoleAluno
	case RoleProfessor:
		return RoleProfessor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// KnownRoles lists every role the portal recognises, in a stable order.
var KnownRoles = []Role{RoleAluno, RoleProfessor, RoleAdmin}

// Claims is the decoded payload of the bearer credential. The signature is
// never verified here: the backend is the authority, this side only reads.
type Claims struct {
	UserID        int64  `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	UserType      string `json:"user_type,omitempty"`
	IsNewUser     bool   `json:"is_new_user,omitempty"`
	Matricula     string `json:"matricula,omitempty"`
	Semestre      int    `json:"semestre,omitempty"`
	IsCoordenador bool   `json:"is_coordenador,omitempty"`
	Exp           *int64 `json:"exp,omitempty"`
}

// Role returns the validated role variant for the raw user_type claim.
func (c Claims) Role() Role {
	return ParseRole(c.UserType)
}

// ExpiresAt returns the expiry instant, or zero time when the credential
// carries no exp claim.
func (c Claims) ExpiresAt() time.Time {
	if c.Exp == nil {
		return time.Time{}
	}
	return time.Unix(*c.Exp, 0)
}

// Decode extracts claims from a compact three-part credential. Only the
// middle segment is consumed; inputs with two segments are accepted so a
// missing signature section does not break decoding.
func Decode(raw string) (Claims, error) {
	segments := strings.Split(strings.TrimSpace(raw), ".")
	if len(segments) < 2 {
		return Claims{}, ErrMalformedCredential
	}
	payload, err := decodeSegment(segments[1])
	if err != nil {
		return Claims{}, ErrMalformedCredential
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrMalformedCredential
	}
	return claims, nil
}

// IsExpired reports whether the claims carry an exp in the past. A credential
// without exp never expires on this side; the backend remains the real expiry
// authority.
func IsExpired(claims Claims, now time.Time) bool {
	if claims.Exp == nil {
		return false
	}
	return *claims.Exp < now.Unix()
}

func decodeSegment(seg string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(seg); err == nil {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(seg)
}

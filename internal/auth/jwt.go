package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// DefaultTokenTTL matches the original portal: one working day.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the signing-side counterpart of session.Claims. The registered
// claims supply exp/iat/jti; the portal fields serialize under the same JSON
// names the frontend decodes.
type Claims struct {
	UserID        int64  `json:"user_id"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	UserType      string `json:"user_type"`
	IsNewUser     bool   `json:"is_new_user,omitempty"`
	Matricula     string `json:"matricula,omitempty"`
	Semestre      int    `json:"semestre,omitempty"`
	IsCoordenador bool   `json:"is_coordenador,omitempty"`
	jwt.RegisteredClaims
}

// Role returns the validated role variant for the user_type claim.
func (c *Claims) Role() session.Role {
	return session.ParseRole(c.UserType)
}

// NewAccessToken signs an HS256 token for the given claims.
func NewAccessToken(secret, issuer string, ttl time.Duration, claims Claims) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strings.TrimSpace(claims.Email),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and registered claims, rejecting any
// non-HS256 token.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

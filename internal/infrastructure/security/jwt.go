package security

import (
	"errors"
	"time"

	"coursemarket/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens. Each role has its own
// secret, so a user token never verifies as an admin token and vice versa.
type TokenManager struct {
	secrets map[domain.Role][]byte
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenManager builds a manager for the two signing domains. A zero ttl
// issues tokens without an exp claim.
func NewTokenManager(userSecret, adminSecret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secrets: map[domain.Role][]byte{
			domain.RoleUser:  []byte(userSecret),
			domain.RoleAdmin: []byte(adminSecret),
		},
		ttl: ttl,
		now: time.Now,
	}
}

func (m *TokenManager) Issue(principalID string, role domain.Role) (string, error) {
	secret, ok := m.secrets[role]
	if !ok {
		return "", errors.New("unknown role")
	}

	now := m.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  principalID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks token against the role's secret and returns the principal id.
func (m *TokenManager) Verify(tokenStr string, role domain.Role) (string, error) {
	secret, ok := m.secrets[role]
	if !ok {
		return "", ErrTokenSignatureInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", classify(err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	if claims.Role != string(role) {
		return "", ErrTokenSignatureInvalid
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}

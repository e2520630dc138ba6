package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"coursemarket/internal/domain"
	"coursemarket/internal/infrastructure/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserIDKey  = "userId"
	AdminIDKey = "adminId"
)

type principalKey struct{ role domain.Role }

type TokenVerifier interface {
	Verify(token string, role domain.Role) (string, error)
}

func contextKey(role domain.Role) string {
	if role == domain.RoleAdmin {
		return AdminIDKey
	}
	return UserIDKey
}

// AuthMiddleware admits only requests carrying a token signed for role. The
// verified principal id is stored under userId or adminId and in the request
// context. No database access happens here.
func AuthMiddleware(verifier TokenVerifier, role domain.Role, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			metrics.rejected(string(role), "missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		token := authHeader
		if scheme, rest, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}

		subject, err := verifier.Verify(token, role)
		if err != nil {
			metrics.rejected(string(role), reason(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		id, err := uuid.Parse(subject)
		if err != nil {
			metrics.rejected(string(role), "malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": security.ErrTokenMalformed.Error()})
			return
		}

		c.Set(contextKey(role), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), principalKey{role}, id))

		c.Next()
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenSignatureInvalid):
		return "signature"
	default:
		return "malformed"
	}
}

// PrincipalID returns the id bound by AuthMiddleware for role.
func PrincipalID(c *gin.Context, role domain.Role) (uuid.UUID, bool) {
	v, ok := c.Get(contextKey(role))
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// PrincipalFromContext reads the same binding from a request context.
func PrincipalFromContext(ctx context.Context, role domain.Role) (uuid.UUID, bool) {
	id, ok := ctx.Value(principalKey{role}).(uuid.UUID)
	return id, ok
}

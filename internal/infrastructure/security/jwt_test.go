package security

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"coursemarket/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", 0)

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			token, err := m.Issue("principal-1", role)
			require.NoError(t, err)

			id, err := m.Verify(token, role)
			require.NoError(t, err)
			assert.Equal(t, "principal-1", id)
		})
	}
}

func TestTokenManager_CrossRoleRejected(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", 0)

	userToken, err := m.Issue("u1", domain.RoleUser)
	require.NoError(t, err)
	adminToken, err := m.Issue("a1", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = m.Verify(userToken, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	_, err = m.Verify(adminToken, domain.RoleUser)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_RoleClaimMismatch(t *testing.T) {
	// signed with the admin secret but claiming the user role
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	})
	token, err := raw.SignedString([]byte("admin-secret"))
	require.NoError(t, err)

	m := NewTokenManager("user-secret", "admin-secret", 0)
	_, err = m.Verify(token, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_Malformed(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", 0)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := m.Verify(tok, domain.RoleUser)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestTokenManager_TamperedPayload(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", 0)
	token, err := m.Issue("victim", domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"role":"user","sub":"attacker"}`))

	_, err = m.Verify(strings.Join(parts, "."), domain.RoleUser)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_WrongAlgorithm(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role:             string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	})
	token, err := raw.SignedString([]byte("user-secret"))
	require.NoError(t, err)

	m := NewTokenManager("user-secret", "admin-secret", 0)
	_, err = m.Verify(token, domain.RoleUser)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_Expiry(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", time.Minute)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	_, err = m.Verify(token, domain.RoleUser)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Verify(token, domain.RoleUser)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_NoExpiryByDefault(t *testing.T) {
	m := NewTokenManager("user-secret", "admin-secret", 0)
	token, err := m.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
	assert.Equal(t, "user", claims.Role)
}

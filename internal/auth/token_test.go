package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/accountsvc/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager("super-secret", time.Hour)
	payload := types.TokenPayload{ID: "id-1", Name: "Ana", Role: types.RoleAdmin}

	token, err := manager.Issue(payload)
	require.NoError(t, err)

	got, ok := manager.Verify(token)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager("secret", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.Issue(types.TokenPayload{ID: "id-1", Role: types.RoleNormal})
	require.NoError(t, err)

	manager.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }

	_, ok := manager.Verify(token)
	assert.False(t, ok)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewJWTManager("right-secret", time.Hour).Issue(types.TokenPayload{ID: "id-1"})
	require.NoError(t, err)

	_, ok := NewJWTManager("wrong-secret", time.Hour).Verify(token)
	assert.False(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager("k", time.Hour)
	for _, token := range []string{"", "   ", "not.a.jwt", "abc"} {
		_, ok := manager.Verify(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestVerifyRejectsOtherSigningMethods(t *testing.T) {
	t.Parallel()

	claims := Claims{
		ID: "id-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("k", time.Hour).Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsMissingID(t *testing.T) {
	t.Parallel()

	manager := NewJWTManager("k", time.Hour)
	token, err := manager.Issue(types.TokenPayload{Name: "nobody"})
	require.NoError(t, err)

	_, ok := manager.Verify(token)
	assert.False(t, ok)
}

func TestNewJWTManagerDefaultsTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultTokenTTL, NewJWTManager("k", 0).ttl)
}

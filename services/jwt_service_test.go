package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractToken(t *testing.T) {
	svc := NewJWTService(newTestConfig())

	token, err := svc.GenerateToken(7, "followup_leader")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "followup_leader", claims.Role)
	assert.Equal(t, "evangel-crm", claims.Issuer)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService(newTestConfig())
	token, err := issuer.GenerateToken(1, "main_admin")
	require.NoError(t, err)

	other := newTestConfig()
	other.JWTSecretKey = "a-different-secret"
	_, err = NewJWTService(other).ExtractClaims(token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := newTestConfig()
	svc := NewJWTService(cfg)

	claims := &JWTClaims{
		UserID: 1,
		Role:   "main_admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			Issuer:    "evangel-crm",
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(cfg.JWTSecretKey))
	require.NoError(t, err)

	_, err = svc.ExtractClaims(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService(newTestConfig())

	_, err := svc.ExtractClaims("not.a.token")
	require.Error(t, err)
}

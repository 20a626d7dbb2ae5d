package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/pkg/token"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := token.NewService("segredo-de-teste", time.Hour)

	signed, err := svc.GenerateToken("admin", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, token.Issuer, claims.Issuer)
}

func TestValidate_RejectsWrongSecretAndExpired(t *testing.T) {
	signed, err := token.NewService("outro-segredo", time.Hour).GenerateToken("admin", "admin")
	require.NoError(t, err)

	_, err = token.NewService("segredo-de-teste", time.Hour).ValidateToken(signed)
	assert.Error(t, err)

	expired, err := token.NewService("segredo-de-teste", -time.Minute).GenerateToken("admin", "admin")
	require.NoError(t, err)
	_, err = token.NewService("segredo-de-teste", time.Hour).ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_RejectsForeignIssuer(t *testing.T) {
	claims := token.CustomClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "outra-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("segredo-de-teste"))
	require.NoError(t, err)

	_, err = token.NewService("segredo-de-teste", time.Hour).ValidateToken(signed)
	assert.Error(t, err)
}

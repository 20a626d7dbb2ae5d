package authservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/token"
	"stockroom/internal/service/authservice"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLogin_Success(t *testing.T) {
	tokens := token.NewService("segredo", 30*time.Minute)
	svc := authservice.NewService(hash(t, "almoxarifado"), tokens, logger.NewNopLogger())

	resp, err := svc.Login(context.Background(), "almoxarifado")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), resp.ExpiresIn)

	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	tokens := token.NewService("segredo", time.Minute)

	tests := []struct {
		name     string
		hash     string
		password string
	}{
		{"senha errada", hash(t, "certa"), "errada"},
		{"senha vazia", hash(t, "certa"), ""},
		{"hash não configurado", "", "qualquer"},
		{"hash malformado", "não-é-bcrypt", "qualquer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := authservice.NewService(tt.hash, tokens, logger.NewNopLogger())
			_, err := svc.Login(context.Background(), tt.password)
			assert.IsType(t, &apperror.UnauthorizedError{}, err)
		})
	}
}

package authservice

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

// adminSubject é o sujeito dos tokens emitidos pelo login com senha compartilhada.
const adminSubject = "stockroom-admin"

// TokenIssuer é o contrato da camada de token (internal/pkg/token)
type TokenIssuer interface {
	GenerateToken(subject string, role string) (string, error)
	Expiry() time.Duration
}

// Service autentica o administrador pela senha compartilhada (hash bcrypt da configuração).
type Service struct {
	passwordHash []byte
	tokens       TokenIssuer
	logger       logger.Logger
}

// NewService cria uma nova instância do Service de autenticação.
func NewService(passwordHash string, tokens TokenIssuer, logger logger.Logger) *Service {
	return &Service{
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		tokens:       tokens,
		logger:       logger,
	}
}

// Login verifica a senha e emite um JWT com RoleAdmin.
func (s *Service) Login(ctx context.Context, password string) (domain.LoginResponse, error) {
	if password == "" {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("A senha é obrigatória.")
	}
	if len(s.passwordHash) == 0 {
		s.logger.Warn("Login administrativo desabilitado: ADMIN_PASSWORD_HASH não configurado.", nil)
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// Compara a senha informada (texto puro) com o hash configurado.
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		s.logger.Warn("Tentativa de login administrativo com senha inválida.", nil)
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokens.GenerateToken(adminSubject, string(domain.RoleAdmin))
	if err != nil {
		s.logger.Error("Falha ao gerar token de autenticação.", err)
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login administrativo realizado.", nil)
	return domain.LoginResponse{
		Token:     tokenString,
		ExpiresIn: int64(s.tokens.Expiry().Seconds()),
	}, nil
}

package auth

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// AuthService define o contrato de login administrativo.
type AuthService interface {
	Login(ctx context.Context, password string) (domain.LoginResponse, error)
}

// Handler agrupa os handlers de autenticação.
type Handler struct {
	Service AuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AuthService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// LoginHandler lida com a requisição POST /v1/login.
// @Summary Autentica o administrador e retorna um JWT
// @Description Confere a senha compartilhada do almoxarifado e emite um token com role admin.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.LoginRequest true "Senha administrativa"
// @Success 200 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), req.Password)
	response.Handle(w, r, h.Logger, resp, err, http.StatusOK)
}

package request

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

// RequestService define o contrato que o Handler espera do motor de ciclo de vida.
type RequestService interface {
	CreateRequest(ctx context.Context, draft domain.RequestDraft) (domain.Request, error)
	UpdateRequest(ctx context.Context, id string, draft domain.RequestDraft) (domain.Request, error)
	SetStatus(ctx context.Context, id string, target string) (domain.Request, error)
	GetRequest(ctx context.Context, id string) (domain.Request, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error)
}

// Handler agrupa os handlers de requisições.
type Handler struct {
	Service RequestService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc RequestService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateRequestHandler lida com a requisição POST /v1/requests.
// @Summary Abre uma requisição de componentes
// @Description Cria a requisição em PENDING. A disponibilidade é conferida mas nada é reservado.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body domain.RequestDraft true "Colaborador e itens"
// @Success 201 {object} domain.Request "Requisição criada"
// @Failure 400 {object} response.StockErrorResponse "Payload inválido ou estoque insuficiente"
// @Failure 404 {object} domain.ErrorResponse "Componente não encontrado"
// @Router /requests [post]
func (h *Handler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var draft domain.RequestDraft
	if err := response.Decode(r, &draft); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateRequest(r.Context(), draft)
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// UpdateRequestHandler lida com a requisição PUT /v1/requests/{id}.
// @Summary Edita uma requisição pendente
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "ID da requisição"
// @Param request body domain.RequestDraft true "Colaborador e itens"
// @Success 200 {object} domain.Request "Requisição atualizada"
// @Failure 400 {object} response.StockErrorResponse "Payload inválido ou estoque insuficiente"
// @Failure 404 {object} domain.ErrorResponse "Requisição não encontrada"
// @Failure 409 {object} domain.ErrorResponse "Requisição não está PENDING"
// @Security ApiKeyAuth
// @Router /requests/{id} [put]
func (h *Handler) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var draft domain.RequestDraft
	if err := response.Decode(r, &draft); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateRequest(r.Context(), r.PathValue("id"), draft)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// SetStatusHandler lida com a requisição POST /v1/requests/{id}/status.
// @Summary Muda o status de uma requisição
// @Description APPROVED debita o estoque; RETURNED devolve os itens não consumíveis; PENDING desfaz os movimentos.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "ID da requisição"
// @Param status body domain.StatusChange true "Status de destino"
// @Success 200 {object} domain.Request "Requisição no novo status"
// @Failure 400 {object} response.StockErrorResponse "Status inválido ou estoque insuficiente"
// @Failure 404 {object} domain.ErrorResponse "Requisição não encontrada"
// @Failure 409 {object} domain.ErrorResponse "Transição não permitida"
// @Security ApiKeyAuth
// @Router /requests/{id}/status [post]
func (h *Handler) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	var change domain.StatusChange
	if err := response.Decode(r, &change); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.SetStatus(r.Context(), r.PathValue("id"), change.Status)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// GetRequestHandler lida com a requisição GET /v1/requests/{id}.
// @Summary Obtém uma requisição com seus itens
// @Tags requests
// @Produce json
// @Param id path string true "ID da requisição"
// @Success 200 {object} domain.Request "Requisição encontrada"
// @Failure 404 {object} domain.ErrorResponse "Requisição não encontrada"
// @Router /requests/{id} [get]
func (h *Handler) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.GetRequest(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, req, err, http.StatusOK)
}

// ListRequestsHandler lida com a requisição GET /v1/requests.
// @Summary Lista requisições
// @Description Mais recentes primeiro, com filtro opcional de status.
// @Tags requests
// @Produce json
// @Param status query string false "PENDING, APPROVED ou RETURNED"
// @Param limit query int false "Máximo de itens (padrão 50, máximo 200)"
// @Param offset query int false "Deslocamento"
// @Success 200 {array} domain.Request "Lista de requisições"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Security ApiKeyAuth
// @Router /requests [get]
func (h *Handler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := response.Pagination(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	filter := domain.RequestFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseRequestStatus(raw)
		if !ok {
			response.Error(w, r, h.Logger, apperror.NewValidationError("Status inválido. Use PENDING, APPROVED ou RETURNED."))
			return
		}
		filter.Status = status
	}

	requests, err := h.Service.ListRequests(r.Context(), filter)
	response.Handle(w, r, h.Logger, requests, err, http.StatusOK)
}

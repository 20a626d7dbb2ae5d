package component

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/middleware"
)

// ComponentService define o contrato que o Handler espera da administração de componentes.
type ComponentService interface {
	CreateComponent(ctx context.Context, input domain.ComponentInput) (domain.Component, error)
	GetComponent(ctx context.Context, id string) (domain.Component, error)
	ListComponents(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error)
	UpdateComponent(ctx context.Context, id string, input domain.ComponentInput) (domain.Component, error)
	DeleteComponent(ctx context.Context, id string) error
}

// StockAdjuster é a parte do razão de estoque usada pelo ajuste manual.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.Component, error)
}

// Handler agrupa os handlers de componentes.
type Handler struct {
	Service ComponentService
	Ledger  StockAdjuster
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando os serviços e o Logger.
func NewHandler(svc ComponentService, ledger StockAdjuster, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Ledger:  ledger,
		Logger:  log,
	}
}

// AdjustRequest é o corpo do ajuste manual de estoque.
type AdjustRequest struct {
	Delta   int    `json:"delta" example:"-3"`
	Project string `json:"project" example:"Protótipo v2"`
	Notes   string `json:"notes" example:"Placa queimada no teste"`
}

// CreateComponentHandler lida com a requisição POST /v1/components.
// @Summary Cadastra um componente
// @Description Cria um componente. Quantidade inicial positiva gera o registro "Initial stock" no histórico.
// @Tags components
// @Accept json
// @Produce json
// @Param component body domain.ComponentInput true "Dados do componente"
// @Success 201 {object} domain.Component "Componente criado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /components [post]
func (h *Handler) CreateComponentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Cadastro de componente solicitado.", map[string]interface{}{"subject": claims.Subject})
	}

	var input domain.ComponentInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateComponent(ctx, input)
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetComponentHandler lida com a requisição GET /v1/components/{id}.
// @Summary Obtém um componente por ID
// @Tags components
// @Produce json
// @Param id path string true "ID do componente"
// @Success 200 {object} domain.Component "Componente encontrado"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Componente não encontrado"
// @Router /components/{id} [get]
func (h *Handler) GetComponentHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetComponent(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, c, err, http.StatusOK)
}

// ListComponentsHandler lida com a requisição GET /v1/components.
// @Summary Lista componentes
// @Description Lista componentes ordenados por nome, com filtros opcionais.
// @Tags components
// @Produce json
// @Param name query string false "Trecho do nome (sem distinção de caixa)"
// @Param category query string false "Categoria exata"
// @Param low_stock query bool false "Apenas componentes no estoque mínimo ou abaixo"
// @Param limit query int false "Máximo de itens (padrão 50, máximo 500)"
// @Param offset query int false "Deslocamento"
// @Success 200 {array} domain.Component "Lista de componentes"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Router /components [get]
func (h *Handler) ListComponentsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := response.Pagination(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	lowStock, err := response.BoolParam(r, "low_stock")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	components, err := h.Service.ListComponents(r.Context(), domain.ComponentFilter{
		Name:         r.URL.Query().Get("name"),
		CategoryName: r.URL.Query().Get("category"),
		LowStockOnly: lowStock,
		Limit:        limit,
		Offset:       offset,
	})
	response.Handle(w, r, h.Logger, components, err, http.StatusOK)
}

// UpdateComponentHandler lida com a requisição PUT /v1/components/{id}.
// @Summary Atualiza os metadados de um componente
// @Description A quantidade informada é ignorada; o estoque só muda pelo razão.
// @Tags components
// @Accept json
// @Produce json
// @Param id path string true "ID do componente"
// @Param component body domain.ComponentInput true "Novos metadados"
// @Success 200 {object} domain.Component "Componente atualizado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Componente não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Componente alterado concorrentemente"
// @Security ApiKeyAuth
// @Router /components/{id} [put]
func (h *Handler) UpdateComponentHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.ComponentInput
	if err := response.Decode(r, &input); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateComponent(r.Context(), r.PathValue("id"), input)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// DeleteComponentHandler lida com a requisição DELETE /v1/components/{id}.
// @Summary Remove um componente
// @Description Remove o componente e seu histórico de uso. Falha se alguma requisição o referencia.
// @Tags components
// @Param id path string true "ID do componente"
// @Success 204 "Componente removido"
// @Failure 404 {object} domain.ErrorResponse "Componente não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Componente referenciado por requisições"
// @Security ApiKeyAuth
// @Router /components/{id} [delete]
func (h *Handler) DeleteComponentHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteComponent(r.Context(), r.PathValue("id"))
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// AdjustStockHandler lida com a requisição POST /v1/components/{id}/adjust.
// @Summary Ajusta o estoque manualmente
// @Description Adiciona (delta > 0) ou retira (delta < 0) unidades e grava o registro de uso.
// @Tags components
// @Accept json
// @Produce json
// @Param id path string true "ID do componente"
// @Param adjustment body AdjustRequest true "Delta e causa"
// @Success 200 {object} domain.Component "Componente com a nova quantidade"
// @Failure 400 {object} response.StockErrorResponse "Estoque insuficiente ou payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Componente não encontrado"
// @Security ApiKeyAuth
// @Router /components/{id}/adjust [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	c, err := h.Ledger.AdjustStock(r.Context(), domain.StockAdjustment{
		ComponentID: r.PathValue("id"),
		Delta:       req.Delta,
		Project:     req.Project,
		Notes:       req.Notes,
	})
	response.Handle(w, r, h.Logger, c, err, http.StatusOK)
}

package usage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UsageService define o contrato de leitura do histórico de uso.
type UsageService interface {
	ListUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error)
	ExportUsage(ctx context.Context, filter domain.UsageFilter) ([]byte, error)
}

// Handler agrupa os handlers do histórico de uso.
type Handler struct {
	Service UsageService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UsageService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ListUsageHandler lida com a requisição GET /v1/usage.
// @Summary Lista o histórico de uso
// @Description Registros mais recentes primeiro, com o nome do componente.
// @Tags usage
// @Produce json
// @Param component_id query string false "Filtra por componente"
// @Param limit query int false "Máximo de itens (padrão 50, máximo 500)"
// @Param offset query int false "Deslocamento"
// @Success 200 {array} domain.UsageRecord "Registros de uso"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Security ApiKeyAuth
// @Router /usage [get]
func (h *Handler) ListUsageHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := usageFilter(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	records, err := h.Service.ListUsage(r.Context(), filter)
	response.Handle(w, r, h.Logger, records, err, http.StatusOK)
}

// ExportUsageHandler lida com a requisição GET /v1/usage/export.
// @Summary Exporta o histórico de uso em XLSX
// @Tags usage
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param component_id query string false "Filtra por componente"
// @Success 200 {file} file "Planilha do histórico"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /usage/export [get]
func (h *Handler) ExportUsageHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := usageFilter(r)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	data, err := h.Service.ExportUsage(r.Context(), filter)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	filename := fmt.Sprintf("usage-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("Falha ao enviar a planilha do histórico.", err)
	}
}

func usageFilter(r *http.Request) (domain.UsageFilter, error) {
	limit, offset, err := response.Pagination(r)
	if err != nil {
		return domain.UsageFilter{}, err
	}
	return domain.UsageFilter{
		ComponentID: r.URL.Query().Get("component_id"),
		Limit:       limit,
		Offset:      offset,
	}, nil
}

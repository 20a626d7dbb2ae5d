package usageservice

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service é o histórico de uso: único escritor de UsageRecord e seu modelo de leitura.
type Service struct {
	repo    domain.UsageRepository
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Histórico de Uso.
func NewService(repo domain.UsageRepository, m *metrics.Metrics, logger logger.Logger) *Service {
	return &Service{repo: repo, metrics: m, logger: logger}
}

// Append grava um registro dentro da transação tx. O sinal da quantidade segue o tipo:
// retiradas são sempre negativas e adições sempre positivas.
func (s *Service) Append(ctx context.Context, tx domain.LedgerTx, record domain.UsageRecord) (domain.UsageRecord, error) {
	if record.ComponentID == "" {
		return domain.UsageRecord{}, apperror.NewValidationError("O registro de uso precisa de um componente.")
	}
	if record.Quantity == 0 {
		return domain.UsageRecord{}, apperror.NewValidationError("O registro de uso não pode ter quantidade zero.")
	}

	magnitude := record.Quantity
	if magnitude < 0 {
		magnitude = -magnitude
	}
	switch record.Type {
	case domain.UsageRemove:
		record.Quantity = -magnitude
	case domain.UsageAdd:
		record.Quantity = magnitude
	default:
		return domain.UsageRecord{}, apperror.NewValidationError("Tipo de registro de uso inválido: " + string(record.Type))
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := tx.InsertUsage(ctx, record); err != nil {
		return domain.UsageRecord{}, err
	}

	s.metrics.StockMoved(string(record.Type), record.Quantity)
	s.logger.Debug("Registro de uso adicionado.", map[string]interface{}{
		"usage_id":     record.ID,
		"component_id": record.ComponentID,
		"quantity":     record.Quantity,
		"type":         record.Type,
		"project":      record.Project,
	})
	return record, nil
}

// ListUsage devolve uma página do histórico, mais recentes primeiro.
func (s *Service) ListUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	records, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar histórico de uso.", err)
		return nil, err
	}
	return records, nil
}

// exportHeader define as colunas da planilha exportada.
var exportHeader = []interface{}{"created_at", "component_id", "component_name", "type", "quantity", "project", "notes", "request_id"}

// ExportUsage gera uma planilha XLSX com todo o histórico que atende ao filtro.
func (s *Service) ExportUsage(ctx context.Context, filter domain.UsageFilter) ([]byte, error) {
	filter.Limit = 0
	filter.Offset = 0

	records, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao carregar histórico para exportação.", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, apperror.NewInternalError("Falha ao gerar planilha (cabeçalho).", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperror.NewInternalError("Falha ao gerar planilha (células).", err)
		}
		row := []interface{}{
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.ComponentID,
			r.ComponentName,
			string(r.Type),
			r.Quantity,
			r.Project,
			r.Notes,
			r.RequestID,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, apperror.NewInternalError("Falha ao gerar planilha (linhas).", err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, apperror.NewInternalError("Falha ao gravar planilha.", err)
	}

	s.logger.Info("Histórico de uso exportado.", map[string]interface{}{"rows": len(records)})
	return buf.Bytes(), nil
}

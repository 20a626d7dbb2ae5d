package componentservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// UsageAppender define o contrato esperado do histórico de uso.
type UsageAppender interface {
	Append(ctx context.Context, tx domain.LedgerTx, record domain.UsageRecord) (domain.UsageRecord, error)
}

// Service é a estrutura de administração de componentes.
type Service struct {
	txm    domain.TxManager
	usage  UsageAppender
	repo   domain.ComponentRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Componentes.
func NewService(txm domain.TxManager, usage UsageAppender, repo domain.ComponentRepository, logger logger.Logger) *Service {
	return &Service{txm: txm, usage: usage, repo: repo, logger: logger}
}

// CreateComponent cadastra um componente. Uma quantidade inicial positiva é registrada
// no histórico como "Initial stock" na mesma transação.
func (s *Service) CreateComponent(ctx context.Context, input domain.ComponentInput) (domain.Component, error) {
	s.logger.Debug("Iniciando criação de componente no serviço.", map[string]interface{}{"name": input.Name})

	input = trimInput(input)
	if err := validateInput(input); err != nil {
		s.logger.Warn("Falha na validação do componente.", map[string]interface{}{"name": input.Name, "error": err.Error()})
		return domain.Component{}, err
	}
	if input.Quantity < 0 {
		return domain.Component{}, apperror.NewValidationError("A quantidade inicial não pode ser negativa.")
	}

	now := time.Now().UTC()
	component := domain.Component{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Quantity:     input.Quantity,
		Unit:         input.Unit,
		MinStock:     input.MinStock,
		Location:     input.Location,
		Supplier:     input.Supplier,
		ImageRef:     input.ImageRef,
		CategoryName: input.CategoryName,
		Consumable:   input.Consumable,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.txm.WithinTx(ctx, func(tx domain.LedgerTx) error {
		if err := tx.InsertComponent(ctx, component); err != nil {
			return err
		}
		if component.Quantity == 0 {
			return nil
		}
		_, err := s.usage.Append(ctx, tx, domain.UsageRecord{
			ComponentID: component.ID,
			Quantity:    component.Quantity,
			Type:        domain.UsageAdd,
			Project:     domain.InitialStockCause,
			CreatedAt:   now,
		})
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return domain.Component{}, err
		}
		s.logger.Error("Falha ao criar componente.", err)
		return domain.Component{}, apperror.NewInternalError("Falha interna ao criar componente.", err)
	}

	s.logger.Info("Componente criado com sucesso.", map[string]interface{}{"id": component.ID, "name": component.Name, "quantity": component.Quantity})
	return component, nil
}

// GetComponent busca um componente pelo ID (com cache).
func (s *Service) GetComponent(ctx context.Context, id string) (domain.Component, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Component{}, apperror.NewValidationError("O ID do componente deve ser um UUID válido.")
	}

	component, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Component{}, err // Erros do repositório já são NotFoundError ou PersistenceError
	}
	return component, nil
}

// ListComponents lista componentes com paginação e filtros.
func (s *Service) ListComponents(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error) {
	s.logger.Debug("Iniciando listagem de componentes no serviço.", map[string]interface{}{"name": filter.Name, "category": filter.CategoryName, "low_stock": filter.LowStockOnly})

	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Name = strings.TrimSpace(filter.Name)
	filter.CategoryName = strings.TrimSpace(filter.CategoryName)

	return s.repo.FindAll(ctx, filter)
}

// UpdateComponent altera os metadados de um componente. A quantidade não é alterada aqui.
func (s *Service) UpdateComponent(ctx context.Context, id string, input domain.ComponentInput) (domain.Component, error) {
	s.logger.Debug("Iniciando atualização de componente no serviço.", map[string]interface{}{"id": id, "name": input.Name})

	current, err := s.GetComponent(ctx, id)
	if err != nil {
		return domain.Component{}, err
	}

	input = trimInput(input)
	if err := validateInput(input); err != nil {
		s.logger.Warn("Falha na validação do componente para atualização.", map[string]interface{}{"id": id, "error": err.Error()})
		return domain.Component{}, err
	}

	current.Name = input.Name
	current.Unit = input.Unit
	current.MinStock = input.MinStock
	current.Location = input.Location
	current.Supplier = input.Supplier
	current.ImageRef = input.ImageRef
	current.CategoryName = input.CategoryName
	current.Consumable = input.Consumable

	updated, err := s.repo.UpdateMetadata(ctx, current)
	if err != nil {
		return domain.Component{}, err
	}

	s.logger.Info("Componente atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "version": updated.Version})
	return updated, nil
}

// DeleteComponent remove um componente que não esteja em nenhuma requisição.
func (s *Service) DeleteComponent(ctx context.Context, id string) error {
	s.logger.Debug("Iniciando exclusão de componente no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do componente deve ser um UUID válido.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Componente removido com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func trimInput(in domain.ComponentInput) domain.ComponentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Location = strings.TrimSpace(in.Location)
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.CategoryName = strings.TrimSpace(in.CategoryName)
	return in
}

// validateInput é uma função auxiliar para validar os campos obrigatórios do componente.
func validateInput(in domain.ComponentInput) error {
	if in.Name == "" {
		return apperror.NewValidationError("O nome do componente não pode ser vazio.")
	}
	if len(in.Name) > 200 {
		return apperror.NewValidationError("O nome do componente deve ter no máximo 200 caracteres.")
	}
	if in.Unit == "" {
		return apperror.NewValidationError("A unidade do componente é obrigatória.")
	}
	if in.MinStock < 0 {
		return apperror.NewValidationError(fmt.Sprintf("O estoque mínimo não pode ser negativo (%d).", in.MinStock))
	}
	return nil
}

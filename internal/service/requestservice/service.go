package requestservice

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/notify"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// StockLedger define o contrato que o motor de ciclo de vida espera do razão de estoque.
type StockLedger interface {
	CheckAvailability(ctx context.Context, tx domain.LedgerTx, items []domain.ItemQuantity, forUpdate bool) (map[string]domain.Component, error)
	Debit(ctx context.Context, tx domain.LedgerTx, c domain.Component, qty int) (domain.Component, error)
	Credit(ctx context.Context, tx domain.LedgerTx, c domain.Component, qty int) (domain.Component, error)
	NotifyLowStock(ctx context.Context, components []domain.Component)
}

// UsageAppender define o contrato esperado do histórico de uso.
type UsageAppender interface {
	Append(ctx context.Context, tx domain.LedgerTx, record domain.UsageRecord) (domain.UsageRecord, error)
}

// Service é o motor de ciclo de vida das requisições (PENDING -> APPROVED -> RETURNED).
// Cada operação de escrita é uma única transação sobre o razão de estoque.
type Service struct {
	txm        domain.TxManager
	ledger     StockLedger
	usage      UsageAppender
	repo       domain.RequestRepository
	notifier   domain.Notifier
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Requisições.
func NewService(txm domain.TxManager, ledger StockLedger, usage UsageAppender, repo domain.RequestRepository, notifier domain.Notifier, dispatcher *notify.Dispatcher, m *metrics.Metrics, logger logger.Logger) *Service {
	return &Service{
		txm:        txm,
		ledger:     ledger,
		usage:      usage,
		repo:       repo,
		notifier:   notifier,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// CreateRequest valida o rascunho, faz a verificação consultiva de disponibilidade
// (sem reservar estoque) e grava a requisição como PENDING.
func (s *Service) CreateRequest(ctx context.Context, draft domain.RequestDraft) (domain.Request, error) {
	s.logger.Debug("Iniciando criação de requisição no serviço.", map[string]interface{}{"personnel_name": draft.PersonnelName, "items": len(draft.Items)})

	draft, err := normalizeDraft(draft)
	if err != nil {
		s.logger.Warn("Falha na validação da requisição.", map[string]interface{}{"error": err.Error()})
		return domain.Request{}, err
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	req := domain.Request{
		ID:             id,
		PersonnelName:  draft.PersonnelName,
		PersonnelEmail: draft.PersonnelEmail,
		Status:         domain.StatusPending,
		FaceImageRef:   draft.FaceImageRef,
		RequestedAt:    now,
		UpdatedAt:      now,
		Items:          buildItems(id, draft.Items),
	}

	err = s.txm.WithinTx(ctx, func(tx domain.LedgerTx) error {
		components, err := s.ledger.CheckAvailability(ctx, tx, req.Quantities(), false)
		if err != nil {
			return err
		}
		fillComponentInfo(req.Items, components)
		return tx.InsertRequest(ctx, req)
	})
	if err != nil {
		return domain.Request{}, s.wrap("Falha interna ao criar requisição.", err)
	}

	s.logger.Info("Requisição criada com sucesso.", map[string]interface{}{"request_id": req.ID, "personnel_name": req.PersonnelName, "items": len(req.Items)})
	return req, nil
}

// UpdateRequest substitui cabeçalho e itens de uma requisição PENDING. O estoque não é alterado.
func (s *Service) UpdateRequest(ctx context.Context, id string, draft domain.RequestDraft) (domain.Request, error) {
	s.logger.Debug("Iniciando edição de requisição no serviço.", map[string]interface{}{"request_id": id})

	if err := validateID(id); err != nil {
		return domain.Request{}, err
	}
	draft, err := normalizeDraft(draft)
	if err != nil {
		s.logger.Warn("Falha na validação da edição da requisição.", map[string]interface{}{"request_id": id, "error": err.Error()})
		return domain.Request{}, err
	}

	var req domain.Request
	err = s.txm.WithinTx(ctx, func(tx domain.LedgerTx) error {
		current, err := tx.GetRequest(ctx, id, true)
		if err != nil {
			return err
		}
		if current.Status != domain.StatusPending {
			return apperror.NewConflictError(fmt.Sprintf("A requisição %s está %s e só pode ser editada enquanto PENDING.", id, current.Status))
		}

		req = current
		req.PersonnelName = draft.PersonnelName
		req.PersonnelEmail = draft.PersonnelEmail
		req.FaceImageRef = draft.FaceImageRef
		req.UpdatedAt = time.Now().UTC()
		req.Items = buildItems(id, draft.Items)

		components, err := s.ledger.CheckAvailability(ctx, tx, req.Quantities(), false)
		if err != nil {
			return err
		}
		fillComponentInfo(req.Items, components)

		if err := tx.UpdateRequest(ctx, req); err != nil {
			return err
		}
		return tx.ReplaceRequestItems(ctx, req.ID, req.Items)
	})
	if err != nil {
		return domain.Request{}, s.wrap("Falha interna ao editar requisição.", err)
	}

	s.logger.Info("Requisição editada com sucesso.", map[string]interface{}{"request_id": req.ID, "items": len(req.Items)})
	return req, nil
}

// SetStatus é a única função de transição de status. Bloqueia a requisição, aplica os
// débitos/créditos e o histórico de uso correspondentes e grava o novo status numa só
// transação. As notificações são disparadas somente após o commit.
func (s *Service) SetStatus(ctx context.Context, id string, target string) (domain.Request, error) {
	s.logger.Debug("Iniciando transição de status no serviço.", map[string]interface{}{"request_id": id, "target": target})

	if err := validateID(id); err != nil {
		return domain.Request{}, err
	}
	to, ok := domain.ParseRequestStatus(target)
	if !ok {
		return domain.Request{}, apperror.NewValidationError(fmt.Sprintf("Status inválido: %q. Use PENDING, APPROVED ou RETURNED.", target))
	}

	var (
		req      domain.Request
		from     domain.RequestStatus
		lowStock []domain.Component
	)
	err := s.txm.WithinTx(ctx, func(tx domain.LedgerTx) error {
		var err error
		req, err = tx.GetRequest(ctx, id, true)
		if err != nil {
			return err
		}
		from = req.Status

		if len(req.Items) == 0 {
			return apperror.NewValidationError(fmt.Sprintf("A requisição %s não possui itens.", id))
		}
		if !domain.CanTransition(from, to) {
			return apperror.NewConflictError(fmt.Sprintf("Transição de %s para %s não é permitida.", from, to))
		}

		now := time.Now().UTC()
		switch {
		case from == domain.StatusPending && to == domain.StatusApproved:
			lowStock, err = s.approve(ctx, tx, req)
			req.ApprovedAt = &now
		case from == domain.StatusApproved && to == domain.StatusReturned:
			err = s.creditBack(ctx, tx, req, func(item domain.RequestItem) bool { return !item.Consumable }, domain.ReturnCause(req.PersonnelName))
			req.ReturnedAt = &now
		case from == domain.StatusApproved && to == domain.StatusPending:
			err = s.creditBack(ctx, tx, req, func(domain.RequestItem) bool { return true }, domain.RevertCause(req.PersonnelName))
			req.ApprovedAt = nil
		case from == domain.StatusReturned && to == domain.StatusPending:
			err = s.creditBack(ctx, tx, req, func(item domain.RequestItem) bool { return item.Consumable }, domain.RevertCause(req.PersonnelName))
			req.ApprovedAt = nil
			req.ReturnedAt = nil
		}
		if err != nil {
			return err
		}

		req.Status = to
		req.UpdatedAt = now
		return tx.UpdateRequest(ctx, req)
	})
	s.metrics.Transition(string(from), string(to), err)
	if err != nil {
		return domain.Request{}, s.wrap("Falha interna ao alterar status da requisição.", err)
	}

	s.logger.Info("Status da requisição alterado.", map[string]interface{}{"request_id": req.ID, "from": from, "to": to})

	s.notifyTransition(ctx, req)
	if len(lowStock) > 0 {
		s.ledger.NotifyLowStock(ctx, lowStock)
	}
	return req, nil
}

// approve faz a verificação autoritativa (com lock), debita cada item e grava um
// registro de retirada por item. Devolve os componentes que ficaram no estoque mínimo.
func (s *Service) approve(ctx context.Context, tx domain.LedgerTx, req domain.Request) ([]domain.Component, error) {
	components, err := s.ledger.CheckAvailability(ctx, tx, req.Quantities(), true)
	if err != nil {
		return nil, err
	}

	cause := domain.RequestCause(req.PersonnelName)
	for _, item := range req.Items {
		updated, err := s.ledger.Debit(ctx, tx, components[item.ComponentID], item.Quantity)
		if err != nil {
			return nil, err
		}
		components[item.ComponentID] = updated

		if _, err := s.usage.Append(ctx, tx, domain.UsageRecord{
			ComponentID: item.ComponentID,
			RequestID:   req.ID,
			Quantity:    item.Quantity,
			Type:        domain.UsageRemove,
			Project:     cause,
			Notes:       item.Description,
		}); err != nil {
			return nil, err
		}
	}

	// Fixa nos itens o flag consumível vigente na aprovação; devolução e reversões usam esse valor.
	fillComponentInfo(req.Items, components)
	if err := tx.ReplaceRequestItems(ctx, req.ID, req.Items); err != nil {
		return nil, err
	}

	var low []domain.Component
	for _, c := range components {
		if c.IsLowStock() {
			low = append(low, c)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].ID < low[j].ID })
	return low, nil
}

// creditBack devolve ao estoque os itens selecionados por include, com um registro de adição por item.
func (s *Service) creditBack(ctx context.Context, tx domain.LedgerTx, req domain.Request, include func(domain.RequestItem) bool, cause string) error {
	var items []domain.RequestItem
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if include(item) {
			items = append(items, item)
			ids = append(ids, item.ComponentID)
		}
	}
	if len(items) == 0 {
		return nil
	}

	components, err := tx.GetComponents(ctx, ids, true)
	if err != nil {
		return err
	}

	for _, item := range items {
		c, ok := components[item.ComponentID]
		if !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Componente com ID %s não existe.", item.ComponentID))
		}
		updated, err := s.ledger.Credit(ctx, tx, c, item.Quantity)
		if err != nil {
			return err
		}
		components[item.ComponentID] = updated

		if _, err := s.usage.Append(ctx, tx, domain.UsageRecord{
			ComponentID: item.ComponentID,
			RequestID:   req.ID,
			Quantity:    item.Quantity,
			Type:        domain.UsageAdd,
			Project:     cause,
			Notes:       item.Description,
		}); err != nil {
			return err
		}
	}
	return nil
}

// notifyTransition envia em segundo plano os eventos de aprovação e devolução. Falhas são apenas registradas.
func (s *Service) notifyTransition(ctx context.Context, req domain.Request) {
	if s.notifier == nil {
		return
	}

	var (
		event string
		send  func(context.Context, domain.Request) error
	)
	switch req.Status {
	case domain.StatusApproved:
		event, send = "approved", s.notifier.RequestApproved
	case domain.StatusReturned:
		event, send = "returned", s.notifier.RequestReturned
	default:
		return
	}

	s.dispatcher.Go(ctx, func(ctx context.Context) {
		if err := send(ctx, req); err != nil {
			s.metrics.NotificationFailed(event)
			s.logger.Warn("Falha ao enviar notificação da requisição.", map[string]interface{}{"request_id": req.ID, "event": event, "error": err.Error()})
		}
	})
}

// GetRequest busca uma requisição pelo ID.
func (s *Service) GetRequest(ctx context.Context, id string) (domain.Request, error) {
	s.logger.Debug("Iniciando busca de requisição por ID no serviço.", map[string]interface{}{"request_id": id})

	if err := validateID(id); err != nil {
		return domain.Request{}, err
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Request{}, s.wrap("Falha interna ao buscar requisição.", err)
	}
	return req, nil
}

// ListRequests lista requisições, mais recentes primeiro.
func (s *Service) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error) {
	s.logger.Debug("Iniciando listagem de requisições no serviço.", map[string]interface{}{"status": filter.Status})

	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	requests, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, s.wrap("Falha interna ao listar requisições.", err)
	}
	return requests, nil
}

// wrap mantém os erros de domínio e converte os demais em InternalError.
func (s *Service) wrap(msg string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	s.logger.Error(msg, err)
	return apperror.NewInternalError(msg, err)
}

// normalizeDraft aplica as regras de validação de criação/edição.
// Sem email explícito, um nome no formato "Nome <email>" é aceito por compatibilidade.
func normalizeDraft(draft domain.RequestDraft) (domain.RequestDraft, error) {
	draft.PersonnelName = strings.TrimSpace(draft.PersonnelName)
	draft.PersonnelEmail = strings.TrimSpace(draft.PersonnelEmail)

	if draft.PersonnelEmail == "" {
		if addr, err := mail.ParseAddress(draft.PersonnelName); err == nil && addr.Name != "" {
			draft.PersonnelName = strings.TrimSpace(addr.Name)
			draft.PersonnelEmail = addr.Address
		}
	} else {
		addr, err := mail.ParseAddress(draft.PersonnelEmail)
		if err != nil {
			return draft, apperror.NewValidationError(fmt.Sprintf("Email inválido: %q.", draft.PersonnelEmail))
		}
		draft.PersonnelEmail = addr.Address
	}

	if draft.PersonnelName == "" {
		return draft, apperror.NewValidationError("O nome do colaborador não pode ser vazio.")
	}
	if len(draft.Items) == 0 {
		return draft, apperror.NewValidationError("A requisição deve ter pelo menos um item.")
	}
	items := make([]domain.RequestItemInput, len(draft.Items))
	for i, item := range draft.Items {
		item.ComponentID = strings.TrimSpace(item.ComponentID)
		if item.ComponentID == "" {
			return draft, apperror.NewValidationError(fmt.Sprintf("Item %d: o ID do componente é obrigatório.", i+1))
		}
		if item.Quantity <= 0 {
			return draft, apperror.NewValidationError(fmt.Sprintf("Item %d: a quantidade deve ser maior que zero.", i+1))
		}
		items[i] = item
	}
	draft.Items = items
	return draft, nil
}

func buildItems(requestID string, inputs []domain.RequestItemInput) []domain.RequestItem {
	items := make([]domain.RequestItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, domain.RequestItem{
			ID:          uuid.New().String(),
			RequestID:   requestID,
			ComponentID: in.ComponentID,
			Quantity:    in.Quantity,
			Description: in.Description,
		})
	}
	return items
}

func fillComponentInfo(items []domain.RequestItem, components map[string]domain.Component) {
	for i := range items {
		if c, ok := components[items[i].ComponentID]; ok {
			items[i].ComponentName = c.Name
			items[i].Consumable = c.Consumable
		}
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da requisição deve ser um UUID válido.")
	}
	return nil
}

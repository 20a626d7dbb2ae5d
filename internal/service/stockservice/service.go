package stockservice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/metrics"
	"stockroom/internal/pkg/notify"
)

// UsageAppender é o contrato que o razão espera do histórico de uso.
type UsageAppender interface {
	Append(ctx context.Context, tx domain.LedgerTx, record domain.UsageRecord) (domain.UsageRecord, error)
}

// Ledger é o razão de estoque: verificação de disponibilidade, débito e crédito.
// CheckAvailability, Debit e Credit sempre recebem a transação do chamador.
type Ledger struct {
	txm        domain.TxManager
	usage      UsageAppender
	notifier   domain.Notifier
	dispatcher *notify.Dispatcher
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewLedger cria e retorna uma nova instância do Razão de Estoque.
func NewLedger(txm domain.TxManager, usage UsageAppender, notifier domain.Notifier, dispatcher *notify.Dispatcher, m *metrics.Metrics, logger logger.Logger) *Ledger {
	return &Ledger{txm: txm, usage: usage, notifier: notifier, dispatcher: dispatcher, metrics: m, logger: logger}
}

// CheckAvailability verifica se todos os itens podem ser atendidos, sem gravar nada.
// Linhas repetidas do mesmo componente são somadas. Os componentes são verificados
// em ordem de ID e, com forUpdate, ficam bloqueados até o fim de tx.
func (l *Ledger) CheckAvailability(ctx context.Context, tx domain.LedgerTx, items []domain.ItemQuantity, forUpdate bool) (map[string]domain.Component, error) {
	totals := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := totals[item.ComponentID]; !seen {
			ids = append(ids, item.ComponentID)
		}
		totals[item.ComponentID] += item.Quantity
	}
	sort.Strings(ids)

	components, err := tx.GetComponents(ctx, ids, forUpdate)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		c, ok := components[id]
		if !ok {
			l.logger.Warn("Componente da requisição não encontrado.", map[string]interface{}{"component_id": id})
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Componente com ID %s não existe.", id))
		}
		requested := totals[id]
		if c.Quantity == 0 || c.Quantity < requested {
			l.logger.Warn("Estoque insuficiente para o componente.", map[string]interface{}{
				"component_id":  id,
				"requested":     requested,
				"available":     c.Quantity,
				"authoritative": forUpdate,
			})
			return nil, apperror.NewInsufficientStockError(c.ID, c.Name, requested, c.Quantity)
		}
	}

	return components, nil
}

// Debit retira qty unidades de c dentro de tx. Nunca deixa a quantidade negativa.
func (l *Ledger) Debit(ctx context.Context, tx domain.LedgerTx, c domain.Component, qty int) (domain.Component, error) {
	if qty <= 0 {
		return domain.Component{}, apperror.NewValidationError("A quantidade a debitar deve ser maior que zero.")
	}
	if c.Quantity < qty {
		return domain.Component{}, apperror.NewInsufficientStockError(c.ID, c.Name, qty, c.Quantity)
	}
	return tx.UpdateComponentQuantity(ctx, c, c.Quantity-qty)
}

// Credit devolve qty unidades a c dentro de tx.
func (l *Ledger) Credit(ctx context.Context, tx domain.LedgerTx, c domain.Component, qty int) (domain.Component, error) {
	if qty <= 0 {
		return domain.Component{}, apperror.NewValidationError("A quantidade a creditar deve ser maior que zero.")
	}
	return tx.UpdateComponentQuantity(ctx, c, c.Quantity+qty)
}

// AdjustStock aplica uma entrada manual (adição ou retirada) e registra o uso na mesma transação.
func (l *Ledger) AdjustStock(ctx context.Context, adjustment domain.StockAdjustment) (domain.Component, error) {
	l.logger.Debug("Iniciando ajuste de estoque no serviço.", map[string]interface{}{
		"component_id": adjustment.ComponentID,
		"delta":        adjustment.Delta,
		"project":      adjustment.Project,
	})

	if adjustment.ComponentID == "" {
		return domain.Component{}, apperror.NewValidationError("O ID do componente é obrigatório.")
	}
	if adjustment.Delta == 0 {
		return domain.Component{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}

	var updated domain.Component
	err := l.txm.WithinTx(ctx, func(tx domain.LedgerTx) error {
		components, err := tx.GetComponents(ctx, []string{adjustment.ComponentID}, true)
		if err != nil {
			return err
		}
		c, ok := components[adjustment.ComponentID]
		if !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Componente com ID %s não existe.", adjustment.ComponentID))
		}

		record := domain.UsageRecord{
			ComponentID: c.ID,
			Quantity:    adjustment.Delta,
			Project:     adjustment.Project,
			Notes:       adjustment.Notes,
		}
		if adjustment.Delta > 0 {
			record.Type = domain.UsageAdd
			updated, err = l.Credit(ctx, tx, c, adjustment.Delta)
		} else {
			record.Type = domain.UsageRemove
			updated, err = l.Debit(ctx, tx, c, -adjustment.Delta)
		}
		if err != nil {
			return err
		}

		_, err = l.usage.Append(ctx, tx, record)
		return err
	})
	if err != nil {
		var stockErr *apperror.InsufficientStockError
		if errors.As(err, &stockErr) {
			l.logger.Warn("Ajuste rejeitado: resultaria em estoque negativo.", map[string]interface{}{"component_id": adjustment.ComponentID, "available": stockErr.Available})
		} else if !apperror.IsAppError(err) {
			l.logger.Error("Falha ao ajustar estoque.", err)
			return domain.Component{}, apperror.NewInternalError("Falha interna ao ajustar estoque.", err)
		}
		return domain.Component{}, err
	}

	if adjustment.Delta < 0 && updated.IsLowStock() {
		l.NotifyLowStock(ctx, []domain.Component{updated})
	}

	l.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"component_id": updated.ID,
		"new_quantity": updated.Quantity,
		"new_version":  updated.Version,
	})
	return updated, nil
}

// NotifyLowStock dispara em segundo plano a notificação de estoque baixo para cada componente
// informado. Deve ser chamado somente após o commit; falhas são registradas e ignoradas.
func (l *Ledger) NotifyLowStock(ctx context.Context, components []domain.Component) {
	for _, c := range components {
		l.metrics.LowStock()
		l.logger.Info("Componente atingiu o estoque mínimo.", map[string]interface{}{"component_id": c.ID, "quantity": c.Quantity, "min_stock": c.MinStock})
	}
	if l.notifier == nil || len(components) == 0 {
		return
	}

	l.dispatcher.Go(ctx, func(ctx context.Context) {
		for _, c := range components {
			if err := l.notifier.LowStock(ctx, c); err != nil {
				l.metrics.NotificationFailed("low_stock")
				l.logger.Warn("Falha ao enviar notificação de estoque baixo.", map[string]interface{}{"component_id": c.ID, "error": err.Error()})
			}
		}
	})
}

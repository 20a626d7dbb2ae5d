// Package notify implementa domain.Notifier: log, eventos no Redis e mensagens no Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// Nomes dos eventos publicados.
const (
	EventRequestApproved = "request.approved"
	EventRequestReturned = "request.returned"
	EventLowStock        = "component.low_stock"
)

// LogNotifier apenas registra os eventos no log. É o notificador padrão.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier cria um LogNotifier.
func NewLogNotifier(logger logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) RequestApproved(_ context.Context, req domain.Request) error {
	n.logger.Info("Requisição aprovada.", requestFields(req))
	return nil
}

func (n *LogNotifier) RequestReturned(_ context.Context, req domain.Request) error {
	n.logger.Info("Requisição devolvida.", requestFields(req))
	return nil
}

func (n *LogNotifier) LowStock(_ context.Context, c domain.Component) error {
	n.logger.Warn("Estoque baixo.", map[string]interface{}{"component_id": c.ID, "name": c.Name, "quantity": c.Quantity, "min_stock": c.MinStock})
	return nil
}

func requestFields(req domain.Request) map[string]interface{} {
	return map[string]interface{}{
		"request_id":     req.ID,
		"personnel_name": req.PersonnelName,
		"items":          len(req.Items),
	}
}

// Multi repassa cada evento a todos os notificadores e junta os erros.
type Multi []domain.Notifier

func (m Multi) RequestApproved(ctx context.Context, req domain.Request) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.RequestApproved(ctx, req))
	}
	return errors.Join(errs...)
}

func (m Multi) RequestReturned(ctx context.Context, req domain.Request) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.RequestReturned(ctx, req))
	}
	return errors.Join(errs...)
}

func (m Multi) LowStock(ctx context.Context, c domain.Component) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.LowStock(ctx, c))
	}
	return errors.Join(errs...)
}

// requestText monta o texto legível de um evento de requisição.
func requestText(title string, req domain.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Colaborador: %s", req.PersonnelName)
	if req.PersonnelEmail != "" {
		fmt.Fprintf(&b, " <%s>", req.PersonnelEmail)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Solicitada em: %s\n", req.RequestedAt.Format(time.RFC3339))
	if req.ApprovedAt != nil {
		fmt.Fprintf(&b, "Aprovada em: %s\n", req.ApprovedAt.Format(time.RFC3339))
	}
	if req.ReturnedAt != nil {
		fmt.Fprintf(&b, "Devolvida em: %s\n", req.ReturnedAt.Format(time.RFC3339))
	}
	for _, item := range req.Items {
		name := item.ComponentName
		if name == "" {
			name = item.ComponentID
		}
		fmt.Fprintf(&b, "• %s × %d", name, item.Quantity)
		if item.Description != "" {
			fmt.Fprintf(&b, " (%s)", item.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func lowStockText(c domain.Component) string {
	return fmt.Sprintf("Estoque baixo: %s\nQuantidade: %d %s (mínimo %d)", c.Name, c.Quantity, c.Unit, c.MinStock)
}

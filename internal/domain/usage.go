package domain

import (
	"context"
	"time"
)

// UsageType classifica o sentido do movimento registrado no histórico de uso.
type UsageType string

const (
	UsageAdd    UsageType = "add"
	UsageRemove UsageType = "remove"
)

// Rótulos de causa gravados no histórico de uso.
const (
	InitialStockCause = "Initial stock"
)

// RequestCause é a causa dos débitos de uma aprovação.
func RequestCause(personnelName string) string { return "Request by " + personnelName }

// ReturnCause é a causa dos créditos de uma devolução.
func ReturnCause(personnelName string) string { return "Return by " + personnelName }

// RevertCause é a causa dos créditos ao voltar uma requisição para PENDING.
func RevertCause(personnelName string) string { return "Approval reverted for " + personnelName }

// UsageRecord é uma entrada imutável do histórico: um delta de quantidade e sua causa.
// Quantity é negativo para retiradas e positivo para adições.
type UsageRecord struct {
	ID            string    `json:"id"`
	ComponentID   string    `json:"component_id"`
	ComponentName string    `json:"component_name,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	Quantity      int       `json:"quantity"`
	Type          UsageType `json:"type"`
	Project       string    `json:"project"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// UsageFilter define os parâmetros de leitura do histórico de uso.
type UsageFilter struct {
	ComponentID string
	Limit       int
	Offset      int
}

// UsageRepository é o modelo de leitura do histórico de uso (mais recentes primeiro).
type UsageRepository interface {
	FindAll(ctx context.Context, filter UsageFilter) ([]UsageRecord, error)
}

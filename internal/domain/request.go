package domain

import (
	"context"
	"strings"
	"time"
)

// RequestStatus é o estado de uma requisição de componentes.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusReturned RequestStatus = "RETURNED"
)

// ParseRequestStatus converte a string recebida na API (sem distinção de caixa).
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusReturned:
		return StatusReturned, true
	}
	return "", false
}

// allowedTransitions lista as transições aceitas pelo motor de ciclo de vida.
// As transições de volta para PENDING desfazem os movimentos de estoque já aplicados.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:  {StatusApproved},
	StatusApproved: {StatusReturned, StatusPending},
	StatusReturned: {StatusPending},
}

// CanTransition informa se a mudança from -> to é permitida.
func CanTransition(from, to RequestStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Request é a solicitação de um ou mais componentes feita por um colaborador.
type Request struct {
	ID             string        `json:"id"`
	PersonnelName  string        `json:"personnel_name"`
	PersonnelEmail string        `json:"personnel_email,omitempty"`
	Status         RequestStatus `json:"status"`
	FaceImageRef   string        `json:"face_image_ref,omitempty"`
	RequestedAt    time.Time     `json:"requested_at"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
	ReturnedAt     *time.Time    `json:"returned_at,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Items          []RequestItem `json:"items"`
}

// RequestItem é uma linha da requisição.
type RequestItem struct {
	ID            string `json:"id"`
	RequestID     string `json:"request_id"`
	ComponentID   string `json:"component_id"`
	ComponentName string `json:"component_name,omitempty"`
	Quantity      int    `json:"quantity"`
	Description   string `json:"description"`
	Consumable    bool   `json:"consumable"`
}

// ItemQuantity é o par componente/quantidade usado na verificação de disponibilidade.
type ItemQuantity struct {
	ComponentID string
	Quantity    int
}

// Quantities extrai os pares componente/quantidade dos itens da requisição.
func (r Request) Quantities() []ItemQuantity {
	out := make([]ItemQuantity, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, ItemQuantity{ComponentID: item.ComponentID, Quantity: item.Quantity})
	}
	return out
}

// RequestItemInput é uma linha do payload de criação/edição.
type RequestItemInput struct {
	ComponentID string `json:"component_id"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

// RequestDraft é o payload de criação e de edição (somente PENDING) de uma requisição.
type RequestDraft struct {
	PersonnelName  string             `json:"personnel_name"`
	PersonnelEmail string             `json:"personnel_email"`
	FaceImageRef   string             `json:"face_image_ref"`
	Items          []RequestItemInput `json:"items"`
}

// StatusChange é o payload da transição de status.
type StatusChange struct {
	Status string `json:"status" example:"APPROVED"`
}

// RequestFilter define os parâmetros de listagem de requisições.
type RequestFilter struct {
	Status RequestStatus
	Limit  int
	Offset int
}

// RequestRepository é o modelo de leitura das requisições (com itens).
type RequestRepository interface {
	FindByID(ctx context.Context, id string) (Request, error)
	FindAll(ctx context.Context, filter RequestFilter) ([]Request, error)
}

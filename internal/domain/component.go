package domain

import (
	"context"
	"time"
)

// Component representa um item rastreável do almoxarifado.
// Quantity é a única fonte de verdade de disponibilidade e só muda pelo razão de estoque.
type Component struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	Unit         string    `json:"unit"`
	MinStock     int       `json:"min_stock"`
	Location     string    `json:"location"`
	Supplier     string    `json:"supplier"`
	ImageRef     string    `json:"image_ref,omitempty"`
	CategoryName string    `json:"category_name"`
	Consumable   bool      `json:"consumable"` // consumíveis não retornam ao estoque na devolução
	Version      int       `json:"version"`    // Para Controle de Concorrência Otimista (OCC)
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLowStock informa se a quantidade atingiu o estoque mínimo configurado.
func (c Component) IsLowStock() bool {
	return c.Quantity <= c.MinStock
}

// ComponentFilter define os parâmetros de busca e paginação de componentes.
type ComponentFilter struct {
	Limit        int
	Offset       int
	Name         string
	CategoryName string
	LowStockOnly bool
}

// ComponentInput é o payload de criação e edição de componentes.
// Na edição, Quantity é ignorado: a quantidade só muda pelo razão de estoque.
type ComponentInput struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	MinStock     int    `json:"min_stock"`
	Location     string `json:"location"`
	Supplier     string `json:"supplier"`
	ImageRef     string `json:"image_ref"`
	CategoryName string `json:"category_name"`
	Consumable   bool   `json:"consumable"`
}

// StockAdjustment é o payload de uma entrada manual de uso (adição ou retirada).
type StockAdjustment struct {
	ComponentID string `json:"component_id"`
	Delta       int    `json:"delta"`   // Quantidade a ser adicionada (>0) ou removida (<0)
	Project     string `json:"project"` // Projeto/causa registrado no histórico de uso
	Notes       string `json:"notes"`
}

// ComponentRepository é a interface de leitura e manutenção de metadados de componentes.
// A quantidade só é alterada através de LedgerTx.
type ComponentRepository interface {
	FindByID(ctx context.Context, id string) (Component, error)
	FindAll(ctx context.Context, filter ComponentFilter) ([]Component, error)
	UpdateMetadata(ctx context.Context, component Component) (Component, error)
	Delete(ctx context.Context, id string) error
}

package domain

import "context"

// --- Contratos Transacionais (O CORAÇÃO DO RAZÃO DE ESTOQUE) ---

// LedgerTx é a visão de uma única transação sobre o estado compartilhado de estoque.
// Toda verificação autoritativa de disponibilidade e o débito/crédito resultante
// acontecem através da mesma LedgerTx, de modo que leitura e escrita ficam dentro
// da mesma fronteira transacional.
type LedgerTx interface {
	// GetComponents carrega os componentes pelos IDs. IDs inexistentes ficam fora do mapa.
	// Com forUpdate, as linhas ficam bloqueadas até o fim da transação.
	GetComponents(ctx context.Context, ids []string, forUpdate bool) (map[string]Component, error)
	InsertComponent(ctx context.Context, component Component) error
	// UpdateComponentQuantity grava a nova quantidade usando a versão de c (OCC)
	// e devolve o componente atualizado.
	UpdateComponentQuantity(ctx context.Context, c Component, newQuantity int) (Component, error)

	// GetRequest carrega a requisição com seus itens; forUpdate bloqueia a linha da requisição.
	GetRequest(ctx context.Context, id string, forUpdate bool) (Request, error)
	InsertRequest(ctx context.Context, request Request) error
	// UpdateRequest grava os campos de cabeçalho (nome, email, status, datas).
	UpdateRequest(ctx context.Context, request Request) error
	ReplaceRequestItems(ctx context.Context, requestID string, items []RequestItem) error

	InsertUsage(ctx context.Context, record UsageRecord) error
}

// TxManager executa fn dentro de uma transação. Se fn retornar erro, nada é gravado.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

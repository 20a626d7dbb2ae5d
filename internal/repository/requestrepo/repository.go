package requestrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/rowscan"
)

// RequestRepository implementa a interface domain.RequestRepository (somente leitura).
// As escritas passam pelo razão de estoque (ledgerrepo).
type RequestRepository struct {
	DB        *database.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewRequestRepository cria e retorna uma nova instância do Repositório de Requisições.
func NewRequestRepository(db *database.DB, dbTimeout time.Duration, logger logger.Logger) *RequestRepository {
	return &RequestRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByID busca uma requisição e seus itens.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (domain.Request, error) {
	r.logger.Debug("Iniciando FindByID de requisição no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := r.DB.Dialect.Rebind(`
        SELECT ` + rowscan.RequestColumns + `
        FROM requests
        WHERE id = $1`)

	req, err := rowscan.Request(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Requisição não encontrada.", map[string]interface{}{"id": id})
		return domain.Request{}, apperror.NewNotFoundError(fmt.Sprintf("Requisição com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar requisição no DB.", err)
		return domain.Request{}, database.Classify("Falha ao buscar requisição", err)
	}

	items, err := r.itemsFor(ctxTimeout, []string{id})
	if err != nil {
		return domain.Request{}, err
	}
	if found, ok := items[id]; ok {
		req.Items = found
	}

	return req, nil
}

// FindAll lista requisições (mais recentes primeiro) com filtro opcional de status.
func (r *RequestRepository) FindAll(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, error) {
	r.logger.Debug("Iniciando FindAll de requisições no repositório.", map[string]interface{}{"status": filter.Status, "limit": filter.Limit, "offset": filter.Offset})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + rowscan.RequestColumns + ` FROM requests`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE status = $1`
	}
	query += fmt.Sprintf(` ORDER BY requested_at DESC, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctxTimeout, r.DB.Dialect.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de requisições.", err)
		return nil, database.Classify("Falha ao listar requisições", err)
	}
	defer rows.Close()

	requests := []domain.Request{}
	ids := []string{}
	for rows.Next() {
		req, err := rowscan.Request(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear requisição na iteração de FindAll.", err)
			return nil, database.Classify("Falha ao mapear requisições do DB", err)
		}
		requests = append(requests, req)
		ids = append(ids, req.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify("Erro após iteração de requisições", err)
	}
	rows.Close()

	items, err := r.itemsFor(ctxTimeout, ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if found, ok := items[requests[i].ID]; ok {
			requests[i].Items = found
		}
	}

	r.logger.Info("FindAll de requisições concluído com sucesso.", map[string]interface{}{"total_requests": len(requests)})
	return requests, nil
}

// itemsFor carrega os itens das requisições informadas, agrupados por requisição e na ordem original.
func (r *RequestRepository) itemsFor(ctx context.Context, requestIDs []string) (map[string][]domain.RequestItem, error) {
	grouped := make(map[string][]domain.RequestItem, len(requestIDs))
	if len(requestIDs) == 0 {
		return grouped, nil
	}

	query := r.DB.Dialect.Rebind(`
        SELECT ` + rowscan.RequestItemColumns + `
        FROM request_items ri
        JOIN components c ON c.id = ri.component_id
        WHERE ri.request_id IN (` + database.InPlaceholders(1, len(requestIDs)) + `)
        ORDER BY ri.request_id, ri.position`)

	args := make([]interface{}, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Falha ao buscar itens de requisições.", err)
		return nil, database.Classify("Falha ao buscar itens de requisições", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := rowscan.RequestItem(rows)
		if err != nil {
			return nil, database.Classify("Falha ao mapear item de requisição", err)
		}
		grouped[item.RequestID] = append(grouped[item.RequestID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify("Erro após iteração de itens", err)
	}

	return grouped, nil
}

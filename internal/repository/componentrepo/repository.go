package componentrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/rowscan"
)

// ComponentRepository implementa a interface domain.ComponentRepository.
// Leituras por ID usam a estratégia Cache-Aside (Redis); escritas invalidam a chave.
type ComponentRepository struct {
	DB        *database.DB // Conexão principal com o banco de dados (PostgreSQL ou SQLite)
	Cache     cache.Client // Cliente para operações de cache (Redis)
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewComponentRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewComponentRepository(db *database.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ComponentRepository {
	return &ComponentRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// FindByID busca um componente pelo ID, utilizando a estratégia Cache-Aside.
func (r *ComponentRepository) FindByID(ctx context.Context, id string) (domain.Component, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := cache.ComponentKey(id)

	// --- 1. Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		var component domain.Component
		if json.Unmarshal([]byte(cachedData), &component) == nil {
			r.logger.Debug("Cache HIT para componente.", map[string]interface{}{"component_id": id})
			return component, nil
		}
		r.logger.Warn("Falha ao desserializar componente do cache. Buscando no DB.", map[string]interface{}{"component_id": id})
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Falha real de cache (ex: conexão perdida): seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"component_id": id, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados ---
	query := r.DB.Dialect.Rebind(`
        SELECT ` + rowscan.ComponentColumns + `
        FROM components
        WHERE id = $1`)

	component, err := rowscan.Component(r.DB.QueryRowContext(ctxTimeout, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Component{}, apperror.NewNotFoundError(fmt.Sprintf("Componente com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar componente no DB.", err)
		return domain.Component{}, database.Classify("Falha ao buscar componente no DB", err)
	}

	// --- 3. Cache-Aside (WRITE) ---
	if data, marshalErr := json.Marshal(component); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, data, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar componente no cache.", map[string]interface{}{"component_id": id, "error": setErr.Error()})
		}
	}

	return component, nil
}

// FindAll lista componentes com filtros opcionais de nome, categoria e estoque baixo.
func (r *ComponentRepository) FindAll(ctx context.Context, filter domain.ComponentFilter) ([]domain.Component, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conditions []string
		args       []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Name != "" {
		conditions = append(conditions, "LOWER(name) LIKE "+next("%"+strings.ToLower(filter.Name)+"%"))
	}
	if filter.CategoryName != "" {
		conditions = append(conditions, "category_name = "+next(filter.CategoryName))
	}
	if filter.LowStockOnly {
		conditions = append(conditions, "quantity <= min_stock")
	}

	query := `SELECT ` + rowscan.ComponentColumns + ` FROM components`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id LIMIT " + next(filter.Limit) + " OFFSET " + next(filter.Offset)

	rows, err := r.DB.QueryContext(ctxTimeout, r.DB.Dialect.Rebind(query), args...)
	if err != nil {
		r.logger.Error("Falha ao listar componentes.", err)
		return nil, database.Classify("Falha ao listar componentes", err)
	}
	defer rows.Close()

	components := []domain.Component{}
	for rows.Next() {
		c, err := rowscan.Component(rows)
		if err != nil {
			return nil, database.Classify("Falha ao ler componente", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify("Falha ao iterar componentes", err)
	}

	return components, nil
}

// UpdateMetadata grava os campos descritivos do componente (nunca a quantidade),
// usando a versão recebida para o controle de concorrência otimista.
func (r *ComponentRepository) UpdateMetadata(ctx context.Context, c domain.Component) (domain.Component, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	c.UpdatedAt = time.Now().UTC()
	query := r.DB.Dialect.Rebind(`
        UPDATE components
        SET name = $1, unit = $2, min_stock = $3, location = $4, supplier = $5,
            image_ref = $6, category_name = $7, consumable = $8, version = $9, updated_at = $10
        WHERE id = $11 AND version = $12`)

	result, err := r.DB.ExecContext(ctxTimeout, query,
		c.Name, c.Unit, c.MinStock, c.Location, c.Supplier,
		c.ImageRef, c.CategoryName, c.Consumable, c.Version+1, c.UpdatedAt,
		c.ID, c.Version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar componente.", err)
		return domain.Component{}, database.Classify("Falha ao atualizar componente", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Component{}, database.Classify("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC) ao atualizar componente.", map[string]interface{}{"component_id": c.ID, "expected_version": c.Version})
		return domain.Component{}, apperror.NewConflictError(fmt.Sprintf("O componente %s foi modificado por outra operação. Tente novamente.", c.ID))
	}

	r.invalidate(ctx, c.ID)
	c.Version++
	return c, nil
}

// Delete remove o componente e, em cascata, seu histórico de uso.
// Componentes referenciados por alguma requisição não podem ser removidos.
func (r *ComponentRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, r.DB.Dialect.TxOptions())
	if err != nil {
		return database.Classify("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var references int
	if err := tx.QueryRowContext(ctxTimeout, r.DB.Dialect.Rebind(`SELECT COUNT(*) FROM request_items WHERE component_id = $1`), id).Scan(&references); err != nil {
		return database.Classify("Falha ao verificar referências do componente", err)
	}
	if references > 0 {
		r.logger.Warn("Tentativa de remover componente referenciado por requisições.", map[string]interface{}{"component_id": id, "references": references})
		return apperror.NewConflictError(fmt.Sprintf("O componente %s está em %d item(ns) de requisição e não pode ser removido.", id, references))
	}

	// O histórico é removido explicitamente para não depender do PRAGMA foreign_keys.
	if _, err := tx.ExecContext(ctxTimeout, r.DB.Dialect.Rebind(`DELETE FROM usage_records WHERE component_id = $1`), id); err != nil {
		return database.Classify("Falha ao remover histórico de uso do componente", err)
	}

	result, err := tx.ExecContext(ctxTimeout, r.DB.Dialect.Rebind(`DELETE FROM components WHERE id = $1`), id)
	if err != nil {
		r.logger.Error("Falha ao remover componente.", err)
		return database.Classify("Falha ao remover componente", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return database.Classify("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Componente com ID %s não existe na base de dados.", id))
	}

	if err := tx.Commit(); err != nil {
		return database.Classify("Falha ao commitar remoção do componente", err)
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *ComponentRepository) invalidate(ctx context.Context, id string) {
	if err := r.Cache.Delete(ctx, cache.ComponentKey(id)); err != nil {
		r.logger.Warn("Falha ao invalidar cache do componente.", map[string]interface{}{"component_id": id, "error": err.Error()})
	}
}
